package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"receiptpanel/internal/metrics"
	"receiptpanel/internal/models"
	"receiptpanel/internal/repositories"

	"github.com/google/uuid"
)

const (
	defaultSessionLimit = 100
	maxSessionLimit     = 1000
)

type StartSessionRequest struct {
	LicenseKey string `json:"license_key" validate:"required"`
	HardwareID string `json:"hardware_id" validate:"required"`
	PCName     string `json:"pc_name"`

	// DeviceID is the id returned by an earlier license check, if any.
	DeviceID string `json:"user_id"`
}

type EndSessionRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
}

type SessionService interface {
	Start(ctx context.Context, req StartSessionRequest) (*models.Session, error)
	End(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]*models.Session, error)
}

type sessionService struct {
	repos   *repositories.Repositories
	uow     repositories.UnitOfWork
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewSessionService(repos *repositories.Repositories, uow repositories.UnitOfWork, m *metrics.Metrics, logger *slog.Logger) SessionService {
	return &sessionService{
		repos:   repos,
		uow:     uow,
		metrics: m,
		logger:  logger.With("component", "session"),
		now:     time.Now,
	}
}

// Start opens a session for a device. Suspended and expired licenses are
// refused before any device is registered. A device id supplied by the client is
// honoured only while it still belongs to the license; otherwise the device
// is resolved by hardware id and registered under the usual device cap.
func (s *sessionService) Start(ctx context.Context, req StartSessionRequest) (*models.Session, error) {
	if req.LicenseKey == "" || req.HardwareID == "" {
		return nil, validationError("license_key and hardware_id are required")
	}

	var session *models.Session
	err := s.uow.Do(ctx, func(repos *repositories.Repositories) error {
		license, err := repos.Licenses.GetByKeyForUpdate(ctx, req.LicenseKey)
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("license")
		}
		if err != nil {
			return fmt.Errorf("load license: %w", err)
		}
		if license.Status == models.LicenseStatusSuspended {
			return fmt.Errorf("%w: license is suspended", ErrForbidden)
		}
		if license.Status == models.LicenseStatusExpired || models.DaysUntil(license.ExpiresAt, s.now()) <= 0 {
			return fmt.Errorf("%w: license has expired", ErrForbidden)
		}

		var device *models.Device
		if id, perr := uuid.Parse(req.DeviceID); perr == nil {
			device, err = repos.Devices.GetByID(ctx, id)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("load device: %w", err)
			}
			if device != nil && device.LicenseID != license.ID {
				device = nil
			}
		}
		if device == nil {
			device, err = registerDevice(ctx, repos, license, deviceRegistration{
				HardwareID: req.HardwareID,
				PCName:     req.PCName,
				Online:     true,
			})
			if err != nil {
				return err
			}
		}

		pcName := req.PCName
		if pcName == "" {
			pcName = device.PCName
		}
		session = &models.Session{
			ID:        uuid.New(),
			DeviceID:  device.ID,
			LicenseID: license.ID,
			PCName:    pcName,
			Status:    models.SessionStatusActive,
		}
		if err := repos.Sessions.Create(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		return repos.Activities.Create(ctx, &models.ActivityLog{
			ID:        uuid.New(),
			LicenseID: license.ID,
			DeviceID:  device.ID,
			SessionID: &session.ID,
			Action:    models.ActivityLogin,
			Details:   fmt.Sprintf("Session started on %s", pcName),
		})
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionsStarted.Inc()
	s.logger.Info("session started", slog.String("session_id", session.ID.String()), slog.String("device_id", session.DeviceID.String()))
	return session, nil
}

// End closes a session. Ending a session twice returns it unchanged and
// writes no second logout entry.
func (s *sessionService) End(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session *models.Session
	ended := false
	err := s.uow.Do(ctx, func(repos *repositories.Repositories) error {
		current, err := repos.Sessions.GetByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("session")
		}
		if err != nil {
			return err
		}
		if current.Status == models.SessionStatusEnded {
			session = current
			return nil
		}

		endedAt := s.now()
		if err := repos.Sessions.End(ctx, id, endedAt); err != nil {
			return fmt.Errorf("end session: %w", err)
		}
		if err := repos.Activities.Create(ctx, &models.ActivityLog{
			ID:        uuid.New(),
			LicenseID: current.LicenseID,
			DeviceID:  current.DeviceID,
			SessionID: &current.ID,
			Action:    models.ActivityLogout,
			Details:   fmt.Sprintf("Session ended: %d receipts, %.2f total", current.ReceiptCount, current.TotalAmount),
		}); err != nil {
			return err
		}

		current.Status = models.SessionStatusEnded
		current.SessionEnd = &endedAt
		session = current
		ended = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ended {
		s.metrics.SessionsEnded.Inc()
		s.logger.Info("session ended", slog.String("session_id", id.String()))
	}
	return session, nil
}

func (s *sessionService) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	session, err := s.repos.Sessions.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("session")
	}
	return session, err
}

func (s *sessionService) List(ctx context.Context, filter models.SessionFilter) ([]*models.Session, error) {
	if filter.Status != "" && filter.Status != models.SessionStatusActive && filter.Status != models.SessionStatusEnded {
		return nil, validationError("status must be active or ended")
	}
	filter.Limit = clampLimit(filter.Limit, defaultSessionLimit, maxSessionLimit)
	return s.repos.Sessions.List(ctx, filter)
}

func clampLimit(limit, def, ceiling int) int {
	if limit <= 0 {
		return def
	}
	if limit > ceiling {
		return ceiling
	}
	return limit
}

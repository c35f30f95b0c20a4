package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"receiptpanel/internal/metrics"
	"receiptpanel/internal/models"
	"receiptpanel/internal/repositories"

	"github.com/google/uuid"
)

// License check outcomes reported to the desktop client.
const (
	CheckStatusActive               = "active"
	CheckStatusInvalid              = "invalid"
	CheckStatusSuspended            = "suspended"
	CheckStatusExpired              = "expired"
	CheckStatusDeviceLimitReached   = "device_limit_reached"
	CheckStatusDeviceBoundElsewhere = "device_bound_elsewhere"
)

// Mutate actions.
const (
	ActionAddDays       = "add_days"
	ActionSetStatus     = "set_status"
	ActionUpdateNotes   = "update_notes"
	ActionSetMaxDevices = "set_max_devices"
)

type CheckRequest struct {
	LicenseKey string `json:"license_key" validate:"required"`
	HardwareID string `json:"hardware_id" validate:"required"`
	PCName     string `json:"pc_name"`
	OSInfo     string `json:"os_info"`
	AppVersion string `json:"app_version"`
	IsClosing  bool   `json:"is_closing"`
}

// CheckResult is the body of a license check response. Soft failures carry
// Success=false together with a Status the client branches on.
type CheckResult struct {
	Success        bool       `json:"success"`
	Status         string     `json:"status"`
	Error          string     `json:"error,omitempty"`
	DaysRemaining  *int       `json:"days_remaining,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CompanyName    string     `json:"company_name,omitempty"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	CurrentDevices *int       `json:"current_devices,omitempty"`
	MaxDevices     *int       `json:"max_devices,omitempty"`
}

type IssueRequest struct {
	CompanyName  string  `json:"company_name" validate:"required,max=255"`
	ContactEmail *string `json:"contact_email" validate:"omitempty,email"`
	ContactPhone *string `json:"contact_phone" validate:"omitempty,max=50"`
	Days         int     `json:"days" validate:"required,min=1"`
	MaxDevices   int     `json:"max_devices" validate:"omitempty,min=1"`
	Notes        *string `json:"notes"`
}

type MutateRequest struct {
	Action     string  `json:"action" validate:"required"`
	Days       *int    `json:"days"`
	Status     string  `json:"status"`
	Notes      *string `json:"notes"`
	MaxDevices *int    `json:"max_devices"`
}

type LicenseService interface {
	Validate(ctx context.Context, req CheckRequest) (*CheckResult, error)
	Issue(ctx context.Context, req IssueRequest) (*models.License, error)
	Mutate(ctx context.Context, id uuid.UUID, req MutateRequest) (*models.License, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.License, error)
	Get(ctx context.Context, id uuid.UUID) (*models.License, error)
}

type licenseService struct {
	repos   *repositories.Repositories
	uow     repositories.UnitOfWork
	metrics *metrics.Metrics
	logger  *slog.Logger
	newKey  func() string
	now     func() time.Time
}

func NewLicenseService(repos *repositories.Repositories, uow repositories.UnitOfWork, m *metrics.Metrics, logger *slog.Logger) LicenseService {
	return &licenseService{
		repos:   repos,
		uow:     uow,
		metrics: m,
		logger:  logger.With("component", "license"),
		newKey:  GenerateLicenseKey,
		now:     time.Now,
	}
}

func softFailure(status, message string) *CheckResult {
	return &CheckResult{Success: false, Status: status, Error: message}
}

// Validate checks a license for a device and registers the device on first
// sight. The license row stays locked for the whole check so concurrent
// registrations against one license cannot exceed its device cap.
func (s *licenseService) Validate(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	req.LicenseKey = strings.TrimSpace(req.LicenseKey)
	req.HardwareID = strings.TrimSpace(req.HardwareID)
	if req.LicenseKey == "" || req.HardwareID == "" {
		return nil, validationError("license_key and hardware_id are required")
	}

	var result *CheckResult
	err := s.uow.Do(ctx, func(repos *repositories.Repositories) error {
		license, err := repos.Licenses.GetByKeyForUpdate(ctx, req.LicenseKey)
		if errors.Is(err, repositories.ErrNotFound) {
			result = softFailure(CheckStatusInvalid, "invalid license key")
			return nil
		}
		if err != nil {
			return fmt.Errorf("load license: %w", err)
		}

		if license.Status == models.LicenseStatusSuspended {
			result = softFailure(CheckStatusSuspended, "license is suspended")
			return nil
		}

		// A stored expired status stands until add_days pushes the expiry forward.
		days := models.DaysUntil(license.ExpiresAt, s.now())
		if license.Status == models.LicenseStatusExpired || days <= 0 {
			if err := repos.Licenses.RecordCheck(ctx, license.ID, 0, models.LicenseStatusExpired); err != nil {
				return fmt.Errorf("expire license: %w", err)
			}
			zero := 0
			result = softFailure(CheckStatusExpired, "license has expired")
			result.DaysRemaining = &zero
			return nil
		}

		device, err := registerDevice(ctx, repos, license, deviceRegistration{
			HardwareID: req.HardwareID,
			PCName:     req.PCName,
			OSInfo:     req.OSInfo,
			AppVersion: req.AppVersion,
			Online:     !req.IsClosing,
			Touch:      true,
		})
		var limitErr *DeviceLimitError
		switch {
		case errors.As(err, &limitErr):
			result = softFailure(CheckStatusDeviceLimitReached, limitErr.Error())
			result.CurrentDevices = &limitErr.Current
			result.MaxDevices = &limitErr.Max
			return nil
		case errors.Is(err, ErrDeviceBoundElsewhere):
			result = softFailure(CheckStatusDeviceBoundElsewhere, err.Error())
			return nil
		case err != nil:
			return err
		}

		if err := repos.Licenses.RecordCheck(ctx, license.ID, days, license.Status); err != nil {
			return fmt.Errorf("record check: %w", err)
		}

		entry := &models.ActivityLog{
			ID:        uuid.New(),
			LicenseID: license.ID,
			DeviceID:  device.ID,
			Action:    models.ActivityLicenseCheck,
			Details:   fmt.Sprintf("PC: %s, OS: %s", req.PCName, req.OSInfo),
		}
		if err := repos.Activities.Create(ctx, entry); err != nil {
			return fmt.Errorf("append activity: %w", err)
		}

		expiresAt := license.ExpiresAt
		result = &CheckResult{
			Success:       true,
			Status:        CheckStatusActive,
			DaysRemaining: &days,
			ExpiresAt:     &expiresAt,
			CompanyName:   license.CompanyName,
			UserID:        &device.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.LicenseChecks.WithLabelValues(result.Status).Inc()
	if !result.Success {
		s.logger.Info("license check rejected", slog.String("status", result.Status), slog.String("hardware_id", req.HardwareID))
	}
	return result, nil
}

func (s *licenseService) Issue(ctx context.Context, req IssueRequest) (*models.License, error) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if req.CompanyName == "" {
		return nil, validationError("company_name is required")
	}
	if req.Days < 1 {
		return nil, validationError("days must be at least 1")
	}
	if req.MaxDevices == 0 {
		req.MaxDevices = 1
	}
	if req.MaxDevices < 1 {
		return nil, validationError("max_devices must be at least 1")
	}

	license := &models.License{
		ID:            uuid.New(),
		LicenseKey:    s.newKey(),
		CompanyName:   req.CompanyName,
		ContactEmail:  req.ContactEmail,
		ContactPhone:  req.ContactPhone,
		Status:        models.LicenseStatusActive,
		ExpiresAt:     s.now().Add(time.Duration(req.Days) * 24 * time.Hour),
		DaysRemaining: req.Days,
		MaxDevices:    req.MaxDevices,
		Notes:         req.Notes,
	}

	if err := s.repos.Licenses.Create(ctx, license); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: license key already exists", ErrConflict)
		}
		return nil, fmt.Errorf("create license: %w", err)
	}

	s.metrics.LicensesIssued.Inc()
	s.logger.Info("license issued",
		slog.String("license_id", license.ID.String()),
		slog.String("company", license.CompanyName),
		slog.Int("days", req.Days),
		slog.Int("max_devices", req.MaxDevices))

	return license, nil
}

func (s *licenseService) Mutate(ctx context.Context, id uuid.UUID, req MutateRequest) (*models.License, error) {
	var apply func(repositories.LicenseRepository) error

	switch req.Action {
	case ActionAddDays:
		if req.Days == nil {
			return nil, validationError("days is required for add_days")
		}
		days := *req.Days
		apply = func(r repositories.LicenseRepository) error { return r.AddDays(ctx, id, days) }
	case ActionSetStatus:
		if !models.ValidLicenseStatus(req.Status) {
			return nil, validationError("status must be one of active, suspended, expired")
		}
		apply = func(r repositories.LicenseRepository) error { return r.SetStatus(ctx, id, req.Status) }
	case ActionUpdateNotes:
		notes := ""
		if req.Notes != nil {
			notes = *req.Notes
		}
		apply = func(r repositories.LicenseRepository) error { return r.UpdateNotes(ctx, id, notes) }
	case ActionSetMaxDevices:
		if req.MaxDevices == nil || *req.MaxDevices < 1 {
			return nil, validationError("max_devices must be at least 1")
		}
		maxDevices := *req.MaxDevices
		apply = func(r repositories.LicenseRepository) error { return r.SetMaxDevices(ctx, id, maxDevices) }
	default:
		return nil, validationError("unknown action %q", req.Action)
	}

	if err := apply(s.repos.Licenses); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, notFound("license")
		}
		return nil, fmt.Errorf("%s: %w", req.Action, err)
	}

	s.logger.Info("license updated", slog.String("license_id", id.String()), slog.String("action", req.Action))

	return s.Get(ctx, id)
}

func (s *licenseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.uow.Do(ctx, func(repos *repositories.Repositories) error {
		count, err := repos.Devices.CountByLicense(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: license has %d registered devices, delete them first", ErrConflict, count)
		}

		err = repos.Licenses.Delete(ctx, id)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return notFound("license")
		case errors.Is(err, repositories.ErrReferenced):
			return fmt.Errorf("%w: license still has registered devices", ErrConflict)
		case err != nil:
			return err
		}

		s.logger.Info("license deleted", slog.String("license_id", id.String()))
		return nil
	})
}

func (s *licenseService) List(ctx context.Context) ([]*models.License, error) {
	return s.repos.Licenses.List(ctx)
}

func (s *licenseService) Get(ctx context.Context, id uuid.UUID) (*models.License, error) {
	license, err := s.repos.Licenses.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("license")
	}
	return license, err
}

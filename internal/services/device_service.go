package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"receiptpanel/internal/models"
	"receiptpanel/internal/repositories"

	"github.com/google/uuid"
)

const (
	detailReceiptLimit = 50
	detailSessionLimit = 20
	detailStatsDays    = 30
)

type DeviceService interface {
	List(ctx context.Context) ([]*models.Device, error)
	Details(ctx context.Context, id uuid.UUID) (*models.DeviceDetails, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type deviceService struct {
	repos  *repositories.Repositories
	logger *slog.Logger
	now    func() time.Time
}

func NewDeviceService(repos *repositories.Repositories, logger *slog.Logger) DeviceService {
	return &deviceService{
		repos:  repos,
		logger: logger.With("component", "device"),
		now:    time.Now,
	}
}

func (s *deviceService) List(ctx context.Context) ([]*models.Device, error) {
	return s.repos.Devices.List(ctx)
}

func (s *deviceService) Details(ctx context.Context, id uuid.UUID) (*models.DeviceDetails, error) {
	device, err := s.repos.Devices.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, notFound("device")
	}
	if err != nil {
		return nil, err
	}

	receipts, err := s.repos.Receipts.ListRecentByDevice(ctx, id, detailReceiptLimit)
	if err != nil {
		return nil, fmt.Errorf("recent receipts: %w", err)
	}

	since := s.now().AddDate(0, 0, -detailStatsDays)
	stats, err := s.repos.Stats.DailyForDevice(ctx, id, since)
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}

	sessions, err := s.repos.Sessions.ListByDevice(ctx, id, detailSessionLimit)
	if err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}

	return &models.DeviceDetails{
		Device:         device,
		RecentReceipts: receipts,
		DailyStats:     stats,
		Sessions:       sessions,
	}, nil
}

// Delete removes the device together with its sessions, receipts, daily
// stats and activity entries.
func (s *deviceService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repos.Devices.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return notFound("device")
		}
		return err
	}
	s.logger.Info("device deleted", slog.String("device_id", id.String()))
	return nil
}

type deviceRegistration struct {
	HardwareID string
	PCName     string
	OSInfo     string
	AppVersion string
	Online     bool
	// Touch refreshes the mutable fields of an already known device.
	Touch bool
}

// registerDevice returns the device for reg.HardwareID, creating it under
// license when unseen. It must run inside a transaction that holds the
// license row lock.
func registerDevice(ctx context.Context, repos *repositories.Repositories, license *models.License, reg deviceRegistration) (*models.Device, error) {
	device, err := repos.Devices.GetByHardwareID(ctx, reg.HardwareID)
	switch {
	case err == nil:
		if device.LicenseID != license.ID {
			return nil, ErrDeviceBoundElsewhere
		}
		if reg.Touch {
			if err := repos.Devices.Touch(ctx, device.ID, reg.PCName, reg.OSInfo, reg.AppVersion, reg.Online); err != nil {
				return nil, fmt.Errorf("update device: %w", err)
			}
			device.PCName, device.OSInfo, device.AppVersion, device.IsOnline = reg.PCName, reg.OSInfo, reg.AppVersion, reg.Online
		}
		return device, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("load device: %w", err)
	}

	count, err := repos.Devices.CountByLicense(ctx, license.ID)
	if err != nil {
		return nil, fmt.Errorf("count devices: %w", err)
	}
	if count >= license.MaxDevices {
		return nil, &DeviceLimitError{Current: count, Max: license.MaxDevices}
	}

	device = &models.Device{
		ID:         uuid.New(),
		LicenseID:  license.ID,
		HardwareID: reg.HardwareID,
		PCName:     reg.PCName,
		OSInfo:     reg.OSInfo,
		AppVersion: reg.AppVersion,
		IsOnline:   true,
	}
	if err := repos.Devices.Create(ctx, device); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: device registered concurrently, retry", ErrConflict)
		}
		return nil, fmt.Errorf("create device: %w", err)
	}
	return device, nil
}

package jobs

import (
	"context"
	"log/slog"
	"time"

	"receiptpanel/internal/caching"
	"receiptpanel/internal/metrics"
	"receiptpanel/internal/repositories"
)

const (
	JobLicenseExpiry  = "license-expiry-sweep"
	JobDevicePresence = "device-presence-sweep"
)

// Sweeper holds the periodic maintenance tasks that keep license status and
// device presence current between client requests.
type Sweeper struct {
	licenses    repositories.LicenseRepository
	devices     repositories.DeviceRepository
	cache       caching.CacheService
	metrics     *metrics.Metrics
	idleTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewSweeper creates a sweeper. cache may be nil.
func NewSweeper(repos *repositories.Repositories, cache caching.CacheService, m *metrics.Metrics, idleTimeout time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		licenses:    repos.Licenses,
		devices:     repos.Devices,
		cache:       cache,
		metrics:     m,
		idleTimeout: idleTimeout,
		logger:      logger.With("component", "sweeper"),
		now:         time.Now,
	}
}

// ExpireLicenses marks overdue licenses expired and recomputes days_remaining
// for the rest.
func (s *Sweeper) ExpireLicenses(ctx context.Context) error {
	expired, err := s.licenses.ExpireOverdue(ctx)
	if err != nil {
		s.record(JobLicenseExpiry, 0, err)
		return err
	}

	refreshed, err := s.licenses.RefreshDaysRemaining(ctx)
	if err != nil {
		s.record(JobLicenseExpiry, expired, err)
		return err
	}

	if expired > 0 && s.cache != nil {
		if err := s.cache.InvalidateDashboard(ctx); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", slog.Any("error", err))
		}
	}

	s.record(JobLicenseExpiry, expired, nil)
	s.logger.Info("license expiry sweep finished",
		slog.Int64("expired", expired),
		slog.Int64("refreshed", refreshed))
	return nil
}

// MarkIdleDevices flags devices as offline once they have been silent for
// longer than the idle timeout.
func (s *Sweeper) MarkIdleDevices(ctx context.Context) error {
	cutoff := s.now().Add(-s.idleTimeout)
	affected, err := s.devices.MarkIdleOffline(ctx, cutoff)
	s.record(JobDevicePresence, affected, err)
	if err != nil {
		return err
	}

	if affected > 0 {
		s.logger.Info("devices marked offline",
			slog.Int64("count", affected),
			slog.Time("cutoff", cutoff))
	}
	return nil
}

func (s *Sweeper) record(job string, affected int64, err error) {
	if err != nil {
		s.metrics.SweepRuns.WithLabelValues(job, "error").Inc()
		s.logger.Error("sweep failed", slog.String("job", job), slog.Any("error", err))
		return
	}
	s.metrics.SweepRuns.WithLabelValues(job, "ok").Inc()
	s.metrics.SweepAffected.WithLabelValues(job).Add(float64(affected))
}

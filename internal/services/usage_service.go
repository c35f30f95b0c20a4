package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"receiptpanel/internal/caching"
	"receiptpanel/internal/metrics"
	"receiptpanel/internal/models"
	"receiptpanel/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardTTL         = 60 * time.Second
	defaultActivityLimit = 100
	maxActivityLimit     = 1000

	// DefaultStartDate and DefaultEndDate bound date-range reads when the
	// caller leaves them empty.
	DefaultStartDate = "2024-01-01"
	DefaultEndDate   = "2099-12-31"
	dateLayout       = "2006-01-02"
)

type ReceiptRequest struct {
	LicenseKey  string  `json:"license_key" validate:"required"`
	HardwareID  string  `json:"hardware_id" validate:"required"`
	CompanyName string  `json:"company_name" validate:"max=255"`
	ReceiptNo   string  `json:"receipt_no" validate:"max=100"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	VatRate     float64 `json:"vat_rate" validate:"gte=0"`
	VatAmount   float64 `json:"vat_amount" validate:"gte=0"`
	Description string  `json:"description"`
	Cashier     string  `json:"cashier" validate:"max=255"`
	Template    string  `json:"template" validate:"max=100"`
	// SessionID is optional; an unknown or malformed id leaves the receipt
	// unattributed.
	SessionID string `json:"session_id"`
}

type UsageService interface {
	LogReceipt(ctx context.Context, req ReceiptRequest) (*models.Receipt, error)
	DailyStats(ctx context.Context, startDate, endDate string) ([]*models.DailyTotal, error)
	CompanyStats(ctx context.Context, licenseID *uuid.UUID) ([]*models.CompanyStat, error)
	DashboardToday(ctx context.Context) (*models.Dashboard, error)
	Activities(ctx context.Context, filter models.ActivityFilter) ([]*models.ActivityLog, error)
}

type usageService struct {
	repos   *repositories.Repositories
	uow     repositories.UnitOfWork
	cache   caching.CacheService
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewUsageService creates the usage service. A nil cache disables dashboard caching.
func NewUsageService(repos *repositories.Repositories, uow repositories.UnitOfWork, cache caching.CacheService, m *metrics.Metrics, logger *slog.Logger) UsageService {
	if cache == nil {
		cache = caching.NewNoopCacheService()
	}
	return &usageService{
		repos:   repos,
		uow:     uow,
		cache:   cache,
		metrics: m,
		logger:  logger.With("component", "usage"),
		now:     time.Now,
	}
}

// LogReceipt stores the receipt and all derived counters in one transaction.
func (s *usageService) LogReceipt(ctx context.Context, req ReceiptRequest) (*models.Receipt, error) {
	if req.LicenseKey == "" || req.HardwareID == "" {
		return nil, validationError("license_key and hardware_id are required")
	}
	if req.Amount < 0 || req.VatRate < 0 || req.VatAmount < 0 {
		return nil, validationError("amount, vat_rate and vat_amount must not be negative")
	}

	var receipt *models.Receipt
	err := s.uow.Do(ctx, func(repos *repositories.Repositories) error {
		license, err := repos.Licenses.GetByKey(ctx, req.LicenseKey)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && license.Status != models.LicenseStatusActive) {
			return fmt.Errorf("%w: invalid license", ErrForbidden)
		}
		if err != nil {
			return fmt.Errorf("load license: %w", err)
		}

		device, err := repos.Devices.GetByHardwareID(ctx, req.HardwareID)
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && device.LicenseID != license.ID) {
			return fmt.Errorf("%w: device not registered for this license", ErrForbidden)
		}
		if err != nil {
			return fmt.Errorf("load device: %w", err)
		}

		company := strings.TrimSpace(req.CompanyName)
		if company == "" {
			company = license.CompanyName
		}

		receipt = &models.Receipt{
			ID:          uuid.New(),
			DeviceID:    device.ID,
			LicenseID:   license.ID,
			CompanyName: company,
			ReceiptNo:   req.ReceiptNo,
			Amount:      req.Amount,
			VatRate:     req.VatRate,
			VatAmount:   req.VatAmount,
			Description: req.Description,
			Cashier:     req.Cashier,
			Template:    req.Template,
		}
		if err := repos.Receipts.Create(ctx, receipt); err != nil {
			return fmt.Errorf("insert receipt: %w", err)
		}
		if err := repos.Devices.AddReceipt(ctx, device.ID, req.Amount); err != nil {
			return fmt.Errorf("device totals: %w", err)
		}
		if err := repos.Stats.IncrementDaily(ctx, device.ID, license.ID, receipt.DatePrinted, req.Amount, req.VatAmount); err != nil {
			return fmt.Errorf("daily stats: %w", err)
		}
		if err := repos.Stats.IncrementCompany(ctx, license.ID, company, req.Amount, req.VatAmount); err != nil {
			return fmt.Errorf("company stats: %w", err)
		}

		var sessionID *uuid.UUID
		if id, perr := uuid.Parse(req.SessionID); perr == nil {
			err := repos.Sessions.IncrementLegacy(ctx, id, req.Amount)
			switch {
			case err == nil:
				sessionID = &id
			case !errors.Is(err, repositories.ErrNotFound):
				return fmt.Errorf("session counters: %w", err)
			}
		}

		amount := req.Amount
		return repos.Activities.Create(ctx, &models.ActivityLog{
			ID:        uuid.New(),
			LicenseID: license.ID,
			DeviceID:  device.ID,
			SessionID: sessionID,
			Action:    models.ActivityReceipt,
			Details:   fmt.Sprintf("Receipt %s: %.2f", req.ReceiptNo, req.Amount),
			Amount:    &amount,
		})
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateDashboard(ctx); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", slog.Any("error", err))
	}
	s.metrics.ReceiptsLogged.Inc()
	s.metrics.ReceiptAmount.Add(req.Amount)

	return receipt, nil
}

// NormalizeDateRange fills empty bounds with the defaults and checks the
// YYYY-MM-DD format.
func NormalizeDateRange(startDate, endDate string) (string, string, error) {
	if startDate == "" {
		startDate = DefaultStartDate
	}
	if endDate == "" {
		endDate = DefaultEndDate
	}
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return "", "", validationError("start_date must be in YYYY-MM-DD format")
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return "", "", validationError("end_date must be in YYYY-MM-DD format")
	}
	if end.Before(start) {
		return "", "", validationError("end_date is before start_date")
	}
	return startDate, endDate, nil
}

func (s *usageService) DailyStats(ctx context.Context, startDate, endDate string) ([]*models.DailyTotal, error) {
	startDate, endDate, err := NormalizeDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	return s.repos.Stats.DailyTotals(ctx, startDate, endDate)
}

func (s *usageService) CompanyStats(ctx context.Context, licenseID *uuid.UUID) ([]*models.CompanyStat, error) {
	return s.repos.Stats.CompanyStats(ctx, licenseID)
}

// DashboardToday serves the overview from Redis when fresh and otherwise
// runs the aggregate queries concurrently.
func (s *usageService) DashboardToday(ctx context.Context) (*models.Dashboard, error) {
	cached, err := s.cache.GetDashboard(ctx)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", slog.Any("error", err))
	}
	if cached != nil {
		return cached, nil
	}

	var (
		totals    *models.DailyTotal
		online    int
		licenses  int
		sessions  int
		g, gctx   = errgroup.WithContext(ctx)
		dashboard = &models.Dashboard{}
	)
	g.Go(func() (err error) {
		totals, err = s.repos.Stats.TodayTotals(gctx)
		return err
	})
	g.Go(func() (err error) {
		online, err = s.repos.Devices.CountOnline(gctx)
		return err
	})
	g.Go(func() (err error) {
		licenses, err = s.repos.Licenses.CountActive(gctx)
		return err
	})
	g.Go(func() (err error) {
		sessions, err = s.repos.Sessions.CountActive(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard aggregates: %w", err)
	}

	dashboard.Date = totals.StatDate.Format(dateLayout)
	dashboard.Receipts = totals.Receipts
	dashboard.Amount = totals.Amount
	dashboard.Vat = totals.Vat
	dashboard.OnlineDevices = online
	dashboard.ActiveLicenses = licenses
	dashboard.ActiveSessions = sessions
	dashboard.GeneratedAt = s.now().UTC()

	if err := s.cache.SetDashboard(ctx, dashboard, dashboardTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", slog.Any("error", err))
	}
	return dashboard, nil
}

func (s *usageService) Activities(ctx context.Context, filter models.ActivityFilter) ([]*models.ActivityLog, error) {
	filter.Limit = clampLimit(filter.Limit, defaultActivityLimit, maxActivityLimit)
	return s.repos.Activities.List(ctx, filter)
}

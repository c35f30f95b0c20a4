package repositories

import (
	"context"
	"time"

	"receiptpanel/internal/models"

	"github.com/google/uuid"
)

type StatsRepository interface {
	IncrementDaily(ctx context.Context, deviceID, licenseID uuid.UUID, date time.Time, amount, vat float64) error
	IncrementCompany(ctx context.Context, licenseID uuid.UUID, companyName string, amount, vat float64) error
	DailyTotals(ctx context.Context, startDate, endDate string) ([]*models.DailyTotal, error)
	DailyForDevice(ctx context.Context, deviceID uuid.UUID, since time.Time) ([]*models.DailyStat, error)
	CompanyStats(ctx context.Context, licenseID *uuid.UUID) ([]*models.CompanyStat, error)
	TodayTotals(ctx context.Context) (*models.DailyTotal, error)
}

type statsRepo struct {
	db Database
}

func NewStatsRepo(db Database) StatsRepository {
	return &statsRepo{db: db}
}

// IncrementDaily adds one receipt to the (device, date) counter in a single
// atomic upsert.
func (r *statsRepo) IncrementDaily(ctx context.Context, deviceID, licenseID uuid.UUID, date time.Time, amount, vat float64) error {
	query := `
		INSERT INTO daily_stats (device_id, license_id, stat_date, total_receipts, total_amount, total_vat)
		VALUES ($1, $2, $3, 1, $4, $5)
		ON CONFLICT (device_id, stat_date) DO UPDATE SET
			total_receipts = daily_stats.total_receipts + 1,
			total_amount = daily_stats.total_amount + EXCLUDED.total_amount,
			total_vat = daily_stats.total_vat + EXCLUDED.total_vat
	`
	_, err := r.db.Exec(ctx, query, deviceID, licenseID, date, amount, vat)
	return translateError(err)
}

func (r *statsRepo) IncrementCompany(ctx context.Context, licenseID uuid.UUID, companyName string, amount, vat float64) error {
	query := `
		INSERT INTO company_stats (license_id, company_name, total_receipts, total_amount, total_vat, last_receipt_at)
		VALUES ($1, $2, 1, $3, $4, NOW())
		ON CONFLICT (license_id, company_name) DO UPDATE SET
			total_receipts = company_stats.total_receipts + 1,
			total_amount = company_stats.total_amount + EXCLUDED.total_amount,
			total_vat = company_stats.total_vat + EXCLUDED.total_vat,
			last_receipt_at = EXCLUDED.last_receipt_at
	`
	_, err := r.db.Exec(ctx, query, licenseID, companyName, amount, vat)
	return translateError(err)
}

func (r *statsRepo) DailyTotals(ctx context.Context, startDate, endDate string) ([]*models.DailyTotal, error) {
	query := `
		SELECT stat_date, SUM(total_receipts), SUM(total_amount), SUM(total_vat)
		FROM daily_stats
		WHERE stat_date BETWEEN $1::date AND $2::date
		GROUP BY stat_date
		ORDER BY stat_date DESC
	`
	rows, err := r.db.Query(ctx, query, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []*models.DailyTotal{}
	for rows.Next() {
		t := &models.DailyTotal{}
		if err := rows.Scan(&t.StatDate, &t.Receipts, &t.Amount, &t.Vat); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

func (r *statsRepo) DailyForDevice(ctx context.Context, deviceID uuid.UUID, since time.Time) ([]*models.DailyStat, error) {
	query := `
		SELECT device_id, license_id, stat_date, total_receipts, total_amount, total_vat
		FROM daily_stats
		WHERE device_id = $1 AND stat_date >= $2
		ORDER BY stat_date DESC
	`
	rows, err := r.db.Query(ctx, query, deviceID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []*models.DailyStat{}
	for rows.Next() {
		s := &models.DailyStat{}
		if err := rows.Scan(&s.DeviceID, &s.LicenseID, &s.StatDate, &s.TotalReceipts, &s.TotalAmount, &s.TotalVat); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepo) CompanyStats(ctx context.Context, licenseID *uuid.UUID) ([]*models.CompanyStat, error) {
	query := `
		SELECT license_id, company_name, total_receipts, total_amount, total_vat, last_receipt_at
		FROM company_stats
		WHERE ($1::uuid IS NULL OR license_id = $1)
		ORDER BY total_amount DESC
	`
	rows, err := r.db.Query(ctx, query, licenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []*models.CompanyStat{}
	for rows.Next() {
		s := &models.CompanyStat{}
		if err := rows.Scan(&s.LicenseID, &s.CompanyName, &s.TotalReceipts, &s.TotalAmount, &s.TotalVat, &s.LastReceiptAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepo) TodayTotals(ctx context.Context) (*models.DailyTotal, error) {
	query := `
		SELECT CURRENT_DATE, COALESCE(SUM(total_receipts), 0), COALESCE(SUM(total_amount), 0), COALESCE(SUM(total_vat), 0)
		FROM daily_stats
		WHERE stat_date = CURRENT_DATE
	`
	t := &models.DailyTotal{}
	if err := r.db.QueryRow(ctx, query).Scan(&t.StatDate, &t.Receipts, &t.Amount, &t.Vat); err != nil {
		return nil, err
	}
	return t, nil
}

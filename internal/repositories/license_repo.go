package repositories

import (
	"context"

	"receiptpanel/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LicenseRepository interface {
	Create(ctx context.Context, license *models.License) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.License, error)
	GetByKey(ctx context.Context, key string) (*models.License, error)
	// GetByKeyForUpdate locks the license row until the surrounding transaction ends.
	GetByKeyForUpdate(ctx context.Context, key string) (*models.License, error)
	List(ctx context.Context) ([]*models.License, error)
	RecordCheck(ctx context.Context, id uuid.UUID, daysRemaining int, status string) error
	AddDays(ctx context.Context, id uuid.UUID, days int) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
	SetMaxDevices(ctx context.Context, id uuid.UUID, maxDevices int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExpireOverdue(ctx context.Context) (int64, error)
	RefreshDaysRemaining(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int, error)
}

type licenseRepo struct {
	db Database
}

func NewLicenseRepo(db Database) LicenseRepository {
	return &licenseRepo{db: db}
}

const licenseColumns = `l.id, l.license_key, l.company_name, l.contact_email, l.contact_phone, l.status,
		l.expires_at, l.days_remaining, l.max_devices, l.notes, l.last_check, l.created_at, l.updated_at`

func scanLicense(row pgx.Row, withActiveDevices bool) (*models.License, error) {
	l := &models.License{}
	dest := []any{
		&l.ID, &l.LicenseKey, &l.CompanyName, &l.ContactEmail, &l.ContactPhone, &l.Status,
		&l.ExpiresAt, &l.DaysRemaining, &l.MaxDevices, &l.Notes, &l.LastCheck, &l.CreatedAt, &l.UpdatedAt,
	}
	if withActiveDevices {
		dest = append(dest, &l.ActiveDevices)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, translateError(err)
	}
	return l, nil
}

func (r *licenseRepo) Create(ctx context.Context, license *models.License) error {
	query := `
		INSERT INTO licenses (id, license_key, company_name, contact_email, contact_phone, status, expires_at, days_remaining, max_devices, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		license.ID, license.LicenseKey, license.CompanyName, license.ContactEmail, license.ContactPhone,
		license.Status, license.ExpiresAt, license.DaysRemaining, license.MaxDevices, license.Notes,
	).Scan(&license.CreatedAt, &license.UpdatedAt)
	return translateError(err)
}

func (r *licenseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `,
		(SELECT COUNT(*) FROM devices d WHERE d.license_id = l.id AND d.is_online = TRUE) AS active_devices
		FROM licenses l
		WHERE l.id = $1
	`
	return scanLicense(r.db.QueryRow(ctx, query, id), true)
}

func (r *licenseRepo) GetByKey(ctx context.Context, key string) (*models.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses l WHERE l.license_key = $1`
	return scanLicense(r.db.QueryRow(ctx, query, key), false)
}

func (r *licenseRepo) GetByKeyForUpdate(ctx context.Context, key string) (*models.License, error) {
	query := `SELECT ` + licenseColumns + ` FROM licenses l WHERE l.license_key = $1 FOR UPDATE`
	return scanLicense(r.db.QueryRow(ctx, query, key), false)
}

func (r *licenseRepo) List(ctx context.Context) ([]*models.License, error) {
	query := `
		SELECT ` + licenseColumns + `,
		(SELECT COUNT(*) FROM devices d WHERE d.license_id = l.id AND d.is_online = TRUE) AS active_devices
		FROM licenses l
		ORDER BY l.created_at DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	licenses := []*models.License{}
	for rows.Next() {
		l, err := scanLicense(rows, true)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, l)
	}
	return licenses, rows.Err()
}

func (r *licenseRepo) RecordCheck(ctx context.Context, id uuid.UUID, daysRemaining int, status string) error {
	query := `UPDATE licenses SET last_check = NOW(), days_remaining = $1, status = $2, updated_at = NOW() WHERE id = $3`
	return requireAffected(r.db.Exec(ctx, query, daysRemaining, status, id))
}

// AddDays shifts the expiry. An expired license whose new expiry lies in the
// future becomes active again.
func (r *licenseRepo) AddDays(ctx context.Context, id uuid.UUID, days int) error {
	query := `
		UPDATE licenses
		SET expires_at = expires_at + make_interval(days => $1),
			days_remaining = days_remaining + $1,
			status = CASE
				WHEN status = 'expired' AND expires_at + make_interval(days => $1) > NOW() THEN 'active'
				ELSE status
			END,
			updated_at = NOW()
		WHERE id = $2
	`
	return requireAffected(r.db.Exec(ctx, query, days, id))
}

func (r *licenseRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE licenses SET status = $1, updated_at = NOW() WHERE id = $2`
	return requireAffected(r.db.Exec(ctx, query, status, id))
}

func (r *licenseRepo) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	query := `UPDATE licenses SET notes = $1, updated_at = NOW() WHERE id = $2`
	return requireAffected(r.db.Exec(ctx, query, notes, id))
}

func (r *licenseRepo) SetMaxDevices(ctx context.Context, id uuid.UUID, maxDevices int) error {
	query := `UPDATE licenses SET max_devices = $1, updated_at = NOW() WHERE id = $2`
	return requireAffected(r.db.Exec(ctx, query, maxDevices, id))
}

func (r *licenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.Exec(ctx, `DELETE FROM licenses WHERE id = $1`, id))
}

// ExpireOverdue flips active licenses whose expiry has passed to expired.
func (r *licenseRepo) ExpireOverdue(ctx context.Context) (int64, error) {
	query := `
		UPDATE licenses SET status = 'expired', days_remaining = 0, updated_at = NOW()
		WHERE status = 'active' AND expires_at <= NOW()
	`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *licenseRepo) RefreshDaysRemaining(ctx context.Context) (int64, error) {
	query := `
		UPDATE licenses
		SET days_remaining = CEIL(EXTRACT(EPOCH FROM (expires_at - NOW())) / 86400)::INTEGER
		WHERE status = 'active' AND expires_at > NOW()
	`
	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *licenseRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM licenses WHERE status = 'active'`).Scan(&count)
	return count, err
}

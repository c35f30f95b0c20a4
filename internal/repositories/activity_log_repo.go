package repositories

import (
	"context"
	"fmt"

	"receiptpanel/internal/models"
)

type ActivityLogRepository interface {
	// Create appends an entry. Entries are never updated.
	Create(ctx context.Context, entry *models.ActivityLog) error

	// List returns entries newest first, joined with the device name.
	List(ctx context.Context, filter models.ActivityFilter) ([]*models.ActivityLog, error)
}

type activityLogRepo struct {
	db Database
}

func NewActivityLogRepo(db Database) ActivityLogRepository {
	return &activityLogRepo{db: db}
}

func (r *activityLogRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	query := `
		INSERT INTO detailed_activity_logs (id, license_id, device_id, session_id, action, details, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		entry.ID, entry.LicenseID, entry.DeviceID, entry.SessionID, entry.Action, entry.Details, entry.Amount,
	).Scan(&entry.CreatedAt)
	return translateError(err)
}

func (r *activityLogRepo) List(ctx context.Context, filter models.ActivityFilter) ([]*models.ActivityLog, error) {
	query := `
		SELECT a.id, a.license_id, a.device_id, a.session_id, a.action, a.details, a.amount, a.created_at, d.pc_name
		FROM detailed_activity_logs a
		JOIN devices d ON d.id = a.device_id
		WHERE 1=1
	`
	args := []any{}
	argIdx := 0

	if filter.LicenseID != nil {
		argIdx++
		query += fmt.Sprintf(" AND a.license_id = $%d", argIdx)
		args = append(args, *filter.LicenseID)
	}

	if filter.DeviceID != nil {
		argIdx++
		query += fmt.Sprintf(" AND a.device_id = $%d", argIdx)
		args = append(args, *filter.DeviceID)
	}

	if filter.SessionID != nil {
		argIdx++
		query += fmt.Sprintf(" AND a.session_id = $%d", argIdx)
		args = append(args, *filter.SessionID)
	}

	if filter.Action != "" {
		argIdx++
		query += fmt.Sprintf(" AND a.action = $%d", argIdx)
		args = append(args, filter.Action)
	}

	query += " ORDER BY a.created_at DESC"

	if filter.Limit > 0 {
		argIdx++
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*models.ActivityLog{}
	for rows.Next() {
		e := &models.ActivityLog{}
		if err := rows.Scan(&e.ID, &e.LicenseID, &e.DeviceID, &e.SessionID, &e.Action, &e.Details, &e.Amount,
			&e.CreatedAt, &e.PCName); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

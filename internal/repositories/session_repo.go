package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"receiptpanel/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	End(ctx context.Context, id uuid.UUID, endedAt time.Time) error
	// IncrementLegacy bumps the stored per-session counters. Readers never see
	// them; it returns ErrNotFound when the session does not exist.
	IncrementLegacy(ctx context.Context, id uuid.UUID, amount float64) error
	List(ctx context.Context, filter models.SessionFilter) ([]*models.Session, error)
	ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*models.Session, error)
	CountActive(ctx context.Context) (int, error)
}

type sessionRepo struct {
	db Database
}

func NewSessionRepo(db Database) SessionRepository {
	return &sessionRepo{db: db}
}

// Totals come from the receipts ledger over [session_start, session_end or now].
const sessionSelect = `
		SELECT s.id, s.device_id, s.license_id, s.pc_name, s.session_start, s.session_end, s.status,
			t.receipts, t.amount
		FROM session_logs s
		LEFT JOIN LATERAL (
			SELECT COUNT(r.id) AS receipts, COALESCE(SUM(r.amount), 0) AS amount
			FROM receipts r
			WHERE r.device_id = s.device_id
				AND r.created_at >= s.session_start
				AND r.created_at <= COALESCE(s.session_end, NOW())
		) t ON TRUE`

func scanSession(row pgx.Row) (*models.Session, error) {
	s := &models.Session{}
	err := row.Scan(&s.ID, &s.DeviceID, &s.LicenseID, &s.PCName, &s.SessionStart, &s.SessionEnd, &s.Status,
		&s.ReceiptCount, &s.TotalAmount)
	if err != nil {
		return nil, translateError(err)
	}
	return s, nil
}

func (r *sessionRepo) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO session_logs (id, device_id, license_id, pc_name, session_start, status)
		VALUES ($1, $2, $3, $4, NOW(), $5)
		RETURNING session_start
	`
	err := r.db.QueryRow(ctx, query, session.ID, session.DeviceID, session.LicenseID, session.PCName, session.Status).
		Scan(&session.SessionStart)
	return translateError(err)
}

func (r *sessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return scanSession(r.db.QueryRow(ctx, sessionSelect+` WHERE s.id = $1`, id))
}

func (r *sessionRepo) End(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	query := `UPDATE session_logs SET session_end = $1, status = 'ended' WHERE id = $2`
	return requireAffected(r.db.Exec(ctx, query, endedAt, id))
}

func (r *sessionRepo) IncrementLegacy(ctx context.Context, id uuid.UUID, amount float64) error {
	query := `UPDATE session_logs SET receipt_count = receipt_count + 1, total_amount = total_amount + $1 WHERE id = $2`
	return requireAffected(r.db.Exec(ctx, query, amount, id))
}

func (r *sessionRepo) List(ctx context.Context, filter models.SessionFilter) ([]*models.Session, error) {
	var conditions []string
	var args []any

	if filter.LicenseID != nil {
		args = append(args, *filter.LicenseID)
		conditions = append(conditions, fmt.Sprintf("s.license_id = $%d", len(args)))
	}
	if filter.DeviceID != nil {
		args = append(args, *filter.DeviceID)
		conditions = append(conditions, fmt.Sprintf("s.device_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)))
	}

	query := sessionSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY s.session_start DESC LIMIT $%d", len(args))

	return r.query(ctx, query, args...)
}

func (r *sessionRepo) ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*models.Session, error) {
	return r.query(ctx, sessionSelect+` WHERE s.device_id = $1 ORDER BY s.session_start DESC LIMIT $2`, deviceID, limit)
}

func (r *sessionRepo) query(ctx context.Context, query string, args ...any) ([]*models.Session, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []*models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM session_logs WHERE status = 'active'`).Scan(&count)
	return count, err
}

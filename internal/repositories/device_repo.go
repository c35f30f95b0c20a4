package repositories

import (
	"context"
	"time"

	"receiptpanel/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type DeviceRepository interface {
	Create(ctx context.Context, device *models.Device) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Device, error)
	GetByHardwareID(ctx context.Context, hardwareID string) (*models.Device, error)
	CountByLicense(ctx context.Context, licenseID uuid.UUID) (int, error)
	Touch(ctx context.Context, id uuid.UUID, pcName, osInfo, appVersion string, online bool) error
	AddReceipt(ctx context.Context, id uuid.UUID, amount float64) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*models.Device, error)
	MarkIdleOffline(ctx context.Context, cutoff time.Time) (int64, error)
	CountOnline(ctx context.Context) (int, error)
}

type deviceRepo struct {
	db Database
}

func NewDeviceRepo(db Database) DeviceRepository {
	return &deviceRepo{db: db}
}

const deviceColumns = `d.id, d.license_id, d.hardware_id, d.pc_name, d.os_info, d.app_version, d.last_seen,
		d.is_online, d.total_receipts, d.total_amount, d.created_at`

func scanDevice(row pgx.Row, extra ...any) (*models.Device, error) {
	d := &models.Device{}
	dest := append([]any{
		&d.ID, &d.LicenseID, &d.HardwareID, &d.PCName, &d.OSInfo, &d.AppVersion, &d.LastSeen,
		&d.IsOnline, &d.TotalReceipts, &d.TotalAmount, &d.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, translateError(err)
	}
	return d, nil
}

func (r *deviceRepo) Create(ctx context.Context, device *models.Device) error {
	query := `
		INSERT INTO devices (id, license_id, hardware_id, pc_name, os_info, app_version, last_seen, is_online, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), $7, NOW())
		RETURNING last_seen, created_at
	`
	err := r.db.QueryRow(ctx, query,
		device.ID, device.LicenseID, device.HardwareID, device.PCName, device.OSInfo, device.AppVersion, device.IsOnline,
	).Scan(&device.LastSeen, &device.CreatedAt)
	return translateError(err)
}

func (r *deviceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices d WHERE d.id = $1`
	return scanDevice(r.db.QueryRow(ctx, query, id))
}

func (r *deviceRepo) GetByHardwareID(ctx context.Context, hardwareID string) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices d WHERE d.hardware_id = $1`
	return scanDevice(r.db.QueryRow(ctx, query, hardwareID))
}

func (r *deviceRepo) CountByLicense(ctx context.Context, licenseID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM devices WHERE license_id = $1`, licenseID).Scan(&count)
	return count, err
}

func (r *deviceRepo) Touch(ctx context.Context, id uuid.UUID, pcName, osInfo, appVersion string, online bool) error {
	query := `
		UPDATE devices
		SET last_seen = NOW(), is_online = $1, pc_name = $2, os_info = $3, app_version = $4
		WHERE id = $5
	`
	return requireAffected(r.db.Exec(ctx, query, online, pcName, osInfo, appVersion, id))
}

func (r *deviceRepo) AddReceipt(ctx context.Context, id uuid.UUID, amount float64) error {
	query := `UPDATE devices SET total_receipts = total_receipts + 1, total_amount = total_amount + $1, last_seen = NOW() WHERE id = $2`
	return requireAffected(r.db.Exec(ctx, query, amount, id))
}

func (r *deviceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.Exec(ctx, `DELETE FROM devices WHERE id = $1`, id))
}

func (r *deviceRepo) List(ctx context.Context) ([]*models.Device, error) {
	query := `
		SELECT ` + deviceColumns + `, l.license_key, l.company_name
		FROM devices d
		JOIN licenses l ON l.id = d.license_id
		ORDER BY d.last_seen DESC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	devices := []*models.Device{}
	for rows.Next() {
		var key, company string
		d, err := scanDevice(rows, &key, &company)
		if err != nil {
			return nil, err
		}
		d.LicenseKey = key
		d.LicenseCompany = company
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// MarkIdleOffline flags devices that have not been seen since cutoff as offline.
func (r *deviceRepo) MarkIdleOffline(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE devices SET is_online = FALSE WHERE is_online = TRUE AND last_seen < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *deviceRepo) CountOnline(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM devices WHERE is_online = TRUE`).Scan(&count)
	return count, err
}

package repositories

import (
	"context"
	"fmt"

	"receiptpanel/internal/models"

	"github.com/google/uuid"
)

type ReceiptRepository interface {
	Create(ctx context.Context, receipt *models.Receipt) error
	ListRecentByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*models.Receipt, error)
	Export(ctx context.Context, filter models.ReceiptFilter) ([]*models.ReceiptExportRow, error)
}

type receiptRepo struct {
	db Database
}

func NewReceiptRepo(db Database) ReceiptRepository {
	return &receiptRepo{db: db}
}

// Create inserts the receipt stamped with the database's current date and
// fills DatePrinted and CreatedAt from the stored row.
func (r *receiptRepo) Create(ctx context.Context, receipt *models.Receipt) error {
	query := `
		INSERT INTO receipts (id, device_id, license_id, company_name, receipt_no, amount, vat_rate, vat_amount, description, cashier, template, date_printed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, CURRENT_DATE, NOW())
		RETURNING date_printed, created_at
	`
	err := r.db.QueryRow(ctx, query,
		receipt.ID, receipt.DeviceID, receipt.LicenseID, receipt.CompanyName, receipt.ReceiptNo,
		receipt.Amount, receipt.VatRate, receipt.VatAmount, receipt.Description, receipt.Cashier, receipt.Template,
	).Scan(&receipt.DatePrinted, &receipt.CreatedAt)
	return translateError(err)
}

func (r *receiptRepo) ListRecentByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*models.Receipt, error) {
	query := `
		SELECT id, device_id, license_id, company_name, receipt_no, amount, vat_rate, vat_amount,
			description, cashier, template, date_printed, created_at
		FROM receipts
		WHERE device_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	receipts := []*models.Receipt{}
	for rows.Next() {
		rc := &models.Receipt{}
		if err := rows.Scan(&rc.ID, &rc.DeviceID, &rc.LicenseID, &rc.CompanyName, &rc.ReceiptNo, &rc.Amount,
			&rc.VatRate, &rc.VatAmount, &rc.Description, &rc.Cashier, &rc.Template, &rc.DatePrinted, &rc.CreatedAt); err != nil {
			return nil, err
		}
		receipts = append(receipts, rc)
	}
	return receipts, rows.Err()
}

func (r *receiptRepo) Export(ctx context.Context, filter models.ReceiptFilter) ([]*models.ReceiptExportRow, error) {
	query := `
		SELECT r.id, r.created_at, r.date_printed, r.receipt_no, r.company_name, r.amount, r.vat_rate, r.vat_amount,
			r.description, r.cashier, r.template, l.license_key, l.company_name, d.pc_name, d.hardware_id, d.os_info
		FROM receipts r
		JOIN licenses l ON r.license_id = l.id
		JOIN devices d ON r.device_id = d.id
		WHERE r.date_printed BETWEEN $1::date AND $2::date
	`
	args := []any{filter.StartDate, filter.EndDate}
	if filter.LicenseID != nil {
		args = append(args, *filter.LicenseID)
		query += fmt.Sprintf(" AND r.license_id = $%d", len(args))
	}
	query += " ORDER BY r.created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*models.ReceiptExportRow{}
	for rows.Next() {
		row := &models.ReceiptExportRow{}
		if err := rows.Scan(&row.ReceiptID, &row.PrintedAt, &row.DatePrinted, &row.ReceiptNo, &row.CompanyName,
			&row.Amount, &row.VatRate, &row.VatAmount, &row.Description, &row.Cashier, &row.Template,
			&row.LicenseKey, &row.LicenseOwner, &row.PCName, &row.HardwareID, &row.OSInfo); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

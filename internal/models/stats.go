package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyStat is the per-device, per-day receipt counter.
type DailyStat struct {
	DeviceID      uuid.UUID `json:"user_id" db:"device_id"`
	LicenseID     uuid.UUID `json:"license_id" db:"license_id"`
	StatDate      time.Time `json:"stat_date" db:"stat_date"`
	TotalReceipts int       `json:"total_receipts" db:"total_receipts"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	TotalVat      float64   `json:"total_vat" db:"total_vat"`
}

// DailyTotal aggregates DailyStat rows of all devices for one date.
type DailyTotal struct {
	StatDate time.Time `json:"stat_date"`
	Receipts int       `json:"receipts"`
	Amount   float64   `json:"amount"`
	Vat      float64   `json:"vat"`
}

// CompanyStat is the per-license, per-company receipt counter.
type CompanyStat struct {
	LicenseID     uuid.UUID `json:"license_id" db:"license_id"`
	CompanyName   string    `json:"company_name" db:"company_name"`
	TotalReceipts int       `json:"total_receipts" db:"total_receipts"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	TotalVat      float64   `json:"total_vat" db:"total_vat"`
	LastReceiptAt time.Time `json:"last_receipt_at" db:"last_receipt_at"`
}

// Dashboard is the admin "today" overview.
type Dashboard struct {
	Date           string    `json:"date"`
	Receipts       int       `json:"receipts"`
	Amount         float64   `json:"amount"`
	Vat            float64   `json:"vat"`
	OnlineDevices  int       `json:"online_devices"`
	ActiveLicenses int       `json:"active_licenses"`
	ActiveSessions int       `json:"active_sessions"`
	GeneratedAt    time.Time `json:"generated_at"`
}

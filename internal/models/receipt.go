package models

import (
	"time"

	"github.com/google/uuid"
)

// Receipt is one printed receipt. Rows are never updated after insert.
type Receipt struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DeviceID    uuid.UUID `json:"user_id" db:"device_id"`
	LicenseID   uuid.UUID `json:"license_id" db:"license_id"`
	CompanyName string    `json:"company_name" db:"company_name"`
	ReceiptNo   string    `json:"receipt_no" db:"receipt_no"`
	Amount      float64   `json:"amount" db:"amount"`
	VatRate     float64   `json:"vat_rate" db:"vat_rate"`
	VatAmount   float64   `json:"vat_amount" db:"vat_amount"`
	Description string    `json:"description" db:"description"`
	Cashier     string    `json:"cashier" db:"cashier"`
	Template    string    `json:"template" db:"template"`
	DatePrinted time.Time `json:"date_printed" db:"date_printed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ReceiptExportRow is one line of the receipts export, joined with the
// owning license and device.
type ReceiptExportRow struct {
	ReceiptID    uuid.UUID `json:"receipt_id"`
	PrintedAt    time.Time `json:"printed_at"`
	DatePrinted  time.Time `json:"date_printed"`
	ReceiptNo    string    `json:"receipt_no"`
	CompanyName  string    `json:"company_name"`
	Amount       float64   `json:"amount"`
	VatRate      float64   `json:"vat_rate"`
	VatAmount    float64   `json:"vat_amount"`
	Description  string    `json:"description"`
	Cashier      string    `json:"cashier"`
	Template     string    `json:"template"`
	LicenseKey   string    `json:"license_key"`
	LicenseOwner string    `json:"license_owner"`
	PCName       string    `json:"pc_name"`
	HardwareID   string    `json:"hardware_id"`
	OSInfo       string    `json:"os_info"`
}

type ReceiptFilter struct {
	StartDate string
	EndDate   string
	LicenseID *uuid.UUID
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is one installation of the desktop client. It is exposed as "user"
// on the wire for compatibility with the desktop application.
type Device struct {
	ID             uuid.UUID `json:"id" db:"id"`
	LicenseID      uuid.UUID `json:"license_id" db:"license_id"`
	HardwareID     string    `json:"hardware_id" db:"hardware_id"`
	PCName         string    `json:"pc_name" db:"pc_name"`
	OSInfo         string    `json:"os_info" db:"os_info"`
	AppVersion     string    `json:"app_version" db:"app_version"`
	LastSeen       time.Time `json:"last_seen" db:"last_seen"`
	IsOnline       bool      `json:"is_online" db:"is_online"`
	TotalReceipts  int       `json:"total_receipts" db:"total_receipts"`
	TotalAmount    float64   `json:"total_amount" db:"total_amount"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	LicenseKey     string    `json:"license_key,omitempty" db:"-"`
	LicenseCompany string    `json:"license_company,omitempty" db:"-"`
}

// DeviceDetails is the admin drill-down view of a single device.
type DeviceDetails struct {
	Device         *Device      `json:"user"`
	RecentReceipts []*Receipt   `json:"recent_receipts"`
	DailyStats     []*DailyStat `json:"daily_stats"`
	Sessions       []*Session   `json:"sessions"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionStatusActive = "active"
	SessionStatusEnded  = "ended"
)

// Session is a window of device activity. ReceiptCount and TotalAmount are
// computed from the receipts ledger when read; the legacy stored counters are
// never exposed.
type Session struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	DeviceID     uuid.UUID  `json:"user_id" db:"device_id"`
	LicenseID    uuid.UUID  `json:"license_id" db:"license_id"`
	PCName       string     `json:"pc_name" db:"pc_name"`
	SessionStart time.Time  `json:"session_start" db:"session_start"`
	SessionEnd   *time.Time `json:"session_end" db:"session_end"`
	Status       string     `json:"status" db:"status"`
	ReceiptCount int        `json:"receipt_count" db:"-"`
	TotalAmount  float64    `json:"total_amount" db:"-"`
}

type SessionFilter struct {
	LicenseID *uuid.UUID
	DeviceID  *uuid.UUID
	Status    string
	Limit     int
}

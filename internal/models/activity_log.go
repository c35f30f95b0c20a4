package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActivityLicenseCheck = "license_check"
	ActivityReceipt      = "receipt"
	ActivityLogin        = "login"
	ActivityLogout       = "logout"
)

// ActivityLog is an append-only audit entry for device events.
type ActivityLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	LicenseID uuid.UUID  `json:"license_id" db:"license_id"`
	DeviceID  uuid.UUID  `json:"user_id" db:"device_id"`
	SessionID *uuid.UUID `json:"session_id" db:"session_id"`
	Action    string     `json:"action" db:"action"`
	Details   string     `json:"details" db:"details"`
	Amount    *float64   `json:"amount" db:"amount"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	PCName    string     `json:"pc_name,omitempty" db:"-"`
}

type ActivityFilter struct {
	LicenseID *uuid.UUID
	DeviceID  *uuid.UUID
	SessionID *uuid.UUID
	Action    string
	Limit     int
}

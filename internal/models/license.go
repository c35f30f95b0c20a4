package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	LicenseStatusActive    = "active"
	LicenseStatusSuspended = "suspended"
	LicenseStatusExpired   = "expired"
)

// License is an issued entitlement. ActiveDevices is only filled by admin reads.
type License struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	LicenseKey    string     `json:"license_key" db:"license_key"`
	CompanyName   string     `json:"company_name" db:"company_name"`
	ContactEmail  *string    `json:"contact_email" db:"contact_email"`
	ContactPhone  *string    `json:"contact_phone" db:"contact_phone"`
	Status        string     `json:"status" db:"status"`
	ExpiresAt     time.Time  `json:"expires_at" db:"expires_at"`
	DaysRemaining int        `json:"days_remaining" db:"days_remaining"`
	MaxDevices    int        `json:"max_devices" db:"max_devices"`
	Notes         *string    `json:"notes" db:"notes"`
	LastCheck     *time.Time `json:"last_check" db:"last_check"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	ActiveDevices int        `json:"active_devices" db:"-"`
}

// ValidLicenseStatus reports whether s is one of the three license states.
func ValidLicenseStatus(s string) bool {
	switch s {
	case LicenseStatusActive, LicenseStatusSuspended, LicenseStatusExpired:
		return true
	}
	return false
}

// DaysUntil returns the number of started days between now and expiresAt,
// rounded up. Zero or negative means the license has run out.
func DaysUntil(expiresAt, now time.Time) int {
	return int(math.Ceil(expiresAt.Sub(now).Hours() / 24))
}

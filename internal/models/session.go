package models

import (
	"time"

	"github.com/google/uuid"
)

// PartnerSession records a login session with parsed device information
type PartnerSession struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	PartnerID  uuid.UUID  `json:"partner_id" db:"partner_id"`
	IPAddress  string     `json:"ip_address" db:"ip_address"`
	UserAgent  string     `json:"user_agent" db:"user_agent"`
	DeviceType string     `json:"device_type" db:"device_type"`
	OS         string     `json:"os" db:"os"`
	Browser    string     `json:"browser" db:"browser"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty" db:"revoked_at"`
}

package models

import "time"

// SchedulingAppointment mirrors a vendor appointment received via webhook,
// kept for admin reference
type SchedulingAppointment struct {
	ID                int64     `json:"id" db:"id"` // vendor appointment id
	Type              string    `json:"type" db:"type"`
	FirstName         string    `json:"first_name" db:"first_name"`
	LastName          string    `json:"last_name" db:"last_name"`
	Email             string    `json:"email" db:"email"`
	Phone             string    `json:"phone" db:"phone"`
	Datetime          string    `json:"datetime" db:"datetime"`
	Duration          int       `json:"duration" db:"duration"`
	Calendar          string    `json:"calendar" db:"calendar"`
	Canceled          bool      `json:"canceled" db:"canceled"`
	LastWebhookAction string    `json:"last_webhook_action" db:"last_webhook_action"`
	LastWebhookAt     time.Time `json:"last_webhook_at" db:"last_webhook_at"`
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the lifecycle status of a training booking
type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusRescheduled BookingStatus = "rescheduled"
)

// ValidBookingStatus reports whether s is a recognized booking status
func ValidBookingStatus(s string) bool {
	switch BookingStatus(s) {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusRescheduled:
		return true
	}
	return false
}

// SyncStatus represents the scheduling-vendor sync state of a booking
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusNoMatch SyncStatus = "no_match"
	SyncStatusFailed  SyncStatus = "failed"
)

// BookingEmployee is a point-in-time snapshot of a selected employee.
// It survives deletion of the underlying employee record.
type BookingEmployee struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookingEmployeeList is the JSONB column holding employee snapshots
type BookingEmployeeList []BookingEmployee

// Value implements driver.Valuer for JSONB storage
func (l BookingEmployeeList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking employees: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSONB storage
func (l *BookingEmployeeList) Scan(src interface{}) error {
	if src == nil {
		*l = BookingEmployeeList{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for booking employees: %T", src)
	}
	if len(data) == 0 {
		*l = BookingEmployeeList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Booking represents a submitted training booking. Course and pricing fields
// are snapshots frozen at submission time; later catalog or discount changes
// never alter them.
type Booking struct {
	ID              uuid.UUID           `json:"id" db:"id"`
	PartnerID       uuid.UUID           `json:"partner_id" db:"partner_id"`
	CourseName      string              `json:"course_name" db:"course_name"`
	CourseCode      string              `json:"course_code" db:"course_code"`
	CourseDate      string              `json:"course_date" db:"course_date"` // YYYY-MM-DD
	Location        string              `json:"location" db:"location"`
	Employees       BookingEmployeeList `json:"employees" db:"employees"`
	PricePerPerson  int                 `json:"price_per_person" db:"price_per_person"`
	TotalPrice      int                 `json:"total_price" db:"total_price"`
	DiscountApplied int                 `json:"discount_applied" db:"discount_applied"`
	Status          BookingStatus       `json:"status" db:"status"`
	SyncStatus      SyncStatus          `json:"sync_status" db:"sync_status"`
	SyncError       *string             `json:"sync_error,omitempty" db:"sync_error"`
	AppointmentIDs  []int64             `json:"appointment_ids" db:"appointment_ids"`
	SyncedAt        *time.Time          `json:"synced_at,omitempty" db:"synced_at"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}

// UpdateBookingStatusRequest represents the admin request to change a
// booking's status
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

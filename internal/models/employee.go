package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Certification is one training record held by an employee. Dates are
// calendar dates in YYYY-MM-DD form; ExpiryDate is nil for certifications
// that never expire.
type Certification struct {
	CourseName    string  `json:"course_name"`
	DateCompleted string  `json:"date_completed"`
	ExpiryDate    *string `json:"expiry_date,omitempty"`
}

// Expiry parses the expiry date. The second return value is false when the
// certification has no expiry date or the stored value is malformed.
func (c Certification) Expiry() (time.Time, bool) {
	if c.ExpiryDate == nil || *c.ExpiryDate == "" {
		return time.Time{}, false
	}
	expiry, err := time.Parse("2006-01-02", *c.ExpiryDate)
	if err != nil {
		return time.Time{}, false
	}
	return expiry, true
}

// CertificationList is the employee's embedded certification document,
// stored as a JSONB column
type CertificationList []Certification

// Value implements driver.Valuer for JSONB storage
func (l CertificationList) Value() (driver.Value, error) {
	if l == nil {
		l = CertificationList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB retrieval
func (l *CertificationList) Scan(src interface{}) error {
	if src == nil {
		*l = CertificationList{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for CertificationList: %T", src)
	}

	return json.Unmarshal(data, l)
}

// Employee represents one member of a partner's roster
type Employee struct {
	ID             uuid.UUID         `json:"id" db:"id"`
	PartnerID      uuid.UUID         `json:"partner_id" db:"partner_id"`
	Name           string            `json:"name" db:"name"`
	Email          string            `json:"email" db:"email"`
	Role           string            `json:"role" db:"role"`
	Certifications CertificationList `json:"certifications" db:"certifications"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// CreateEmployeeRequest represents a new roster entry
type CreateEmployeeRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Role  string `json:"role" binding:"omitempty,max=100"`
}

// UpdateEmployeeRequest represents roster profile updates
type UpdateEmployeeRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Role  string `json:"role" binding:"omitempty,max=100"`
}

// AddCertificationRequest represents adding a training record to an employee
type AddCertificationRequest struct {
	CourseName    string  `json:"course_name" binding:"required,min=1,max=200"`
	DateCompleted string  `json:"date_completed" binding:"required"`
	ExpiryDate    *string `json:"expiry_date"`
}

// Validate validates the certification dates
func (r *AddCertificationRequest) Validate() error {
	if _, err := time.Parse("2006-01-02", r.DateCompleted); err != nil {
		return fmt.Errorf("date_completed must be YYYY-MM-DD")
	}
	if r.ExpiryDate != nil && *r.ExpiryDate != "" {
		if _, err := time.Parse("2006-01-02", *r.ExpiryDate); err != nil {
			return fmt.Errorf("expiry_date must be YYYY-MM-DD")
		}
	}
	return nil
}

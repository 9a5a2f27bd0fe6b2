package models

import (
	"errors"
	"time"
)

// Course represents a catalog entry with partner base pricing
type Course struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	BasePrice int       `json:"base_price" db:"base_price"` // whole currency units
	Category  string    `json:"category" db:"category"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PricedCourse is a catalog entry annotated with the price the requesting
// partner would actually pay.
type PricedCourse struct {
	Course
	DiscountPercent int `json:"discount_percent"`
	PricePerPerson  int `json:"price_per_person"`
}

// UpsertCourseRequest represents the admin request to create or update a
// catalog entry
type UpsertCourseRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      string `json:"code" binding:"required"`
	BasePrice int    `json:"base_price" binding:"required"`
	Category  string `json:"category"`
	Active    *bool  `json:"active,omitempty"`
}

// Validate validates the course request
func (r *UpsertCourseRequest) Validate() error {
	if r.BasePrice <= 0 {
		return errors.New("base_price must be positive")
	}
	return nil
}

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PartnerStatus represents the approval state of a partner account
type PartnerStatus string

const (
	PartnerStatusPending  PartnerStatus = "pending"
	PartnerStatusApproved PartnerStatus = "approved"
	PartnerStatusRejected PartnerStatus = "rejected"
)

// New partner accounts start on the silver tier until reviewed
const (
	DefaultDiscountTier    = "silver"
	DefaultDiscountPercent = 10
)

// Partner represents a partner business account
type Partner struct {
	ID              uuid.UUID     `json:"id" db:"id"`
	BusinessName    string        `json:"business_name" db:"business_name"`
	ContactName     string        `json:"contact_name" db:"contact_name"`
	Email           string        `json:"email" db:"email"`
	Phone           string        `json:"phone" db:"phone"`
	ABN             string        `json:"abn" db:"abn"`
	DiscountTier    string        `json:"discount_tier" db:"discount_tier"`
	DiscountPercent int           `json:"discount_percent" db:"discount_percent"`
	Status          PartnerStatus `json:"status" db:"status"`
	Roles           []string      `json:"roles" db:"roles"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// IsApproved reports whether discounts apply to this partner's bookings
func (p *Partner) IsApproved() bool {
	return p.Status == PartnerStatusApproved
}

// HasRole reports whether the partner carries the given role
func (p *Partner) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RegisterRequest represents a partner registration request
type RegisterRequest struct {
	BusinessName string `json:"business_name" binding:"required,min=2,max=200"`
	ContactName  string `json:"contact_name" binding:"omitempty,max=100"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8,max=72"`
	Phone        string `json:"phone" binding:"omitempty,max=20"`
	ABN          string `json:"abn" binding:"omitempty,max=20"`
}

// LoginRequest represents a partner login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdatePartnerRequest represents partner-editable profile updates
type UpdatePartnerRequest struct {
	BusinessName string `json:"business_name" binding:"required,min=2,max=200"`
	ContactName  string `json:"contact_name" binding:"omitempty,max=100"`
	Phone        string `json:"phone" binding:"omitempty,max=20"`
	ABN          string `json:"abn" binding:"omitempty,max=20"`
}

// AdminUpdatePartnerRequest represents an admin adjusting a partner's tier,
// discount or approval status. Nil fields are left unchanged.
type AdminUpdatePartnerRequest struct {
	DiscountTier    *string `json:"discount_tier"`
	DiscountPercent *int    `json:"discount_percent"`
	Status          *string `json:"status"`
}

// Validate validates an admin partner update
func (r *AdminUpdatePartnerRequest) Validate() error {
	if r.DiscountTier == nil && r.DiscountPercent == nil && r.Status == nil {
		return fmt.Errorf("no fields to update")
	}
	if r.DiscountPercent != nil && (*r.DiscountPercent < 0 || *r.DiscountPercent > 100) {
		return fmt.Errorf("discount percent must be between 0 and 100")
	}
	if r.Status != nil {
		switch PartnerStatus(*r.Status) {
		case PartnerStatusPending, PartnerStatusApproved, PartnerStatusRejected:
		default:
			return fmt.Errorf("status must be pending, approved or rejected")
		}
	}
	return nil
}

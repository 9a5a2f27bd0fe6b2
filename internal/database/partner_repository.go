package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PartnerRepository handles database operations for the partners table
type PartnerRepository struct {
	db DB
}

// NewPartnerRepository creates a new PartnerRepository
func NewPartnerRepository(db DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

// Create creates a new partner account. New partners start on the default
// silver tier with pending status, mirroring first-login profile creation.
func (r *PartnerRepository) Create(partner *models.Partner, passwordHash string) error {
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	if partner.DiscountTier == "" {
		partner.DiscountTier = models.DefaultDiscountTier
		partner.DiscountPercent = models.DefaultDiscountPercent
	}
	if partner.Status == "" {
		partner.Status = models.PartnerStatusPending
	}
	if len(partner.Roles) == 0 {
		partner.Roles = []string{"partner"}
	}

	query := `
		INSERT INTO partners (
			id, business_name, contact_name, email, phone, abn,
			discount_tier, discount_percent, status, roles, password_hash
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		partner.ID, partner.BusinessName, partner.ContactName, partner.Email,
		partner.Phone, partner.ABN, partner.DiscountTier, partner.DiscountPercent,
		partner.Status, pq.Array(partner.Roles), passwordHash,
	).Scan(&partner.CreatedAt, &partner.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}

	return nil
}

// GetByID retrieves a partner by ID
func (r *PartnerRepository) GetByID(partnerID uuid.UUID) (*models.Partner, error) {
	query := `
		SELECT id, business_name, contact_name, email, phone, abn,
		       discount_tier, discount_percent, status, roles,
		       created_at, updated_at
		FROM partners
		WHERE id = $1
	`

	return r.scanPartner(r.db.QueryRow(query, partnerID))
}

// GetByEmail retrieves a partner by email
func (r *PartnerRepository) GetByEmail(email string) (*models.Partner, error) {
	query := `
		SELECT id, business_name, contact_name, email, phone, abn,
		       discount_tier, discount_percent, status, roles,
		       created_at, updated_at
		FROM partners
		WHERE email = $1
	`

	return r.scanPartner(r.db.QueryRow(query, email))
}

// GetPasswordHash retrieves the stored password hash for a login attempt
func (r *PartnerRepository) GetPasswordHash(email string) (uuid.UUID, string, error) {
	query := `SELECT id, password_hash FROM partners WHERE email = $1`

	var id uuid.UUID
	var hash string
	err := r.db.QueryRow(query, email).Scan(&id, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, "", fmt.Errorf("partner not found: %w", ErrNotFound)
		}
		return uuid.Nil, "", fmt.Errorf("failed to fetch credentials: %w", err)
	}

	return id, hash, nil
}

// UpdateProfile updates the partner-editable profile fields
func (r *PartnerRepository) UpdateProfile(partnerID uuid.UUID, businessName, contactName, phone, abn string) error {
	query := `
		UPDATE partners
		SET business_name = $2, contact_name = $3, phone = $4, abn = $5,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, partnerID, businessName, contactName, phone, abn)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("partner not found: %w", ErrNotFound)
	}

	return nil
}

// UpdateDiscount updates the admin-controlled discount and approval fields.
// Nil fields are left unchanged.
func (r *PartnerRepository) UpdateDiscount(partnerID uuid.UUID, tier *string, percent *int, status *string) error {
	query := `
		UPDATE partners
		SET discount_tier = COALESCE($2, discount_tier),
		    discount_percent = COALESCE($3, discount_percent),
		    status = COALESCE($4, status),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, partnerID, tier, percent, status)
	if err != nil {
		return fmt.Errorf("failed to update partner discount: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("partner not found: %w", ErrNotFound)
	}

	return nil
}

// List retrieves all partners ordered by business name (admin view)
func (r *PartnerRepository) List() ([]models.Partner, error) {
	query := `
		SELECT id, business_name, contact_name, email, phone, abn,
		       discount_tier, discount_percent, status, roles,
		       created_at, updated_at
		FROM partners
		ORDER BY business_name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	partners := []models.Partner{}
	for rows.Next() {
		partner, err := r.scanPartnerRow(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *partner)
	}

	return partners, rows.Err()
}

func (r *PartnerRepository) scanPartner(row scanner) (*models.Partner, error) {
	partner, err := r.scanPartnerRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("partner not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch partner: %w", err)
	}
	return partner, nil
}

func (r *PartnerRepository) scanPartnerRow(row scanner) (*models.Partner, error) {
	partner := &models.Partner{}
	var contactName, phone, abn sql.NullString

	err := row.Scan(
		&partner.ID, &partner.BusinessName, &contactName, &partner.Email,
		&phone, &abn, &partner.DiscountTier, &partner.DiscountPercent,
		&partner.Status, pq.Array(&partner.Roles),
		&partner.CreatedAt, &partner.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// Optional fields default to empty strings at the read boundary
	partner.ContactName = contactName.String
	partner.Phone = phone.String
	partner.ABN = abn.String

	return partner, nil
}

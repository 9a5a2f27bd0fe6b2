package database

import (
	"fmt"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
	"github.com/google/uuid"
)

// SessionRepository records partner login sessions with device information
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create records a new login session
func (r *SessionRepository) Create(session *models.PartnerSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	query := `
		INSERT INTO partner_sessions (id, partner_id, ip_address, user_agent, device_type, os, browser)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.db.QueryRow(
		query,
		session.ID, session.PartnerID, session.IPAddress,
		session.UserAgent, session.DeviceType, session.OS, session.Browser,
	).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// RevokeAll marks every active session for a partner as revoked (logout)
func (r *SessionRepository) RevokeAll(partnerID uuid.UUID) error {
	query := `
		UPDATE partner_sessions
		SET revoked_at = NOW()
		WHERE partner_id = $1 AND revoked_at IS NULL
	`

	if _, err := r.db.Exec(query, partnerID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	return nil
}

// ListByPartner retrieves a partner's sessions, newest first
func (r *SessionRepository) ListByPartner(partnerID uuid.UUID) ([]models.PartnerSession, error) {
	query := `
		SELECT id, partner_id, ip_address, user_agent, device_type, os, browser, created_at, revoked_at
		FROM partner_sessions
		WHERE partner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.PartnerSession{}
	for rows.Next() {
		var session models.PartnerSession
		err := rows.Scan(
			&session.ID, &session.PartnerID, &session.IPAddress,
			&session.UserAgent, &session.DeviceType, &session.OS, &session.Browser,
			&session.CreatedAt, &session.RevokedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

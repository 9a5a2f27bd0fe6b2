package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coralseatraining/partner-portal-backend/internal/models"
)

// ContentRepository handles the site content key-value store used by the
// admin panel (course copy, testimonials, contact details)
type ContentRepository struct {
	db DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Get retrieves one content entry
func (r *ContentRepository) Get(key string) (*models.ContentEntry, error) {
	query := `SELECT key, value, updated_at FROM site_content WHERE key = $1`

	entry := &models.ContentEntry{}
	var value []byte
	err := r.db.QueryRow(query, key).Scan(&entry.Key, &value, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("content entry not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch content entry: %w", err)
	}
	entry.Value = json.RawMessage(value)

	return entry, nil
}

// Set creates or replaces a content entry
func (r *ContentRepository) Set(key string, value json.RawMessage) error {
	query := `
		INSERT INTO site_content (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = NOW()
	`

	if _, err := r.db.Exec(query, key, []byte(value)); err != nil {
		return fmt.Errorf("failed to store content entry: %w", err)
	}

	return nil
}

// Delete removes a content entry
func (r *ContentRepository) Delete(key string) error {
	result, err := r.db.Exec(`DELETE FROM site_content WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete content entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("content entry not found: %w", ErrNotFound)
	}

	return nil
}

// List retrieves all content entries ordered by key
func (r *ContentRepository) List() ([]models.ContentEntry, error) {
	rows, err := r.db.Query(`SELECT key, value, updated_at FROM site_content ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list content entries: %w", err)
	}
	defer rows.Close()

	entries := []models.ContentEntry{}
	for rows.Next() {
		var entry models.ContentEntry
		var value []byte
		if err := rows.Scan(&entry.Key, &value, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan content entry: %w", err)
		}
		entry.Value = json.RawMessage(value)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

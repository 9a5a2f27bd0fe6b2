package models

import (
	"encoding/json"
	"time"
)

// ContentEntry is a site content document keyed by a well-known name
// (course copy, testimonials, contact info). Values are free-form JSON
// maintained through the admin content endpoints.
type ContentEntry struct {
	Key       string          `json:"key" db:"key"`
	Value     json.RawMessage `json:"value" db:"value"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// SetContentRequest represents the request to create or replace a content
// entry
type SetContentRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}

// ContentExport is the full content tree as exported or imported by the
// admin panel
type ContentExport struct {
	ExportedAt time.Time                  `json:"exported_at"`
	Entries    map[string]json.RawMessage `json:"entries"`
}

package model

import (
	"encoding/json"
	"time"
)

// Document is one row of the documents table. Content is opaque JSON; the
// only structural requirement is a non-empty "id" field matching ID. IDs
// are globally unique: the primary key is id alone, so the same id can
// never live in two stores at once.
type Document struct {
	ID        string          `json:"id"`
	Store     string          `json:"store"`
	Content   json.RawMessage `json:"content"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Snapshot is a full-database export grouped by store name. Version is
// informational, not a compatibility gate; consumers that want to enforce
// one do so themselves.
type Snapshot struct {
	Version     string                       `json:"version"`
	Timestamp   string                       `json:"timestamp"`
	Data        map[string][]json.RawMessage `json:"data"`
	RecordCount int                          `json:"recordCount"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type ImportResponse struct {
	Success  bool `json:"success"`
	Imported int  `json:"imported"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

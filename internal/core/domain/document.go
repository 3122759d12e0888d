package domain

import "time"

type DocumentStatus string

const (
	StatusIngesting DocumentStatus = "ingesting"
	StatusReady     DocumentStatus = "ready"
	StatusFailed    DocumentStatus = "failed"
)

// Document is the upload ledger record for one ingested file. The file
// itself is never kept; once its chunks are indexed the record is
// immutable apart from the final status transition.
type Document struct {
	ID         string         `json:"id"`
	Filename   string         `json:"filename"`
	Source     string         `json:"source"`
	ChunkCount int            `json:"chunk_count"`
	Status     DocumentStatus `json:"status"`
	Error      string         `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

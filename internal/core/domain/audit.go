package domain

import "time"

// Audit actors.
const (
	ActorPipeline = "pipeline"
	ActorHuman    = "human"
)

// Audit field names for whole-record events.
const (
	AuditFieldSync   = "sync"
	AuditFieldReview = "review"
)

// AuditEntry is an append-only change record. Entries are never updated
// or deleted.
type AuditEntry struct {
	ID        string
	FileID    string
	Field     string
	OldValue  string
	NewValue  string
	Actor     string
	CreatedAt time.Time
}

package sync

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Run statuses
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusError   = "error"
)

// SyncResult is the audit record of one orchestrator run. It is written to
// the sync_logs collection once, when the run finishes, and never mutated.
type SyncResult struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SourceID      primitive.ObjectID `json:"source_id" bson:"source_id"`
	Status        string             `json:"status" bson:"status"`
	Processed     int                `json:"processed_count" bson:"processed_count"`
	ErrorCount    int                `json:"error_count" bson:"error_count"`
	Deleted       int                `json:"deleted_count" bson:"deleted_count"`
	ErrorMessages []string           `json:"error_messages,omitempty" bson:"error_messages,omitempty"`
	DeletedIDs    []string           `json:"deleted_external_ids,omitempty" bson:"deleted_external_ids,omitempty"`
	StartedAt     time.Time          `json:"started_at" bson:"started_at"`
	DurationMs    int64              `json:"duration_ms" bson:"duration_ms"`
}

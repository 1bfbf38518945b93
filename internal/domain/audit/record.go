package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record is one append-only entry in the audit trail. Records are written by
// the audit recorder after the originating transaction commits and are never
// updated or deleted.
type Record struct {
	ID            uuid.UUID     `json:"id"`
	WorkspaceID   uuid.UUID     `json:"workspace_id"`
	EntityID      uuid.UUID     `json:"entity_id"`
	Domain        string        `json:"domain"`
	Action        Action        `json:"action"`
	Changes       []FieldChange `json:"changes,omitempty"`
	PerformedBy   *uuid.UUID    `json:"performed_by,omitempty"`
	CorrelationID string        `json:"correlation_id,omitempty"`
	PerformedAt   time.Time     `json:"performed_at"`
}

// RecordFromDescriptor materializes an audit record from a change descriptor.
// The record keeps the descriptor's event ID so redelivered descriptors map
// to the same row.
func RecordFromDescriptor(d *ChangeDescriptor) *Record {
	return &Record{
		ID:            d.EventID(),
		WorkspaceID:   d.WorkspaceID(),
		EntityID:      d.AggregateID(),
		Domain:        d.Domain,
		Action:        d.Action,
		Changes:       d.Changes,
		PerformedBy:   d.PerformedBy,
		CorrelationID: d.CorrelationID,
		PerformedAt:   d.OccurredAt(),
	}
}

// RecordRepository persists and queries audit records
type RecordRepository interface {
	// Save appends a record to the audit trail
	Save(ctx context.Context, record *Record) error

	// ListForEntity returns the audit history of one entity within a
	// workspace, newest first
	ListForEntity(ctx context.Context, workspaceID, entityID uuid.UUID, limit int) ([]Record, error)
}

package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/audit"
)

// AuditRecordModel is the persistence model for audit records. The table is
// append-only; rows are never updated.
type AuditRecordModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	WorkspaceID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_entity,priority:1"`
	EntityID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	Domain        string     `gorm:"size:50;not null"`
	Action        string     `gorm:"size:50;not null"`
	Changes       []byte     `gorm:"type:jsonb"`
	PerformedBy   *uuid.UUID `gorm:"type:uuid"`
	CorrelationID string     `gorm:"size:100"`
	PerformedAt   time.Time  `gorm:"not null;index:idx_audit_entity,priority:3,sort:desc"`
}

// TableName returns the table name for AuditRecordModel
func (AuditRecordModel) TableName() string {
	return "audit_records"
}

// ToDomain converts the model to a domain audit record
func (m *AuditRecordModel) ToDomain() (*audit.Record, error) {
	var changes []audit.FieldChange
	if len(m.Changes) > 0 {
		if err := json.Unmarshal(m.Changes, &changes); err != nil {
			return nil, fmt.Errorf("failed to decode audit changes: %w", err)
		}
	}
	return &audit.Record{
		ID:            m.ID,
		WorkspaceID:   m.WorkspaceID,
		EntityID:      m.EntityID,
		Domain:        m.Domain,
		Action:        audit.Action(m.Action),
		Changes:       changes,
		PerformedBy:   m.PerformedBy,
		CorrelationID: m.CorrelationID,
		PerformedAt:   m.PerformedAt,
	}, nil
}

// AuditRecordModelFromDomain builds the model from a domain audit record
func AuditRecordModelFromDomain(r *audit.Record) (*AuditRecordModel, error) {
	var changes []byte
	if len(r.Changes) > 0 {
		encoded, err := json.Marshal(r.Changes)
		if err != nil {
			return nil, fmt.Errorf("failed to encode audit changes: %w", err)
		}
		changes = encoded
	}
	return &AuditRecordModel{
		ID:            r.ID,
		WorkspaceID:   r.WorkspaceID,
		EntityID:      r.EntityID,
		Domain:        r.Domain,
		Action:        string(r.Action),
		Changes:       changes,
		PerformedBy:   r.PerformedBy,
		CorrelationID: r.CorrelationID,
		PerformedAt:   r.PerformedAt,
	}, nil
}

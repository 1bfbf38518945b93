package audit

import (
	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/shared"
)

// Action identifies what happened to an entity
type Action string

// Actions recorded by the audit pipeline
const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionGrouped       Action = "grouped"
	ActionUngrouped     Action = "ungrouped"
	ActionSplit         Action = "split"
	ActionUnsplit       Action = "unsplit"
	ActionMemberRemoved Action = "member_removed"
)

// FieldChange captures a single field transition
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// ChangeDescriptor is the domain event emitted for every audited mutation.
// It is built once, inside the primary transaction, and never mutated after
// publish. The event type is "<domain>.<action>", e.g. "transaction.updated".
type ChangeDescriptor struct {
	shared.BaseDomainEvent
	Domain        string        `json:"domain"`
	Action        Action        `json:"action"`
	Changes       []FieldChange `json:"changes,omitempty"`
	PerformedBy   *uuid.UUID    `json:"performed_by,omitempty"`
	CorrelationID string        `json:"correlation_id,omitempty"`
}

// DescriptorParams carries everything needed to build a ChangeDescriptor
type DescriptorParams struct {
	Domain        string
	Action        Action
	EntityID      uuid.UUID
	WorkspaceID   uuid.UUID
	Changes       []FieldChange
	PerformedBy   *uuid.UUID
	CorrelationID string
}

// NewChangeDescriptor builds a descriptor for an audited mutation.
// Creation descriptors carry no field changes: the created row itself is the
// record of the initial state, so callers pass nil Changes for ActionCreated.
func NewChangeDescriptor(p DescriptorParams) *ChangeDescriptor {
	changes := p.Changes
	if p.Action == ActionCreated {
		changes = nil
	}
	return &ChangeDescriptor{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			p.Domain+"."+string(p.Action),
			p.Domain,
			p.EntityID,
			p.WorkspaceID,
		),
		Domain:        p.Domain,
		Action:        p.Action,
		Changes:       changes,
		PerformedBy:   p.PerformedBy,
		CorrelationID: p.CorrelationID,
	}
}

package workspace

import (
	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/shared"
)

// Event types published by the workspace domain
const (
	EventTypeMemberRemoved = "workspace.member_removed"
)

// MemberRemovedEvent is raised when a membership is revoked. It carries only
// identifiers: subscribers that care about the remaining member count must
// re-query it, since the count at publish time may be stale by dispatch time.
type MemberRemovedEvent struct {
	shared.BaseDomainEvent
	MemberID      uuid.UUID  `json:"member_id"`
	UserID        uuid.UUID  `json:"user_id"`
	RemovedBy     *uuid.UUID `json:"removed_by,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
}

// NewMemberRemovedEvent creates a new MemberRemovedEvent
func NewMemberRemovedEvent(member *Member, removedBy *uuid.UUID, correlationID string) *MemberRemovedEvent {
	return &MemberRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeMemberRemoved,
			"workspace",
			member.WorkspaceID,
			member.WorkspaceID,
		),
		MemberID:      member.GetID(),
		UserID:        member.UserID,
		RemovedBy:     removedBy,
		CorrelationID: correlationID,
	}
}

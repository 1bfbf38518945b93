package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/audit"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
)

// DefaultHistoryLimit caps history queries that do not ask for a limit
const DefaultHistoryLimit = 50

// HistoryService is the read side of the audit trail
type HistoryService struct {
	records audit.RecordRepository
	members workspace.MemberRepository
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(records audit.RecordRepository, members workspace.MemberRepository) *HistoryService {
	return &HistoryService{records: records, members: members}
}

// HistoryEntryResponse represents one audit record in API responses
type HistoryEntryResponse struct {
	ID            uuid.UUID           `json:"id"`
	Domain        string              `json:"domain"`
	Action        string              `json:"action"`
	Changes       []audit.FieldChange `json:"changes,omitempty"`
	PerformedBy   *uuid.UUID          `json:"performed_by,omitempty"`
	CorrelationID string              `json:"correlation_id,omitempty"`
	PerformedAt   time.Time           `json:"performed_at"`
}

// ListForEntity returns an entity's audit history, newest first. Any
// workspace member may read the trail.
func (s *HistoryService) ListForEntity(ctx context.Context, workspaceID, entityID, actorID uuid.UUID, limit int) ([]HistoryEntryResponse, error) {
	if _, err := s.members.FindByWorkspaceAndUser(ctx, workspaceID, actorID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrForbidden
		}
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	records, err := s.records.ListForEntity(ctx, workspaceID, entityID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]HistoryEntryResponse, len(records))
	for i, record := range records {
		entries[i] = HistoryEntryResponse{
			ID:            record.ID,
			Domain:        record.Domain,
			Action:        string(record.Action),
			Changes:       record.Changes,
			PerformedBy:   record.PerformedBy,
			CorrelationID: record.CorrelationID,
			PerformedAt:   record.PerformedAt,
		}
	}
	return entries, nil
}

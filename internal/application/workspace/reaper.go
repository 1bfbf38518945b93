package workspace

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
)

// Reaper deletes a workspace once its last membership is gone. It subscribes
// to member-removed events and re-queries the live membership count on every
// delivery instead of trusting anything the event carries: the count at
// publish time may be stale by the time a worker runs.
//
// The whole check-and-delete runs in one transaction, and the delete itself
// is idempotent, so a redelivered event for an already-reaped workspace is a
// no-op. Two concurrent removals can still both observe zero and both issue
// the delete; the second delete matches no rows and succeeds.
type Reaper struct {
	workspaces workspace.Repository
	members    workspace.MemberRepository
	tx         TransactionManager
	logger     *zap.Logger
}

// NewReaper creates a new workspace reaper
func NewReaper(
	workspaces workspace.Repository,
	members workspace.MemberRepository,
	tx TransactionManager,
	log *zap.Logger,
) *Reaper {
	return &Reaper{
		workspaces: workspaces,
		members:    members,
		tx:         tx,
		logger:     log,
	}
}

// EventTypes returns the event types the reaper subscribes to
func (r *Reaper) EventTypes() []string {
	return []string{workspace.EventTypeMemberRemoved}
}

// Handle reaps the event's workspace if it no longer has members
func (r *Reaper) Handle(ctx context.Context, event shared.DomainEvent) error {
	removed, ok := event.(*workspace.MemberRemovedEvent)
	if !ok {
		// A mismatched concrete type cannot become right on redelivery, so
		// returning an error would only make the bus retry a lost cause.
		r.logger.Warn("ignoring event with unexpected concrete type",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
		)
		return nil
	}
	workspaceID := removed.WorkspaceID()

	return r.tx.Do(ctx, func(ctx context.Context) error {
		count, err := r.members.CountByWorkspace(ctx, workspaceID)
		if err != nil {
			return fmt.Errorf("failed to count members of workspace %s: %w", workspaceID, err)
		}
		if count > 0 {
			r.logger.Debug("workspace still has members, not reaping",
				zap.String("workspace_id", workspaceID.String()),
				zap.Int64("member_count", count),
			)
			return nil
		}

		if err := r.workspaces.Delete(ctx, workspaceID); err != nil {
			return fmt.Errorf("failed to delete workspace %s: %w", workspaceID, err)
		}
		r.logger.Info("reaped empty workspace",
			zap.String("workspace_id", workspaceID.String()),
			zap.String("event_id", removed.EventID().String()),
		)
		return nil
	})
}

// Ensure Reaper implements shared.EventHandler
var _ shared.EventHandler = (*Reaper)(nil)

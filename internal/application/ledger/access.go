package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
)

// TransactionManager runs a unit of work with commit-gated event release
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// access checks workspace membership for ledger operations. Viewers may
// read; editors and the owner may mutate.
type access struct {
	members workspace.MemberRepository
}

func (a access) requireMember(ctx context.Context, workspaceID, userID uuid.UUID) error {
	_, err := a.members.FindByWorkspaceAndUser(ctx, workspaceID, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.ErrForbidden
	}
	return err
}

func (a access) requireEditor(ctx context.Context, workspaceID, userID uuid.UUID) error {
	member, err := a.members.FindByWorkspaceAndUser(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrForbidden
		}
		return err
	}
	if member.Role == workspace.MemberRoleViewer {
		return shared.ErrForbidden
	}
	return nil
}

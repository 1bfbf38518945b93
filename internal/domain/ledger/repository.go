package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/shared"
)

// TransactionRepository persists ledger transactions
type TransactionRepository interface {
	shared.WorkspaceScopedRepository[Transaction]

	// FindByGroup returns all transactions of a group within a workspace
	FindByGroup(ctx context.Context, workspaceID, groupID uuid.UUID) ([]Transaction, error)

	// FindSplitParts returns the child transactions of a split parent
	FindSplitParts(ctx context.Context, workspaceID, parentID uuid.UUID) ([]Transaction, error)

	// CountForWorkspace returns how many transactions a workspace has
	CountForWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error)

	// CountByCategory returns how many transactions reference a category
	// within a workspace
	CountByCategory(ctx context.Context, workspaceID, categoryID uuid.UUID) (int64, error)

	// DeleteSplitParts removes all child transactions of a split parent
	DeleteSplitParts(ctx context.Context, workspaceID, parentID uuid.UUID) error
}

// AccountRepository persists ledger accounts
type AccountRepository interface {
	shared.WorkspaceScopedRepository[Account]

	// FindByName returns the account with the given name within a workspace
	FindByName(ctx context.Context, workspaceID uuid.UUID, name string) (*Account, error)
}

// CategoryRepository persists categories
type CategoryRepository interface {
	shared.WorkspaceScopedRepository[Category]

	// DeleteForWorkspace removes a category if it still exists. The delete is
	// idempotent: removing an already-removed category is not an error.
	DeleteForWorkspace(ctx context.Context, workspaceID, categoryID uuid.UUID) error
}

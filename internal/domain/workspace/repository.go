package workspace

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists workspaces
type Repository interface {
	// FindByID returns the workspace with the given ID
	FindByID(ctx context.Context, id uuid.UUID) (*Workspace, error)

	// Save inserts or updates a workspace
	Save(ctx context.Context, ws *Workspace) error

	// Delete removes a workspace. The delete is idempotent: deleting a
	// workspace that is already gone is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemberRepository persists workspace memberships
type MemberRepository interface {
	// FindByID returns the membership with the given ID
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)

	// FindByWorkspace returns all memberships of a workspace
	FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]Member, error)

	// FindByWorkspaceAndUser returns a user's membership in a workspace
	FindByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*Member, error)

	// CountByWorkspace returns the current number of memberships. This is
	// the reference count the cascade reaper consults.
	CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error)

	// Save inserts or updates a membership
	Save(ctx context.Context, member *Member) error

	// Delete removes a membership
	Delete(ctx context.Context, id uuid.UUID) error
}

package workspace

import (
	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/shared"
)

// Workspace is the tenant boundary of the ledger. A shared workspace exists
// while it has members; the last membership removal triggers its deletion.
type Workspace struct {
	shared.BaseAggregateRoot
	Name    string    `json:"name"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// NewWorkspace creates a new workspace owned by the given user
func NewWorkspace(name string, ownerID uuid.UUID) (*Workspace, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Workspace name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Workspace name cannot exceed 100 characters")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}

	return &Workspace{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		OwnerID:           ownerID,
	}, nil
}

// Rename changes the workspace name
func (w *Workspace) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Workspace name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Workspace name cannot exceed 100 characters")
	}

	w.Name = name
	w.Touch()

	return nil
}

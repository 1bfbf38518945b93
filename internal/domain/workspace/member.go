package workspace

import (
	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/shared"
)

// MemberRole represents a member's role within a workspace
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleEditor MemberRole = "EDITOR"
	MemberRoleViewer MemberRole = "VIEWER"
)

// IsValid checks if the role is a valid MemberRole
func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleOwner, MemberRoleEditor, MemberRoleViewer:
		return true
	}
	return false
}

// String returns the string representation of MemberRole
func (r MemberRole) String() string {
	return string(r)
}

// Member is one user's membership in a workspace. Memberships are the
// reference count that keeps a workspace alive.
type Member struct {
	shared.BaseAggregateRoot
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Role        MemberRole `json:"role"`
}

// NewMember creates a new workspace membership
func NewMember(workspaceID, userID uuid.UUID, role MemberRole) (*Member, error) {
	if workspaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WORKSPACE", "Workspace ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Member role is not valid")
	}

	return &Member{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WorkspaceID:       workspaceID,
		UserID:            userID,
		Role:              role,
	}, nil
}

// ChangeRole updates the member's role
func (m *Member) ChangeRole(role MemberRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Member role is not valid")
	}
	if m.Role == MemberRoleOwner && role != MemberRoleOwner {
		return shared.NewDomainError("INVALID_STATE", "Owner role cannot be demoted; transfer ownership first")
	}

	m.Role = role
	m.Touch()

	return nil
}

package models

import (
	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/workspace"
)

// WorkspaceModel is the persistence model for workspaces
type WorkspaceModel struct {
	AggregateModel
	Name    string    `gorm:"size:100;not null"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for WorkspaceModel
func (WorkspaceModel) TableName() string {
	return "workspaces"
}

// ToDomain converts the model to a domain workspace
func (m *WorkspaceModel) ToDomain() *workspace.Workspace {
	return &workspace.Workspace{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		OwnerID:           m.OwnerID,
	}
}

// WorkspaceModelFromDomain builds the model from a domain workspace
func WorkspaceModelFromDomain(w *workspace.Workspace) *WorkspaceModel {
	m := &WorkspaceModel{
		Name:    w.Name,
		OwnerID: w.OwnerID,
	}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	return m
}

// MemberModel is the persistence model for workspace memberships
type MemberModel struct {
	AggregateModel
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index:idx_member_workspace_user,unique,priority:1"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_member_workspace_user,unique,priority:2"`
	Role        string    `gorm:"size:20;not null"`
}

// TableName returns the table name for MemberModel
func (MemberModel) TableName() string {
	return "workspace_members"
}

// ToDomain converts the model to a domain member
func (m *MemberModel) ToDomain() *workspace.Member {
	return &workspace.Member{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		WorkspaceID:       m.WorkspaceID,
		UserID:            m.UserID,
		Role:              workspace.MemberRole(m.Role),
	}
}

// MemberModelFromDomain builds the model from a domain member
func MemberModelFromDomain(member *workspace.Member) *MemberModel {
	m := &MemberModel{
		WorkspaceID: member.WorkspaceID,
		UserID:      member.UserID,
		Role:        member.Role.String(),
	}
	m.FromDomainAggregateRoot(member.BaseAggregateRoot)
	return m
}

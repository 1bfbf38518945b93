package workspace

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
	"github.com/finledger/backend/internal/infrastructure/logger"
)

// TransactionManager runs a unit of work with commit-gated event release
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// MemberService manages workspaces and their memberships. Removing the last
// membership publishes a MemberRemovedEvent whose subscriber reaps the
// now-empty workspace; the service itself never deletes workspaces.
type MemberService struct {
	workspaces workspace.Repository
	members    workspace.MemberRepository
	tx         TransactionManager
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewMemberService creates a new MemberService
func NewMemberService(
	workspaces workspace.Repository,
	members workspace.MemberRepository,
	tx TransactionManager,
	publisher shared.EventPublisher,
	log *zap.Logger,
) *MemberService {
	return &MemberService{
		workspaces: workspaces,
		members:    members,
		tx:         tx,
		publisher:  publisher,
		logger:     log,
	}
}

// WorkspaceResponse represents a workspace in API responses
type WorkspaceResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uuid.UUID `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MemberResponse represents a membership in API responses
type MemberResponse struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	UserID      uuid.UUID `json:"user_id"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateWorkspaceRequest represents a request to create a workspace
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddMemberRequest represents a request to add a member to a workspace
type AddMemberRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Role   string    `json:"role" binding:"required"`
}

// CreateWorkspace creates a workspace and its owner membership in one unit
// of work
func (s *MemberService) CreateWorkspace(ctx context.Context, ownerID uuid.UUID, req CreateWorkspaceRequest) (*WorkspaceResponse, error) {
	ws, err := workspace.NewWorkspace(req.Name, ownerID)
	if err != nil {
		return nil, err
	}
	owner, err := workspace.NewMember(ws.ID, ownerID, workspace.MemberRoleOwner)
	if err != nil {
		return nil, err
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if err := s.workspaces.Save(ctx, ws); err != nil {
			return err
		}
		return s.members.Save(ctx, owner)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("workspace created",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return toWorkspaceResponse(ws), nil
}

// GetWorkspace returns a workspace visible to the given user
func (s *MemberService) GetWorkspace(ctx context.Context, workspaceID, userID uuid.UUID) (*WorkspaceResponse, error) {
	if _, err := s.members.FindByWorkspaceAndUser(ctx, workspaceID, userID); err != nil {
		return nil, err
	}
	ws, err := s.workspaces.FindByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return toWorkspaceResponse(ws), nil
}

// RenameWorkspace changes a workspace name. Only the owner may rename.
func (s *MemberService) RenameWorkspace(ctx context.Context, workspaceID, actorID uuid.UUID, name string) (*WorkspaceResponse, error) {
	if err := s.requireRole(ctx, workspaceID, actorID, workspace.MemberRoleOwner); err != nil {
		return nil, err
	}

	var ws *workspace.Workspace
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		found, err := s.workspaces.FindByID(ctx, workspaceID)
		if err != nil {
			return err
		}
		if err := found.Rename(name); err != nil {
			return err
		}
		ws = found
		return s.workspaces.Save(ctx, ws)
	})
	if err != nil {
		return nil, err
	}
	return toWorkspaceResponse(ws), nil
}

// AddMember adds a user to a workspace. Only the owner may add members.
func (s *MemberService) AddMember(ctx context.Context, workspaceID, actorID uuid.UUID, req AddMemberRequest) (*MemberResponse, error) {
	if err := s.requireRole(ctx, workspaceID, actorID, workspace.MemberRoleOwner); err != nil {
		return nil, err
	}

	role := workspace.MemberRole(req.Role)
	if role == workspace.MemberRoleOwner {
		return nil, shared.NewDomainError("INVALID_ROLE", "A workspace has exactly one owner")
	}
	member, err := workspace.NewMember(workspaceID, req.UserID, role)
	if err != nil {
		return nil, err
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if existing, err := s.members.FindByWorkspaceAndUser(ctx, workspaceID, req.UserID); err == nil && existing != nil {
			return shared.NewDomainError("ALREADY_MEMBER", "User is already a member of this workspace")
		} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		return s.members.Save(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return toMemberResponse(member), nil
}

// ChangeMemberRole updates a member's role. Only the owner may change roles.
func (s *MemberService) ChangeMemberRole(ctx context.Context, workspaceID, memberID, actorID uuid.UUID, role string) (*MemberResponse, error) {
	if err := s.requireRole(ctx, workspaceID, actorID, workspace.MemberRoleOwner); err != nil {
		return nil, err
	}

	var member *workspace.Member
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		found, err := s.members.FindByID(ctx, memberID)
		if err != nil {
			return err
		}
		if found.WorkspaceID != workspaceID {
			return shared.ErrNotFound
		}
		if err := found.ChangeRole(workspace.MemberRole(role)); err != nil {
			return err
		}
		member = found
		return s.members.Save(ctx, member)
	})
	if err != nil {
		return nil, err
	}
	return toMemberResponse(member), nil
}

// ListMembers returns the memberships of a workspace
func (s *MemberService) ListMembers(ctx context.Context, workspaceID, userID uuid.UUID) ([]MemberResponse, error) {
	if _, err := s.members.FindByWorkspaceAndUser(ctx, workspaceID, userID); err != nil {
		return nil, err
	}

	members, err := s.members.FindByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	responses := make([]MemberResponse, len(members))
	for i := range members {
		responses[i] = *toMemberResponse(&members[i])
	}
	return responses, nil
}

// RemoveMember revokes a membership. The actor must be the owner, or the
// member removing themselves. The removal event is published inside the same
// unit of work; it reaches subscribers only after the delete commits, and one
// of them deletes the workspace when no membership remains.
func (s *MemberService) RemoveMember(ctx context.Context, workspaceID, memberID, actorID uuid.UUID) error {
	return s.tx.Do(ctx, func(ctx context.Context) error {
		member, err := s.members.FindByID(ctx, memberID)
		if err != nil {
			return err
		}
		if member.WorkspaceID != workspaceID {
			return shared.ErrNotFound
		}

		if member.UserID != actorID {
			if err := s.requireRole(ctx, workspaceID, actorID, workspace.MemberRoleOwner); err != nil {
				return err
			}
		}

		if err := s.members.Delete(ctx, member.GetID()); err != nil {
			return err
		}

		removedBy := actorID
		event := workspace.NewMemberRemovedEvent(member, &removedBy, logger.GetRequestID(ctx))
		return s.publisher.Publish(ctx, event)
	})
}

// requireRole verifies the actor holds one of the given roles in the workspace
func (s *MemberService) requireRole(ctx context.Context, workspaceID, actorID uuid.UUID, roles ...workspace.MemberRole) error {
	member, err := s.members.FindByWorkspaceAndUser(ctx, workspaceID, actorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.ErrForbidden
		}
		return err
	}
	for _, role := range roles {
		if member.Role == role {
			return nil
		}
	}
	return shared.ErrForbidden
}

func toWorkspaceResponse(ws *workspace.Workspace) *WorkspaceResponse {
	return &WorkspaceResponse{
		ID:        ws.ID,
		Name:      ws.Name,
		OwnerID:   ws.OwnerID,
		CreatedAt: ws.CreatedAt,
		UpdatedAt: ws.UpdatedAt,
	}
}

func toMemberResponse(member *workspace.Member) *MemberResponse {
	return &MemberResponse{
		ID:          member.GetID(),
		WorkspaceID: member.WorkspaceID,
		UserID:      member.UserID,
		Role:        member.Role.String(),
		CreatedAt:   member.CreatedAt,
	}
}

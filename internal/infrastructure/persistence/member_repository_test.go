package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
)

func mustMember(t *testing.T, workspaceID, userID uuid.UUID, role workspace.MemberRole) *workspace.Member {
	member, err := workspace.NewMember(workspaceID, userID, role)
	require.NoError(t, err)
	return member
}

func TestCountByWorkspace(t *testing.T) {
	repo := NewGormMemberRepository(setupTxTestDB(t))
	ctx := context.Background()
	workspaceID := uuid.New()

	count, err := repo.CountByWorkspace(ctx, workspaceID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.Save(ctx, mustMember(t, workspaceID, uuid.New(), workspace.MemberRoleOwner)))
	require.NoError(t, repo.Save(ctx, mustMember(t, workspaceID, uuid.New(), workspace.MemberRoleEditor)))
	require.NoError(t, repo.Save(ctx, mustMember(t, uuid.New(), uuid.New(), workspace.MemberRoleOwner)))

	count, err = repo.CountByWorkspace(ctx, workspaceID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "count must not include other workspaces")
}

func TestMemberDeleteIsIdempotent(t *testing.T) {
	repo := NewGormMemberRepository(setupTxTestDB(t))
	ctx := context.Background()
	workspaceID := uuid.New()

	member := mustMember(t, workspaceID, uuid.New(), workspace.MemberRoleViewer)
	require.NoError(t, repo.Save(ctx, member))

	require.NoError(t, repo.Delete(ctx, member.ID))
	require.NoError(t, repo.Delete(ctx, member.ID), "deleting an already removed member succeeds")

	count, err := repo.CountByWorkspace(ctx, workspaceID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestFindByWorkspaceAndUser(t *testing.T) {
	repo := NewGormMemberRepository(setupTxTestDB(t))
	ctx := context.Background()
	workspaceID := uuid.New()
	userID := uuid.New()

	member := mustMember(t, workspaceID, userID, workspace.MemberRoleEditor)
	require.NoError(t, repo.Save(ctx, member))

	found, err := repo.FindByWorkspaceAndUser(ctx, workspaceID, userID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, found.ID)
	assert.Equal(t, workspace.MemberRoleEditor, found.Role)

	_, err = repo.FindByWorkspaceAndUser(ctx, workspaceID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestWorkspaceDeleteIsIdempotent(t *testing.T) {
	repo := NewGormWorkspaceRepository(setupTxTestDB(t))
	ctx := context.Background()

	ws, err := workspace.NewWorkspace("Shared Budget", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, ws))

	require.NoError(t, repo.Delete(ctx, ws.ID))
	require.NoError(t, repo.Delete(ctx, ws.ID), "reaping an already deleted workspace succeeds")

	_, err = repo.FindByID(ctx, ws.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

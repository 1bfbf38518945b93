package workspace

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkspaceValidation(t *testing.T) {
	_, err := NewWorkspace("", uuid.New())
	assert.Error(t, err)

	_, err = NewWorkspace("Household", uuid.Nil)
	assert.Error(t, err)

	ws, err := NewWorkspace("Household", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "Household", ws.Name)
}

func TestMemberRoleGuards(t *testing.T) {
	member, err := NewMember(uuid.New(), uuid.New(), MemberRoleOwner)
	require.NoError(t, err)

	err = member.ChangeRole(MemberRoleViewer)
	assert.Error(t, err, "owner cannot be demoted")

	editor, err := NewMember(uuid.New(), uuid.New(), MemberRoleEditor)
	require.NoError(t, err)
	require.NoError(t, editor.ChangeRole(MemberRoleViewer))
	assert.Equal(t, MemberRoleViewer, editor.Role)
}

func TestMemberRemovedEvent(t *testing.T) {
	member, err := NewMember(uuid.New(), uuid.New(), MemberRoleEditor)
	require.NoError(t, err)
	actor := uuid.New()

	event := NewMemberRemovedEvent(member, &actor, "req-42")

	assert.Equal(t, EventTypeMemberRemoved, event.EventType())
	assert.Equal(t, member.WorkspaceID, event.AggregateID())
	assert.Equal(t, member.WorkspaceID, event.WorkspaceID())
	assert.Equal(t, member.GetID(), event.MemberID)
	assert.Equal(t, &actor, event.RemovedBy)
	assert.Equal(t, "req-42", event.CorrelationID)
}

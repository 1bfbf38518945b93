package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/audit"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
)

type staticMemberRepository struct {
	members map[uuid.UUID]map[uuid.UUID]*workspace.Member
}

func newStaticMemberRepository() *staticMemberRepository {
	return &staticMemberRepository{members: make(map[uuid.UUID]map[uuid.UUID]*workspace.Member)}
}

func (r *staticMemberRepository) add(workspaceID, userID uuid.UUID, role workspace.MemberRole) {
	if r.members[workspaceID] == nil {
		r.members[workspaceID] = make(map[uuid.UUID]*workspace.Member)
	}
	member, _ := workspace.NewMember(workspaceID, userID, role)
	r.members[workspaceID][userID] = member
}

func (r *staticMemberRepository) FindByID(context.Context, uuid.UUID) (*workspace.Member, error) {
	return nil, shared.ErrNotFound
}

func (r *staticMemberRepository) FindByWorkspace(context.Context, uuid.UUID) ([]workspace.Member, error) {
	return nil, nil
}

func (r *staticMemberRepository) FindByWorkspaceAndUser(_ context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	if member, ok := r.members[workspaceID][userID]; ok {
		return member, nil
	}
	return nil, shared.ErrNotFound
}

func (r *staticMemberRepository) CountByWorkspace(_ context.Context, workspaceID uuid.UUID) (int64, error) {
	return int64(len(r.members[workspaceID])), nil
}

func (r *staticMemberRepository) Save(context.Context, *workspace.Member) error { return nil }

func (r *staticMemberRepository) Delete(context.Context, uuid.UUID) error { return nil }

var _ workspace.MemberRepository = (*staticMemberRepository)(nil)

func TestHistoryListReturnsNewestFirst(t *testing.T) {
	records := newMemoryRecordRepository()
	members := newStaticMemberRepository()
	workspaceID := uuid.New()
	actorID := uuid.New()
	members.add(workspaceID, actorID, workspace.MemberRoleViewer)

	recorder := NewRecorder(records, zap.NewNop())
	descriptor := newTransactionDescriptor(workspaceID, audit.ActionUpdated, []audit.FieldChange{
		{Field: "payee", Old: "Cafe", New: "Bakery"},
	})
	require.NoError(t, recorder.Handle(context.Background(), descriptor))

	svc := NewHistoryService(records, members)
	entries, err := svc.ListForEntity(context.Background(), workspaceID, descriptor.AggregateID(), actorID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "transaction", entries[0].Domain)
	assert.Equal(t, string(audit.ActionUpdated), entries[0].Action)
	require.Len(t, entries[0].Changes, 1)
	assert.Equal(t, "payee", entries[0].Changes[0].Field)
}

func TestHistoryListRequiresMembership(t *testing.T) {
	records := newMemoryRecordRepository()
	members := newStaticMemberRepository()
	workspaceID := uuid.New()

	svc := NewHistoryService(records, members)
	_, err := svc.ListForEntity(context.Background(), workspaceID, uuid.New(), uuid.New(), 0)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

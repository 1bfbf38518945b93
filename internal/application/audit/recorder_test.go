package audit

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/audit"
	"github.com/finledger/backend/internal/domain/ledger"
	"github.com/finledger/backend/internal/domain/workspace"
)

// memoryRecordRepository is an in-memory audit.RecordRepository for tests
type memoryRecordRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]audit.Record
	saveErr error
}

func newMemoryRecordRepository() *memoryRecordRepository {
	return &memoryRecordRepository{records: make(map[uuid.UUID]audit.Record)}
}

func (r *memoryRecordRepository) Save(_ context.Context, record *audit.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.records[record.ID] = *record
	return nil
}

func (r *memoryRecordRepository) ListForEntity(_ context.Context, workspaceID, entityID uuid.UUID, limit int) ([]audit.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Record
	for _, record := range r.records {
		if record.WorkspaceID == workspaceID && record.EntityID == entityID {
			out = append(out, record)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTransactionDescriptor(workspaceID uuid.UUID, action audit.Action, changes []audit.FieldChange) *audit.ChangeDescriptor {
	return audit.NewChangeDescriptor(audit.DescriptorParams{
		Domain:      ledger.AuditDomainTransaction,
		Action:      action,
		EntityID:    uuid.New(),
		WorkspaceID: workspaceID,
		Changes:     changes,
	})
}

func TestRecorderPersistsDescriptor(t *testing.T) {
	repo := newMemoryRecordRepository()
	recorder := NewRecorder(repo, zap.NewNop())
	workspaceID := uuid.New()

	descriptor := newTransactionDescriptor(workspaceID, audit.ActionUpdated, []audit.FieldChange{
		{Field: "payee", Old: "Old Shop", New: "New Shop"},
	})
	require.NoError(t, recorder.Handle(context.Background(), descriptor))

	records, err := repo.ListForEntity(context.Background(), workspaceID, descriptor.AggregateID(), 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, descriptor.EventID(), records[0].ID)
	assert.Equal(t, audit.ActionUpdated, records[0].Action)
	require.Len(t, records[0].Changes, 1)
	assert.Equal(t, "payee", records[0].Changes[0].Field)
}

func TestRecorderIgnoresNonDescriptorEvents(t *testing.T) {
	repo := newMemoryRecordRepository()
	recorder := NewRecorder(repo, zap.NewNop())

	member, err := workspace.NewMember(uuid.New(), uuid.New(), workspace.MemberRoleOwner)
	require.NoError(t, err)
	event := workspace.NewMemberRemovedEvent(member, nil, "req-1")

	require.NoError(t, recorder.Handle(context.Background(), event))
	assert.Empty(t, repo.records)
}

func TestRecorderIgnoresUntrackedDomains(t *testing.T) {
	repo := newMemoryRecordRepository()
	recorder := NewRecorder(repo, zap.NewNop())

	descriptor := audit.NewChangeDescriptor(audit.DescriptorParams{
		Domain:      "category",
		Action:      audit.ActionUpdated,
		EntityID:    uuid.New(),
		WorkspaceID: uuid.New(),
	})
	require.NoError(t, recorder.Handle(context.Background(), descriptor))
	assert.Empty(t, repo.records)
}

func TestRecorderPropagatesSaveFailure(t *testing.T) {
	repo := newMemoryRecordRepository()
	repo.saveErr = assert.AnError
	recorder := NewRecorder(repo, zap.NewNop())

	descriptor := newTransactionDescriptor(uuid.New(), audit.ActionCreated, nil)
	err := recorder.Handle(context.Background(), descriptor)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRecorderIsWildcardSubscriber(t *testing.T) {
	recorder := NewRecorder(newMemoryRecordRepository(), zap.NewNop())
	assert.Empty(t, recorder.EventTypes())
}

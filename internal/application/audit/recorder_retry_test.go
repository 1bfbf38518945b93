package audit

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/audit"
	"github.com/finledger/backend/internal/infrastructure/event"
)

// flakyRecordRepository fails the first n Save calls, then behaves normally
type flakyRecordRepository struct {
	*memoryRecordRepository
	remainingFailures atomic.Int32
	attempts          atomic.Int32
}

func newFlakyRecordRepository(failures int32) *flakyRecordRepository {
	repo := &flakyRecordRepository{memoryRecordRepository: newMemoryRecordRepository()}
	repo.remainingFailures.Store(failures)
	return repo
}

func (r *flakyRecordRepository) Save(ctx context.Context, record *audit.Record) error {
	r.attempts.Add(1)
	if r.remainingFailures.Add(-1) >= 0 {
		return errors.New("storage unavailable")
	}
	return r.memoryRecordRepository.Save(ctx, record)
}

func newRetryTestBus(t *testing.T, repo audit.RecordRepository) *event.AsyncEventBus {
	log := zap.NewNop()
	bus := event.NewAsyncEventBus(log, event.NewRetryExecutor(3, log), event.Config{Workers: 1, QueueSize: 16})
	bus.Subscribe(NewRecorder(repo, log))
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return bus
}

func TestRecorderRecoversFromTransientFailures(t *testing.T) {
	repo := newFlakyRecordRepository(2)
	bus := newRetryTestBus(t, repo)

	workspaceID := uuid.New()
	descriptor := newTransactionDescriptor(workspaceID, audit.ActionUpdated, []audit.FieldChange{
		{Field: "amount", Old: "-50", New: "-75"},
	})
	require.NoError(t, bus.Dispatch(context.Background(), descriptor))

	require.Eventually(t, func() bool {
		records, err := repo.ListForEntity(context.Background(), workspaceID, descriptor.AggregateID(), 0)
		return err == nil && len(records) == 1
	}, 2*time.Second, 10*time.Millisecond, "two failures fit inside the three-attempt bound")
	assert.Equal(t, int32(3), repo.attempts.Load())
}

func TestRecorderGivesUpAtAttemptBound(t *testing.T) {
	repo := newFlakyRecordRepository(100)
	bus := newRetryTestBus(t, repo)

	workspaceID := uuid.New()
	descriptor := newTransactionDescriptor(workspaceID, audit.ActionUpdated, nil)
	require.NoError(t, bus.Dispatch(context.Background(), descriptor))

	// Exactly three attempts are made, and the trail stays empty. The
	// committed mutation is unaffected by the recorder giving up.
	require.Eventually(t, func() bool {
		return repo.attempts.Load() == 3
	}, 2*time.Second, 10*time.Millisecond)

	assert.Never(t, func() bool {
		return repo.attempts.Load() > 3
	}, 300*time.Millisecond, 30*time.Millisecond)

	records, err := repo.ListForEntity(context.Background(), workspaceID, descriptor.AggregateID(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

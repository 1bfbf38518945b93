package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkProcessedFirstTime(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	isNew, err := store.MarkProcessed(context.Background(), "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)

	processed, err := store.IsProcessed(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestMarkProcessedDuplicate(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	_, err := store.MarkProcessed(context.Background(), "evt-1", time.Minute)
	require.NoError(t, err)

	isNew, err := store.MarkProcessed(context.Background(), "evt-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, isNew)
}

func TestExpiredEntryCanBeReprocessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	_, err := store.MarkProcessed(context.Background(), "evt-1", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	processed, err := store.IsProcessed(context.Background(), "evt-1")
	require.NoError(t, err)
	assert.False(t, processed)

	isNew, err := store.MarkProcessed(context.Background(), "evt-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, isNew)
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	_, err := store.MarkProcessed(context.Background(), "evt-1", time.Millisecond)
	require.NoError(t, err)
	_, err = store.MarkProcessed(context.Background(), "evt-2", time.Hour)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	store.sweep()

	assert.Equal(t, 1, store.Size())
}

func TestCloseIsIdempotent(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}

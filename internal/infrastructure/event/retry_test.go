package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	exec := NewRetryExecutor(3, zap.NewNop())
	attempts := 0

	err := exec.Run(context.Background(), "op", func(ctx context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryRecoversWithinBound(t *testing.T) {
	exec := NewRetryExecutor(3, zap.NewNop())
	attempts := 0

	err := exec.Run(context.Background(), "op", func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient failure")
		}
		return nil
	})

	require.NoError(t, err, "two failures then a success stays within the bound")
	assert.Equal(t, 3, attempts)
}

func TestRetryExhaustionPropagatesLastError(t *testing.T) {
	exec := NewRetryExecutor(3, zap.NewNop())
	attempts := 0
	terminal := errors.New("store unavailable")

	err := exec.Run(context.Background(), "audit-write", func(ctx context.Context) error {
		attempts++
		return terminal
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.ErrorIs(t, err, terminal)
	assert.Contains(t, err.Error(), "audit-write")
}

func TestRetryDefaultsAttemptBound(t *testing.T) {
	exec := NewRetryExecutor(0, zap.NewNop())
	assert.Equal(t, DefaultMaxAttempts, exec.MaxAttempts())
}

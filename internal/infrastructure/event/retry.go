package event

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxAttempts is the retry bound applied to subscriber invocations
const DefaultMaxAttempts = 3

// RetryExecutor runs an operation up to a fixed number of attempts with no
// delay between them. It keeps no state across calls; the attempt counter
// lives on the stack of each Run invocation.
type RetryExecutor struct {
	maxAttempts int
	logger      *zap.Logger
}

// NewRetryExecutor creates a retry executor with the given attempt bound
func NewRetryExecutor(maxAttempts int, logger *zap.Logger) *RetryExecutor {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RetryExecutor{
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// MaxAttempts returns the configured attempt bound
func (r *RetryExecutor) MaxAttempts() int {
	return r.maxAttempts
}

// Run invokes op until it succeeds or the attempt bound is reached. Each
// failed attempt is logged; the final failure is returned wrapped rather
// than swallowed.
func (r *RetryExecutor) Run(ctx context.Context, name string, op func(context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		r.logger.Warn("operation attempt failed",
			zap.String("operation", name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Error(err),
		)
	}
	return fmt.Errorf("%s: all %d attempts failed: %w", name, r.maxAttempts, err)
}

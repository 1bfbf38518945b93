package event

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/shared"
)

// IdempotencyMetrics tracks dedupe statistics across handler invocations
type IdempotencyMetrics struct {
	Processed  atomic.Int64
	Duplicates atomic.Int64
	Failures   atomic.Int64
}

// IdempotentHandler wraps an EventHandler with duplicate-delivery protection.
// Dispatch is at-least-once: a crash between handler success and ack, or a
// deliberate re-dispatch, can deliver the same event twice. Handlers whose
// effects are not naturally idempotent are wrapped with this check.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
	metrics *IdempotencyMetrics
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	config shared.IdempotencyConfig,
	log *zap.Logger,
) *IdempotentHandler {
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  config,
		logger:  log,
		metrics: &IdempotencyMetrics{},
	}
}

// EventTypes returns the wrapped handler's subscriptions
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless it has already been processed
func (h *IdempotentHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, evt)
	}

	eventID := evt.EventID().String()

	processed, err := h.store.IsProcessed(ctx, eventID)
	if err != nil {
		// A dedupe-store outage must not drop events. Processing anyway
		// risks a duplicate, which is the lesser failure.
		h.logger.Warn("idempotency check failed, processing anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", evt.EventType()),
			zap.Error(err),
		)
	} else if processed {
		h.metrics.Duplicates.Add(1)
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", eventID),
			zap.String("event_type", evt.EventType()),
		)
		return nil
	}

	// The key is recorded only after the handler succeeds. A failed attempt
	// stays unmarked so the retry executor's next attempt is not mistaken
	// for a duplicate. Two concurrent deliveries of the same event can both
	// pass the check, so wrapped handlers still need idempotent effects.
	if err := h.handler.Handle(ctx, evt); err != nil {
		h.metrics.Failures.Add(1)
		return err
	}

	if _, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL); err != nil {
		h.logger.Warn("failed to record processed event",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
	h.metrics.Processed.Add(1)
	return nil
}

// Metrics returns the dedupe counters for this handler
func (h *IdempotentHandler) Metrics() *IdempotencyMetrics {
	return h.metrics
}

// Ensure IdempotentHandler implements EventHandler
var _ shared.EventHandler = (*IdempotentHandler)(nil)

package event

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/logger"
)

const (
	// DefaultWorkers is the default dispatch worker count
	DefaultWorkers = 4
	// DefaultQueueSize is the default dispatch queue capacity
	DefaultQueueSize = 256
)

// Config holds tuning knobs for the async event bus
type Config struct {
	Workers   int
	QueueSize int
}

// dispatchTask is one event handed to the worker pool. The request ID is
// captured at enqueue time because the worker runs on a detached context
// where the original request no longer exists.
type dispatchTask struct {
	event     shared.DomainEvent
	requestID string
}

// AsyncEventBus dispatches domain events to subscribers on a bounded worker
// pool. Events published inside a primary transaction are staged on the
// context's pending-event buffer and only enqueued after the transaction
// commits; see persistence.TxManager. Each subscriber invocation runs under
// the retry executor, and a subscriber failure never affects other
// subscribers or the already-committed transaction that produced the event.
type AsyncEventBus struct {
	registry *HandlerRegistry
	retry    *RetryExecutor
	logger   *zap.Logger
	queue    chan dispatchTask
	workers  int

	mu      sync.RWMutex
	running bool
	wg      sync.WaitGroup
}

// NewAsyncEventBus creates a new async event bus
func NewAsyncEventBus(log *zap.Logger, retry *RetryExecutor, cfg Config) *AsyncEventBus {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	return &AsyncEventBus{
		registry: NewHandlerRegistry(),
		retry:    retry,
		logger:   log,
		queue:    make(chan dispatchTask, cfg.QueueSize),
		workers:  cfg.Workers,
	}
}

// Publish stages events on the context's pending-event buffer when a primary
// transaction is open; otherwise the events go straight to the worker pool
func (b *AsyncEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if pending := shared.PendingEventsFromContext(ctx); pending != nil {
		pending.Add(events...)
		return nil
	}
	return b.Dispatch(ctx, events...)
}

// Dispatch enqueues events onto the worker pool, bypassing any staging
// buffer. The transaction manager calls this with the drained buffer after a
// successful commit.
func (b *AsyncEventBus) Dispatch(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return fmt.Errorf("event bus is not running")
	}

	requestID := logger.GetRequestID(ctx)
	for _, evt := range events {
		select {
		case b.queue <- dispatchTask{event: evt, requestID: requestID}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a handler for specific event types
func (b *AsyncEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler
func (b *AsyncEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start launches the dispatch workers
func (b *AsyncEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}
	b.running = true
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	b.logger.Info("event bus started",
		zap.Int("workers", b.workers),
		zap.Int("queue_size", cap(b.queue)),
	)
	return nil
}

// Stop drains the queue and waits for in-flight dispatches to finish
func (b *AsyncEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return nil
	}
	b.running = false
	close(b.queue)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("event bus stopped")
	return nil
}

func (b *AsyncEventBus) worker() {
	defer b.wg.Done()
	for task := range b.queue {
		b.process(task)
	}
}

// process dispatches one event to all of its subscribers on a fresh context.
// The original request context is gone by the time a worker runs, so only
// the captured request ID crosses the boundary.
func (b *AsyncEventBus) process(task dispatchTask) {
	ctx := logger.WithContext(context.Background(), b.logger)
	log := b.logger
	if task.requestID != "" {
		ctx, log = logger.WithRequestID(ctx, b.logger, task.requestID)
	}

	for _, handler := range b.registry.HandlersFor(task.event.EventType()) {
		name := fmt.Sprintf("%T", handler)
		err := b.retry.Run(ctx, name, func(ctx context.Context) error {
			return b.invoke(ctx, handler, task.event)
		})
		if err != nil {
			log.Error("event handler failed permanently",
				zap.String("handler", name),
				zap.String("event_type", task.event.EventType()),
				zap.String("event_id", task.event.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

// invoke calls a handler and converts panics into errors so a panicking
// subscriber counts as a failed attempt instead of killing the worker
func (b *AsyncEventBus) invoke(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler.Handle(ctx, evt)
}

// Ensure AsyncEventBus implements EventBus
var _ shared.EventBus = (*AsyncEventBus)(nil)

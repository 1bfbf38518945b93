package persistence

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/logger"
)

type txKey struct{}

// withDB attaches a transactional connection to the context
func withDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, db)
}

// dbFromContext returns the transactional connection attached to the
// context, or nil when no transaction is open
func dbFromContext(ctx context.Context) *gorm.DB {
	db, _ := ctx.Value(txKey{}).(*gorm.DB)
	return db
}

// Dispatcher hands committed events to the async worker pool
type Dispatcher interface {
	Dispatch(ctx context.Context, events ...shared.DomainEvent) error
}

// TxManager runs a unit of work inside a database transaction and releases
// events published during it only after the commit succeeds. It attaches two
// things to the context before invoking the unit of work: the transactional
// connection, which repositories pick up via their conn helper, and a
// pending-event buffer that captures every EventPublisher.Publish call made
// inside the transaction. On rollback the buffer is abandoned, so no
// subscriber ever observes an uncommitted mutation. On commit the buffer is
// drained into the dispatcher; from that point the caller no longer waits on
// subscriber work.
type TxManager struct {
	db         *gorm.DB
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *gorm.DB, dispatcher Dispatcher, log *zap.Logger) *TxManager {
	return &TxManager{
		db:         db,
		dispatcher: dispatcher,
		logger:     log,
	}
}

// Do executes fn inside a transaction with commit-gated event release
func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, pending := shared.WithPendingEvents(ctx)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withDB(ctx, tx))
	})
	if err != nil {
		return err
	}

	events := pending.Drain()
	if len(events) == 0 {
		return nil
	}
	if err := m.dispatcher.Dispatch(ctx, events...); err != nil {
		// The transaction is already committed; the mutation stands even if
		// its side effects could not be enqueued.
		m.logger.Error("failed to dispatch committed events",
			zap.String("request_id", logger.GetRequestID(ctx)),
			zap.Int("event_count", len(events)),
			zap.Error(err),
		)
	}
	return nil
}

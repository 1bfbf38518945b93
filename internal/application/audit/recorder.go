package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/audit"
	"github.com/finledger/backend/internal/domain/ledger"
	"github.com/finledger/backend/internal/domain/shared"
)

// Recorder subscribes to all domain events and materializes change
// descriptors into the append-only audit trail. It registers as a wildcard
// subscriber and filters by itself: events that are not change descriptors,
// or descriptors for domains it does not track, are ignored without error.
//
// Each Handle call persists one record in its own implicit transaction, so a
// retried delivery starts from a clean slate. The record keeps the
// descriptor's event ID; a duplicate delivery that already wrote its row is
// absorbed by the repository's conflict handling.
type Recorder struct {
	records audit.RecordRepository
	domains map[string]bool
	logger  *zap.Logger
}

// NewRecorder creates an audit recorder for the ledger domains
func NewRecorder(records audit.RecordRepository, logger *zap.Logger) *Recorder {
	return &Recorder{
		records: records,
		domains: map[string]bool{
			ledger.AuditDomainTransaction: true,
			ledger.AuditDomainAccount:     true,
		},
		logger: logger,
	}
}

// EventTypes returns nil: the recorder is a wildcard subscriber
func (r *Recorder) EventTypes() []string {
	return nil
}

// Handle persists the change descriptor carried by the event, if any
func (r *Recorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	descriptor, ok := event.(*audit.ChangeDescriptor)
	if !ok {
		return nil
	}
	if !r.domains[descriptor.Domain] {
		r.logger.Debug("skipping descriptor for untracked domain",
			zap.String("domain", descriptor.Domain),
			zap.String("event_id", descriptor.EventID().String()),
		)
		return nil
	}

	record := audit.RecordFromDescriptor(descriptor)
	if err := r.records.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to persist audit record %s: %w", record.ID, err)
	}

	r.logger.Debug("audit record written",
		zap.String("record_id", record.ID.String()),
		zap.String("domain", record.Domain),
		zap.String("action", string(record.Action)),
		zap.String("entity_id", record.EntityID.String()),
	)
	return nil
}

// Ensure Recorder implements shared.EventHandler
var _ shared.EventHandler = (*Recorder)(nil)

package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finledger/backend/internal/domain/audit"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
)

// GormAuditRecordRepository implements audit.RecordRepository using GORM.
// The audit trail is append-only: Save only ever inserts.
type GormAuditRecordRepository struct {
	db *gorm.DB
}

// NewGormAuditRecordRepository creates a new GormAuditRecordRepository
func NewGormAuditRecordRepository(db *gorm.DB) *GormAuditRecordRepository {
	return &GormAuditRecordRepository{db: db}
}

func (r *GormAuditRecordRepository) conn(ctx context.Context) *gorm.DB {
	if tx := dbFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Save appends a record to the audit trail. The record ID is the descriptor's
// event ID, so a redelivered descriptor hits the primary key and becomes a
// no-op instead of a duplicate row.
func (r *GormAuditRecordRepository) Save(ctx context.Context, record *audit.Record) error {
	model, err := models.AuditRecordModelFromDomain(record)
	if err != nil {
		return err
	}
	return r.conn(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
}

// ListForEntity returns the audit history of one entity within a workspace,
// newest first. A non-positive limit returns the full history.
func (r *GormAuditRecordRepository) ListForEntity(ctx context.Context, workspaceID, entityID uuid.UUID, limit int) ([]audit.Record, error) {
	query := r.conn(ctx).WithContext(ctx).
		Where("workspace_id = ? AND entity_id = ?", workspaceID, entityID).
		Order("performed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var recordModels []models.AuditRecordModel
	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]audit.Record, 0, len(recordModels))
	for i := range recordModels {
		record, err := recordModels[i].ToDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// Ensure GormAuditRecordRepository implements RecordRepository
var _ audit.RecordRepository = (*GormAuditRecordRepository)(nil)

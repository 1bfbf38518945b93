package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finledger/backend/internal/domain/ledger"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
)

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// conn returns the transactional connection from the context when one is
// open, so repository calls inside TxManager.Do join the unit of work
func (r *GormTransactionRepository) conn(ctx context.Context) *gorm.DB {
	if tx := dbFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.conn(ctx).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds a transaction by ID within a workspace
func (r *GormTransactionRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.conn(ctx).WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all transactions matching the filter
func (r *GormTransactionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Transaction, error) {
	query := r.conn(ctx).WithContext(ctx).Model(&models.TransactionModel{})
	return r.findWithFilter(query, filter)
}

// FindAllForWorkspace finds all transactions of a workspace matching the filter
func (r *GormTransactionRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]ledger.Transaction, error) {
	query := r.conn(ctx).WithContext(ctx).Model(&models.TransactionModel{}).
		Where("workspace_id = ?", workspaceID)
	return r.findWithFilter(query, filter)
}

// FindByGroup returns all transactions of a group within a workspace
func (r *GormTransactionRepository) FindByGroup(ctx context.Context, workspaceID, groupID uuid.UUID) ([]ledger.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.conn(ctx).WithContext(ctx).
		Where("workspace_id = ? AND group_id = ?", workspaceID, groupID).
		Order("occurred_at DESC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindSplitParts returns the child transactions of a split parent
func (r *GormTransactionRepository) FindSplitParts(ctx context.Context, workspaceID, parentID uuid.UUID) ([]ledger.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.conn(ctx).WithContext(ctx).
		Where("workspace_id = ? AND split_parent_id = ?", workspaceID, parentID).
		Order("created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// CountForWorkspace returns how many transactions a workspace has
func (r *GormTransactionRepository) CountForWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(ctx).WithContext(ctx).Model(&models.TransactionModel{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCategory returns how many transactions reference a category
func (r *GormTransactionRepository) CountByCategory(ctx context.Context, workspaceID, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(ctx).WithContext(ctx).Model(&models.TransactionModel{}).
		Where("workspace_id = ? AND category_id = ?", workspaceID, categoryID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteSplitParts removes all child transactions of a split parent
func (r *GormTransactionRepository) DeleteSplitParts(ctx context.Context, workspaceID, parentID uuid.UUID) error {
	return r.conn(ctx).WithContext(ctx).
		Where("workspace_id = ? AND split_parent_id = ?", workspaceID, parentID).
		Delete(&models.TransactionModel{}).Error
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, txn *ledger.Transaction) error {
	return r.conn(ctx).WithContext(ctx).Save(models.TransactionModelFromDomain(txn)).Error
}

// Delete removes a transaction. Idempotent: deleting a missing row is not an
// error.
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id).Error
}

// Count counts transactions matching the filter
func (r *GormTransactionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.conn(ctx).WithContext(ctx).Model(&models.TransactionModel{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormTransactionRepository) findWithFilter(query *gorm.DB, filter shared.Filter) ([]ledger.Transaction, error) {
	sortField := ValidateSortField(filter.OrderBy, TransactionSortFields, "occurred_at")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := (filter.Page - 1) * filter.PageSize; offset > 0 {
			query = query.Offset(offset)
		}
	}

	var txModels []models.TransactionModel
	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

func toDomainTransactions(txModels []models.TransactionModel) []ledger.Transaction {
	transactions := make([]ledger.Transaction, len(txModels))
	for i, model := range txModels {
		transactions[i] = *model.ToDomain()
	}
	return transactions
}

// Ensure GormTransactionRepository implements TransactionRepository
var _ ledger.TransactionRepository = (*GormTransactionRepository)(nil)

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

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) conn(ctx context.Context) *gorm.DB {
	if tx := dbFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.conn(ctx).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds an account by ID within a workspace
func (r *GormAccountRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*ledger.Account, error) {
	var model models.AccountModel
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

// FindByName returns the account with the given name within a workspace
func (r *GormAccountRepository) FindByName(ctx context.Context, workspaceID uuid.UUID, name string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.conn(ctx).WithContext(ctx).
		Where("workspace_id = ? AND name = ?", workspaceID, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all accounts matching the filter
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Account, error) {
	return r.findWithFilter(r.conn(ctx).WithContext(ctx).Model(&models.AccountModel{}), filter)
}

// FindAllForWorkspace finds all accounts of a workspace matching the filter
func (r *GormAccountRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]ledger.Account, error) {
	query := r.conn(ctx).WithContext(ctx).Model(&models.AccountModel{}).
		Where("workspace_id = ?", workspaceID)
	return r.findWithFilter(query, filter)
}

// Save creates or updates an account
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	return r.conn(ctx).WithContext(ctx).Save(models.AccountModelFromDomain(account)).Error
}

// Delete removes an account
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).WithContext(ctx).Delete(&models.AccountModel{}, "id = ?", id).Error
}

// Count counts accounts matching the filter
func (r *GormAccountRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.conn(ctx).WithContext(ctx).Model(&models.AccountModel{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAccountRepository) findWithFilter(query *gorm.DB, filter shared.Filter) ([]ledger.Account, error) {
	sortField := ValidateSortField(filter.OrderBy, AccountSortFields, "name")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := (filter.Page - 1) * filter.PageSize; offset > 0 {
			query = query.Offset(offset)
		}
	}

	var accountModels []models.AccountModel
	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.Account, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)

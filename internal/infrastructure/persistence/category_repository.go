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

// GormCategoryRepository implements ledger.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) conn(ctx context.Context) *gorm.DB {
	if tx := dbFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Category, error) {
	var model models.CategoryModel
	if err := r.conn(ctx).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForWorkspace finds a category by ID within a workspace
func (r *GormCategoryRepository) FindByIDForWorkspace(ctx context.Context, workspaceID, id uuid.UUID) (*ledger.Category, error) {
	var model models.CategoryModel
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

// FindAll finds all categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Category, error) {
	return r.findWithFilter(r.conn(ctx).WithContext(ctx).Model(&models.CategoryModel{}), filter)
}

// FindAllForWorkspace finds all categories of a workspace matching the filter
func (r *GormCategoryRepository) FindAllForWorkspace(ctx context.Context, workspaceID uuid.UUID, filter shared.Filter) ([]ledger.Category, error) {
	query := r.conn(ctx).WithContext(ctx).Model(&models.CategoryModel{}).
		Where("workspace_id = ?", workspaceID)
	return r.findWithFilter(query, filter)
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *ledger.Category) error {
	return r.conn(ctx).WithContext(ctx).Save(models.CategoryModelFromDomain(category)).Error
}

// Delete removes a category by ID
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).WithContext(ctx).Delete(&models.CategoryModel{}, "id = ?", id).Error
}

// DeleteForWorkspace removes a category within a workspace. Idempotent: a
// zero-row delete is success, not an error.
func (r *GormCategoryRepository) DeleteForWorkspace(ctx context.Context, workspaceID, categoryID uuid.UUID) error {
	return r.conn(ctx).WithContext(ctx).
		Where("workspace_id = ? AND id = ?", workspaceID, categoryID).
		Delete(&models.CategoryModel{}).Error
}

// Count counts categories matching the filter
func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.conn(ctx).WithContext(ctx).Model(&models.CategoryModel{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormCategoryRepository) findWithFilter(query *gorm.DB, filter shared.Filter) ([]ledger.Category, error) {
	sortField := ValidateSortField(filter.OrderBy, CategorySortFields, "name")
	query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if offset := (filter.Page - 1) * filter.PageSize; offset > 0 {
			query = query.Offset(offset)
		}
	}

	var categoryModels []models.CategoryModel
	if err := query.Find(&categoryModels).Error; err != nil {
		return nil, err
	}
	categories := make([]ledger.Category, len(categoryModels))
	for i, model := range categoryModels {
		categories[i] = *model.ToDomain()
	}
	return categories, nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ ledger.CategoryRepository = (*GormCategoryRepository)(nil)

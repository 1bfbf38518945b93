package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
)

// GormWorkspaceRepository implements workspace.Repository using GORM
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewGormWorkspaceRepository creates a new GormWorkspaceRepository
func NewGormWorkspaceRepository(db *gorm.DB) *GormWorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

func (r *GormWorkspaceRepository) conn(ctx context.Context) *gorm.DB {
	if tx := dbFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// FindByID returns the workspace with the given ID
func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*workspace.Workspace, error) {
	var model models.WorkspaceModel
	if err := r.conn(ctx).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates a workspace
func (r *GormWorkspaceRepository) Save(ctx context.Context, ws *workspace.Workspace) error {
	return r.conn(ctx).WithContext(ctx).Save(models.WorkspaceModelFromDomain(ws)).Error
}

// Delete removes a workspace. A delete that matches no rows is a no-op, which
// is what makes concurrent reaper dispatches safe.
func (r *GormWorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).WithContext(ctx).Delete(&models.WorkspaceModel{}, "id = ?", id).Error
}

// Ensure GormWorkspaceRepository implements workspace.Repository
var _ workspace.Repository = (*GormWorkspaceRepository)(nil)

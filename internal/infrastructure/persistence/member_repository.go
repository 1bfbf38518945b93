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

// GormMemberRepository implements workspace.MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

func (r *GormMemberRepository) conn(ctx context.Context) *gorm.DB {
	if tx := dbFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// FindByID returns the membership with the given ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*workspace.Member, error) {
	var model models.MemberModel
	if err := r.conn(ctx).WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByWorkspace returns all memberships of a workspace
func (r *GormMemberRepository) FindByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]workspace.Member, error) {
	var memberModels []models.MemberModel
	if err := r.conn(ctx).WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at ASC").
		Find(&memberModels).Error; err != nil {
		return nil, err
	}
	members := make([]workspace.Member, len(memberModels))
	for i, model := range memberModels {
		members[i] = *model.ToDomain()
	}
	return members, nil
}

// FindByWorkspaceAndUser returns a user's membership in a workspace
func (r *GormMemberRepository) FindByWorkspaceAndUser(ctx context.Context, workspaceID, userID uuid.UUID) (*workspace.Member, error) {
	var model models.MemberModel
	if err := r.conn(ctx).WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByWorkspace returns the current number of memberships. The cascade
// reaper calls this instead of trusting any count carried by an event.
func (r *GormMemberRepository) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	var count int64
	if err := r.conn(ctx).WithContext(ctx).Model(&models.MemberModel{}).
		Where("workspace_id = ?", workspaceID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts or updates a membership
func (r *GormMemberRepository) Save(ctx context.Context, member *workspace.Member) error {
	return r.conn(ctx).WithContext(ctx).Save(models.MemberModelFromDomain(member)).Error
}

// Delete removes a membership
func (r *GormMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn(ctx).WithContext(ctx).Delete(&models.MemberModel{}, "id = ?", id).Error
}

// Ensure GormMemberRepository implements MemberRepository
var _ workspace.MemberRepository = (*GormMemberRepository)(nil)

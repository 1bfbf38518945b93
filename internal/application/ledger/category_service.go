package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/ledger"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
)

// CategoryService manages spending categories. Categories are plain
// reference data and do not feed the audit trail.
type CategoryService struct {
	categories   ledger.CategoryRepository
	transactions ledger.TransactionRepository
	access       access
	tx           TransactionManager
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categories ledger.CategoryRepository,
	transactions ledger.TransactionRepository,
	members workspace.MemberRepository,
	tx TransactionManager,
) *CategoryService {
	return &CategoryService{
		categories:   categories,
		transactions: transactions,
		access:       access{members: members},
		tx:           tx,
	}
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryRequest represents a request to create or rename a category
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, workspaceID, actorID uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	if err := s.access.requireEditor(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}
	category, err := ledger.NewCategory(workspaceID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// List returns all of the workspace's categories
func (s *CategoryService) List(ctx context.Context, workspaceID, actorID uuid.UUID) ([]CategoryResponse, error) {
	if err := s.access.requireMember(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.PageSize = 0

	categories, err := s.categories.FindAllForWorkspace(ctx, workspaceID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = *toCategoryResponse(&categories[i])
	}
	return responses, nil
}

// Rename changes a category name
func (s *CategoryService) Rename(ctx context.Context, workspaceID, actorID, id uuid.UUID, req CategoryRequest) (*CategoryResponse, error) {
	if err := s.access.requireEditor(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	var category *ledger.Category
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		found, err := s.categories.FindByIDForWorkspace(ctx, workspaceID, id)
		if err != nil {
			return err
		}
		if err := found.Rename(req.Name); err != nil {
			return err
		}
		category = found
		return s.categories.Save(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// Delete removes a category. A category still referenced by transactions
// cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, workspaceID, actorID, id uuid.UUID) error {
	if err := s.access.requireEditor(ctx, workspaceID, actorID); err != nil {
		return err
	}

	return s.tx.Do(ctx, func(ctx context.Context) error {
		if _, err := s.categories.FindByIDForWorkspace(ctx, workspaceID, id); err != nil {
			return err
		}
		count, err := s.transactions.CountByCategory(ctx, workspaceID, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.NewDomainError("CATEGORY_IN_USE", "Category is referenced by transactions")
		}
		return s.categories.DeleteForWorkspace(ctx, workspaceID, id)
	})
}

func toCategoryResponse(c *ledger.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.GetID(),
		WorkspaceID: c.WorkspaceID,
		Name:        c.Name,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

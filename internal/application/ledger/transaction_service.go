package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/audit"
	"github.com/finledger/backend/internal/domain/ledger"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
	"github.com/finledger/backend/internal/infrastructure/logger"
)

// TransactionService manages ledger transactions. Every mutation runs in one
// unit of work that also publishes a change descriptor; the descriptor
// reaches the audit recorder only after the mutation commits.
type TransactionService struct {
	transactions ledger.TransactionRepository
	accounts     ledger.AccountRepository
	categories   ledger.CategoryRepository
	access       access
	tx           TransactionManager
	publisher    shared.EventPublisher
	logger       *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactions ledger.TransactionRepository,
	accounts ledger.AccountRepository,
	categories ledger.CategoryRepository,
	members workspace.MemberRepository,
	tx TransactionManager,
	publisher shared.EventPublisher,
	log *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		accounts:     accounts,
		categories:   categories,
		access:       access{members: members},
		tx:           tx,
		publisher:    publisher,
		logger:       log,
	}
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID            uuid.UUID       `json:"id"`
	WorkspaceID   uuid.UUID       `json:"workspace_id"`
	AccountID     uuid.UUID       `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Payee         string          `json:"payee"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Status        string          `json:"status"`
	GroupID       *uuid.UUID      `json:"group_id,omitempty"`
	SplitParentID *uuid.UUID      `json:"split_parent_id,omitempty"`
	IsSplit       bool            `json:"is_split"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateTransactionRequest represents a request to record a transaction
type CreateTransactionRequest struct {
	AccountID  uuid.UUID       `json:"account_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Payee      string          `json:"payee" binding:"required"`
	CategoryID *uuid.UUID      `json:"category_id"`
	Notes      string          `json:"notes"`
	OccurredAt time.Time       `json:"occurred_at" binding:"required"`
}

// UpdateTransactionRequest represents a request to edit a transaction
type UpdateTransactionRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Payee      string          `json:"payee" binding:"required"`
	CategoryID *uuid.UUID      `json:"category_id"`
	Notes      string          `json:"notes"`
	OccurredAt time.Time       `json:"occurred_at" binding:"required"`
}

// SplitPartRequest describes one child of a split transaction
type SplitPartRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	CategoryID *uuid.UUID      `json:"category_id"`
	Notes      string          `json:"notes"`
}

// TransactionListFilter defines filtering options for transaction lists
type TransactionListFilter struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// Create records a new transaction
func (s *TransactionService) Create(ctx context.Context, workspaceID, actorID uuid.UUID, req CreateTransactionRequest) (*TransactionResponse, error) {
	if err := s.access.requireEditor(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	txn, err := ledger.NewTransaction(workspaceID, req.AccountID, req.Amount, req.Payee, req.OccurredAt)
	if err != nil {
		return nil, err
	}
	txn.CategoryID = req.CategoryID
	txn.Notes = req.Notes

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		account, err := s.accounts.FindByIDForWorkspace(ctx, workspaceID, req.AccountID)
		if err != nil {
			return err
		}
		if account.Archived {
			return shared.NewDomainError("INVALID_STATE", "Cannot record transactions on an archived account")
		}
		if req.CategoryID != nil {
			if _, err := s.categories.FindByIDForWorkspace(ctx, workspaceID, *req.CategoryID); err != nil {
				return err
			}
		}
		if err := s.transactions.Save(ctx, txn); err != nil {
			return err
		}
		return s.publishChange(ctx, txn, audit.ActionCreated, nil, actorID)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("transaction recorded",
		zap.String("transaction_id", txn.GetID().String()),
		zap.String("workspace_id", workspaceID.String()),
	)
	return toTransactionResponse(txn), nil
}

// Get returns a single transaction
func (s *TransactionService) Get(ctx context.Context, workspaceID, actorID, id uuid.UUID) (*TransactionResponse, error) {
	if err := s.access.requireMember(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}
	txn, err := s.transactions.FindByIDForWorkspace(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(txn), nil
}

// List returns a page of the workspace's transactions
func (s *TransactionService) List(ctx context.Context, workspaceID, actorID uuid.UUID, filter TransactionListFilter) (*shared.Paginated[TransactionResponse], error) {
	if err := s.access.requireMember(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	repoFilter := shared.DefaultFilter()
	repoFilter.OrderBy = "occurred_at"
	if filter.Page > 0 {
		repoFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		repoFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		repoFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		repoFilter.OrderDir = filter.OrderDir
	}

	transactions, err := s.transactions.FindAllForWorkspace(ctx, workspaceID, repoFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.transactions.CountForWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	responses := make([]TransactionResponse, len(transactions))
	for i := range transactions {
		responses[i] = *toTransactionResponse(&transactions[i])
	}
	page := shared.NewPaginated(responses, total, repoFilter.Page, repoFilter.PageSize)
	return &page, nil
}

// Update edits a transaction's details and records the field-level diff
func (s *TransactionService) Update(ctx context.Context, workspaceID, actorID, id uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	return s.mutate(ctx, workspaceID, actorID, id, audit.ActionUpdated, func(ctx context.Context, txn *ledger.Transaction) error {
		if req.CategoryID != nil {
			if _, err := s.categories.FindByIDForWorkspace(ctx, workspaceID, *req.CategoryID); err != nil {
				return err
			}
		}
		return txn.Update(req.Amount, req.Payee, req.CategoryID, req.Notes, req.OccurredAt)
	})
}

// MarkCleared marks a transaction as cleared
func (s *TransactionService) MarkCleared(ctx context.Context, workspaceID, actorID, id uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, workspaceID, actorID, id, audit.ActionUpdated, func(_ context.Context, txn *ledger.Transaction) error {
		return txn.MarkCleared()
	})
}

// Void excludes a transaction from balances
func (s *TransactionService) Void(ctx context.Context, workspaceID, actorID, id uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, workspaceID, actorID, id, audit.ActionUpdated, func(_ context.Context, txn *ledger.Transaction) error {
		return txn.Void()
	})
}

// AssignGroup places a transaction into a group
func (s *TransactionService) AssignGroup(ctx context.Context, workspaceID, actorID, id, groupID uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, workspaceID, actorID, id, audit.ActionGrouped, func(_ context.Context, txn *ledger.Transaction) error {
		return txn.AssignGroup(groupID)
	})
}

// RemoveFromGroup takes a transaction out of its group
func (s *TransactionService) RemoveFromGroup(ctx context.Context, workspaceID, actorID, id uuid.UUID) (*TransactionResponse, error) {
	return s.mutate(ctx, workspaceID, actorID, id, audit.ActionUngrouped, func(_ context.Context, txn *ledger.Transaction) error {
		return txn.RemoveFromGroup()
	})
}

// Split replaces a transaction's single amount with child transactions. The
// part amounts must sum to the parent amount.
func (s *TransactionService) Split(ctx context.Context, workspaceID, actorID, id uuid.UUID, parts []SplitPartRequest) (*TransactionResponse, error) {
	if err := s.access.requireEditor(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}
	if len(parts) < 2 {
		return nil, shared.NewDomainError("INVALID_SPLIT", "A split needs at least two parts")
	}

	var parent *ledger.Transaction
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		txn, err := s.transactions.FindByIDForWorkspace(ctx, workspaceID, id)
		if err != nil {
			return err
		}

		sum := decimal.Zero
		for _, part := range parts {
			sum = sum.Add(part.Amount)
		}
		if !sum.Equal(txn.Amount) {
			return shared.NewDomainError("INVALID_SPLIT", "Split part amounts must sum to the parent amount")
		}

		before := txn.Snapshot()
		if err := txn.MarkSplit(); err != nil {
			return err
		}
		if err := s.transactions.Save(ctx, txn); err != nil {
			return err
		}
		for _, part := range parts {
			child, err := txn.NewSplitPart(part.Amount, part.CategoryID, part.Notes)
			if err != nil {
				return err
			}
			if err := s.transactions.Save(ctx, child); err != nil {
				return err
			}
		}

		parent = txn
		changes := ledger.TransactionAuditSchema.Diff(before, txn)
		return s.publishChange(ctx, txn, audit.ActionSplit, changes, actorID)
	})
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(parent), nil
}

// Unsplit removes a transaction's split parts and restores it to a plain
// transaction
func (s *TransactionService) Unsplit(ctx context.Context, workspaceID, actorID, id uuid.UUID) (*TransactionResponse, error) {
	if err := s.access.requireEditor(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	var parent *ledger.Transaction
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		txn, err := s.transactions.FindByIDForWorkspace(ctx, workspaceID, id)
		if err != nil {
			return err
		}
		before := txn.Snapshot()
		if err := txn.Unsplit(); err != nil {
			return err
		}
		if err := s.transactions.DeleteSplitParts(ctx, workspaceID, txn.GetID()); err != nil {
			return err
		}
		if err := s.transactions.Save(ctx, txn); err != nil {
			return err
		}

		parent = txn
		changes := ledger.TransactionAuditSchema.Diff(before, txn)
		return s.publishChange(ctx, txn, audit.ActionUnsplit, changes, actorID)
	})
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(parent), nil
}

// ListSplitParts returns the children of a split transaction
func (s *TransactionService) ListSplitParts(ctx context.Context, workspaceID, actorID, id uuid.UUID) ([]TransactionResponse, error) {
	if err := s.access.requireMember(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}
	parts, err := s.transactions.FindSplitParts(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	responses := make([]TransactionResponse, len(parts))
	for i := range parts {
		responses[i] = *toTransactionResponse(&parts[i])
	}
	return responses, nil
}

// mutate runs one snapshot-mutate-diff-publish cycle on a transaction
func (s *TransactionService) mutate(
	ctx context.Context,
	workspaceID, actorID, id uuid.UUID,
	action audit.Action,
	fn func(ctx context.Context, txn *ledger.Transaction) error,
) (*TransactionResponse, error) {
	if err := s.access.requireEditor(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	var result *ledger.Transaction
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		txn, err := s.transactions.FindByIDForWorkspace(ctx, workspaceID, id)
		if err != nil {
			return err
		}
		before := txn.Snapshot()
		if err := fn(ctx, txn); err != nil {
			return err
		}
		if err := s.transactions.Save(ctx, txn); err != nil {
			return err
		}
		result = txn

		changes := ledger.TransactionAuditSchema.Diff(before, txn)
		if len(changes) == 0 {
			return nil
		}
		return s.publishChange(ctx, txn, action, changes, actorID)
	})
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(result), nil
}

func (s *TransactionService) publishChange(ctx context.Context, txn *ledger.Transaction, action audit.Action, changes []audit.FieldChange, actorID uuid.UUID) error {
	performedBy := actorID
	descriptor := audit.NewChangeDescriptor(audit.DescriptorParams{
		Domain:        ledger.AuditDomainTransaction,
		Action:        action,
		EntityID:      txn.GetID(),
		WorkspaceID:   txn.WorkspaceID,
		Changes:       changes,
		PerformedBy:   &performedBy,
		CorrelationID: logger.GetRequestID(ctx),
	})
	return s.publisher.Publish(ctx, descriptor)
}

func toTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:            t.GetID(),
		WorkspaceID:   t.WorkspaceID,
		AccountID:     t.AccountID,
		Amount:        t.Amount,
		Payee:         t.Payee,
		CategoryID:    t.CategoryID,
		Notes:         t.Notes,
		OccurredAt:    t.OccurredAt,
		Status:        t.Status.String(),
		GroupID:       t.GroupID,
		SplitParentID: t.SplitParentID,
		IsSplit:       t.IsSplit,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finledger/backend/internal/domain/audit"
	"github.com/finledger/backend/internal/domain/ledger"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
	"github.com/finledger/backend/internal/infrastructure/logger"
)

// AccountService manages ledger accounts. Account mutations are audited the
// same way as transactions: snapshot, mutate, diff, publish.
type AccountService struct {
	accounts  ledger.AccountRepository
	access    access
	tx        TransactionManager
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(
	accounts ledger.AccountRepository,
	members workspace.MemberRepository,
	tx TransactionManager,
	publisher shared.EventPublisher,
	log *zap.Logger,
) *AccountService {
	return &AccountService{
		accounts:  accounts,
		access:    access{members: members},
		tx:        tx,
		publisher: publisher,
		logger:    log,
	}
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Currency    string    `json:"currency"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateAccountRequest represents a request to create an account
type CreateAccountRequest struct {
	Name     string `json:"name" binding:"required"`
	Kind     string `json:"kind" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

// UpdateAccountRequest represents a request to edit an account
type UpdateAccountRequest struct {
	Name string `json:"name" binding:"required"`
	Kind string `json:"kind" binding:"required"`
}

// Create creates a new account in the workspace
func (s *AccountService) Create(ctx context.Context, workspaceID, actorID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	if err := s.access.requireEditor(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	account, err := ledger.NewAccount(workspaceID, req.Name, ledger.AccountKind(req.Kind), req.Currency)
	if err != nil {
		return nil, err
	}

	err = s.tx.Do(ctx, func(ctx context.Context) error {
		if existing, err := s.accounts.FindByName(ctx, workspaceID, req.Name); err == nil && existing != nil {
			return shared.NewDomainError("DUPLICATE_NAME", "An account with this name already exists")
		} else if err != nil && err != shared.ErrNotFound {
			return err
		}
		if err := s.accounts.Save(ctx, account); err != nil {
			return err
		}
		return s.publishChange(ctx, account, audit.ActionCreated, nil, actorID)
	})
	if err != nil {
		return nil, err
	}

	logger.L(ctx).Info("account created",
		zap.String("account_id", account.GetID().String()),
		zap.String("workspace_id", workspaceID.String()),
	)
	return toAccountResponse(account), nil
}

// Get returns a single account
func (s *AccountService) Get(ctx context.Context, workspaceID, actorID, id uuid.UUID) (*AccountResponse, error) {
	if err := s.access.requireMember(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByIDForWorkspace(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// List returns all of the workspace's accounts
func (s *AccountService) List(ctx context.Context, workspaceID, actorID uuid.UUID) ([]AccountResponse, error) {
	if err := s.access.requireMember(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	filter := shared.DefaultFilter()
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.PageSize = 0 // accounts are few, return them all

	accounts, err := s.accounts.FindAllForWorkspace(ctx, workspaceID, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = *toAccountResponse(&accounts[i])
	}
	return responses, nil
}

// Update edits an account's details
func (s *AccountService) Update(ctx context.Context, workspaceID, actorID, id uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	return s.mutate(ctx, workspaceID, actorID, id, func(account *ledger.Account) error {
		return account.Update(req.Name, ledger.AccountKind(req.Kind))
	})
}

// Archive hides an account from day-to-day use
func (s *AccountService) Archive(ctx context.Context, workspaceID, actorID, id uuid.UUID) (*AccountResponse, error) {
	return s.mutate(ctx, workspaceID, actorID, id, func(account *ledger.Account) error {
		return account.Archive()
	})
}

// Unarchive restores an archived account
func (s *AccountService) Unarchive(ctx context.Context, workspaceID, actorID, id uuid.UUID) (*AccountResponse, error) {
	return s.mutate(ctx, workspaceID, actorID, id, func(account *ledger.Account) error {
		return account.Unarchive()
	})
}

func (s *AccountService) mutate(
	ctx context.Context,
	workspaceID, actorID, id uuid.UUID,
	fn func(account *ledger.Account) error,
) (*AccountResponse, error) {
	if err := s.access.requireEditor(ctx, workspaceID, actorID); err != nil {
		return nil, err
	}

	var result *ledger.Account
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		account, err := s.accounts.FindByIDForWorkspace(ctx, workspaceID, id)
		if err != nil {
			return err
		}
		before := account.Snapshot()
		if err := fn(account); err != nil {
			return err
		}
		if err := s.accounts.Save(ctx, account); err != nil {
			return err
		}
		result = account

		changes := ledger.AccountAuditSchema.Diff(before, account)
		if len(changes) == 0 {
			return nil
		}
		return s.publishChange(ctx, account, audit.ActionUpdated, changes, actorID)
	})
	if err != nil {
		return nil, err
	}
	return toAccountResponse(result), nil
}

func (s *AccountService) publishChange(ctx context.Context, account *ledger.Account, action audit.Action, changes []audit.FieldChange, actorID uuid.UUID) error {
	performedBy := actorID
	descriptor := audit.NewChangeDescriptor(audit.DescriptorParams{
		Domain:        ledger.AuditDomainAccount,
		Action:        action,
		EntityID:      account.GetID(),
		WorkspaceID:   account.WorkspaceID,
		Changes:       changes,
		PerformedBy:   &performedBy,
		CorrelationID: logger.GetRequestID(ctx),
	})
	return s.publisher.Publish(ctx, descriptor)
}

func toAccountResponse(a *ledger.Account) *AccountResponse {
	return &AccountResponse{
		ID:          a.GetID(),
		WorkspaceID: a.WorkspaceID,
		Name:        a.Name,
		Kind:        a.Kind.String(),
		Currency:    a.Currency,
		Archived:    a.Archived,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

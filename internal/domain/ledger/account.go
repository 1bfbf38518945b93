package ledger

import (
	"github.com/google/uuid"

	"github.com/finledger/backend/internal/domain/shared"
)

// AccountKind represents the kind of a ledger account
type AccountKind string

const (
	AccountKindChecking   AccountKind = "CHECKING"
	AccountKindSavings    AccountKind = "SAVINGS"
	AccountKindCreditCard AccountKind = "CREDIT_CARD"
	AccountKindCash       AccountKind = "CASH"
	AccountKindInvestment AccountKind = "INVESTMENT"
	AccountKindOther      AccountKind = "OTHER"
)

// IsValid checks if the kind is a valid AccountKind
func (k AccountKind) IsValid() bool {
	switch k {
	case AccountKindChecking, AccountKindSavings, AccountKindCreditCard,
		AccountKindCash, AccountKindInvestment, AccountKindOther:
		return true
	}
	return false
}

// String returns the string representation of AccountKind
func (k AccountKind) String() string {
	return string(k)
}

// Account represents a money account within a workspace
type Account struct {
	shared.WorkspaceAggregateRoot
	Name     string      `json:"name"`
	Kind     AccountKind `json:"kind"`
	Currency string      `json:"currency"`
	Archived bool        `json:"archived"`
}

// NewAccount creates a new account
func NewAccount(workspaceID uuid.UUID, name string, kind AccountKind, currency string) (*Account, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Account name cannot exceed 100 characters")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Account kind is not valid")
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}

	return &Account{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		Name:                   name,
		Kind:                   kind,
		Currency:               currency,
	}, nil
}

// Update changes the editable details of the account
func (a *Account) Update(name string, kind AccountKind) error {
	if a.Archived {
		return shared.NewDomainError("INVALID_STATE", "Cannot update an archived account")
	}
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Account name cannot exceed 100 characters")
	}
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_KIND", "Account kind is not valid")
	}

	a.Name = name
	a.Kind = kind
	a.Touch()

	return nil
}

// Archive hides the account from day-to-day use
func (a *Account) Archive() error {
	if a.Archived {
		return shared.NewDomainError("INVALID_STATE", "Account is already archived")
	}

	a.Archived = true
	a.Touch()

	return nil
}

// Unarchive restores an archived account
func (a *Account) Unarchive() error {
	if !a.Archived {
		return shared.NewDomainError("INVALID_STATE", "Account is not archived")
	}

	a.Archived = false
	a.Touch()

	return nil
}

// Snapshot returns a shallow copy for before/after comparison
func (a *Account) Snapshot() *Account {
	c := *a
	return &c
}

package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain/shared"
)

// TransactionStatus represents the clearing status of a transaction
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "PENDING"  // Recorded, not yet confirmed against a statement
	TransactionStatusCleared  TransactionStatus = "CLEARED"  // Confirmed against a statement
	TransactionStatusVoided   TransactionStatus = "VOIDED"   // Excluded from balances
	TransactionStatusImported TransactionStatus = "IMPORTED" // Created by a statement import, awaiting review
)

// IsValid checks if the status is a valid TransactionStatus
func (s TransactionStatus) IsValid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusCleared, TransactionStatusVoided, TransactionStatusImported:
		return true
	}
	return false
}

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// Transaction represents a single ledger entry aggregate root.
// Transactions can be grouped (e.g. a trip) and split into child
// transactions; both relations are tracked by nullable references.
type Transaction struct {
	shared.WorkspaceAggregateRoot
	AccountID     uuid.UUID         `json:"account_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Payee         string            `json:"payee"`
	CategoryID    *uuid.UUID        `json:"category_id"`
	Notes         string            `json:"notes"`
	OccurredAt    time.Time         `json:"occurred_at"`
	Status        TransactionStatus `json:"status"`
	GroupID       *uuid.UUID        `json:"group_id"`
	SplitParentID *uuid.UUID        `json:"split_parent_id"`
	IsSplit       bool              `json:"is_split"`
}

// NewTransaction creates a new pending transaction
func NewTransaction(
	workspaceID uuid.UUID,
	accountID uuid.UUID,
	amount decimal.Decimal,
	payee string,
	occurredAt time.Time,
) (*Transaction, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be zero")
	}
	if payee == "" {
		return nil, shared.NewDomainError("INVALID_PAYEE", "Payee cannot be empty")
	}
	if len(payee) > 200 {
		return nil, shared.NewDomainError("INVALID_PAYEE", "Payee cannot exceed 200 characters")
	}
	if occurredAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Occurrence time is required")
	}

	return &Transaction{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(workspaceID),
		AccountID:              accountID,
		Amount:                 amount,
		Payee:                  payee,
		OccurredAt:             occurredAt,
		Status:                 TransactionStatusPending,
	}, nil
}

// Update changes the editable details of the transaction
func (t *Transaction) Update(
	amount decimal.Decimal,
	payee string,
	categoryID *uuid.UUID,
	notes string,
	occurredAt time.Time,
) error {
	if t.Status == TransactionStatusVoided {
		return shared.NewDomainError("INVALID_STATE", "Cannot update a voided transaction")
	}
	if amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be zero")
	}
	if payee == "" {
		return shared.NewDomainError("INVALID_PAYEE", "Payee cannot be empty")
	}
	if len(payee) > 200 {
		return shared.NewDomainError("INVALID_PAYEE", "Payee cannot exceed 200 characters")
	}
	if len(notes) > 1000 {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 1000 characters")
	}
	if occurredAt.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Occurrence time is required")
	}

	t.Amount = amount
	t.Payee = payee
	t.CategoryID = categoryID
	t.Notes = notes
	t.OccurredAt = occurredAt
	t.Touch()

	return nil
}

// MarkCleared marks the transaction as cleared
func (t *Transaction) MarkCleared() error {
	if t.Status == TransactionStatusVoided {
		return shared.NewDomainError("INVALID_STATE", "Cannot clear a voided transaction")
	}
	if t.Status == TransactionStatusCleared {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already cleared")
	}

	t.Status = TransactionStatusCleared
	t.Touch()

	return nil
}

// Void excludes the transaction from balances
func (t *Transaction) Void() error {
	if t.Status == TransactionStatusVoided {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already voided")
	}
	if t.IsSplit {
		return shared.NewDomainError("INVALID_STATE", "Cannot void a split transaction; void its parts instead")
	}

	t.Status = TransactionStatusVoided
	t.Touch()

	return nil
}

// AssignGroup places the transaction into a group
func (t *Transaction) AssignGroup(groupID uuid.UUID) error {
	if groupID == uuid.Nil {
		return shared.NewDomainError("INVALID_GROUP", "Group ID cannot be empty")
	}
	if t.GroupID != nil && *t.GroupID == groupID {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already in this group")
	}

	t.GroupID = &groupID
	t.Touch()

	return nil
}

// RemoveFromGroup takes the transaction out of its group
func (t *Transaction) RemoveFromGroup() error {
	if t.GroupID == nil {
		return shared.NewDomainError("INVALID_STATE", "Transaction is not in a group")
	}

	t.GroupID = nil
	t.Touch()

	return nil
}

// MarkSplit marks the transaction as the parent of split parts. A split
// parent keeps its original amount but is excluded from balance sums in
// favour of its parts.
func (t *Transaction) MarkSplit() error {
	if t.IsSplit {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already split")
	}
	if t.SplitParentID != nil {
		return shared.NewDomainError("INVALID_STATE", "A split part cannot be split again")
	}
	if t.Status == TransactionStatusVoided {
		return shared.NewDomainError("INVALID_STATE", "Cannot split a voided transaction")
	}

	t.IsSplit = true
	t.Touch()

	return nil
}

// Unsplit reverts a split parent back to a plain transaction. Callers must
// remove the split parts in the same unit of work.
func (t *Transaction) Unsplit() error {
	if !t.IsSplit {
		return shared.NewDomainError("INVALID_STATE", "Transaction is not split")
	}

	t.IsSplit = false
	t.Touch()

	return nil
}

// NewSplitPart creates one child transaction of a split parent
func (t *Transaction) NewSplitPart(amount decimal.Decimal, categoryID *uuid.UUID, notes string) (*Transaction, error) {
	if !t.IsSplit {
		return nil, shared.NewDomainError("INVALID_STATE", "Parent transaction is not marked as split")
	}
	if amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Split part amount cannot be zero")
	}
	if amount.Sign() != t.Amount.Sign() {
		return nil, shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Split part sign must match the parent amount %s", t.Amount))
	}

	parentID := t.GetID()
	part := &Transaction{
		WorkspaceAggregateRoot: shared.NewWorkspaceAggregateRoot(t.WorkspaceID),
		AccountID:              t.AccountID,
		Amount:                 amount,
		Payee:                  t.Payee,
		CategoryID:             categoryID,
		Notes:                  notes,
		OccurredAt:             t.OccurredAt,
		Status:                 t.Status,
		GroupID:                t.GroupID,
		SplitParentID:          &parentID,
	}
	return part, nil
}

// Snapshot returns a shallow copy for before/after comparison
func (t *Transaction) Snapshot() *Transaction {
	c := *t
	return &c
}

// IsGrouped returns true if the transaction belongs to a group
func (t *Transaction) IsGrouped() bool {
	return t.GroupID != nil
}

// IsSplitPart returns true if the transaction is a child of a split
func (t *Transaction) IsSplitPart() bool {
	return t.SplitParentID != nil
}

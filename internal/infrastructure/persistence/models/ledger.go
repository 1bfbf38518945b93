package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finledger/backend/internal/domain/ledger"
)

// TransactionModel is the persistence model for ledger transactions
type TransactionModel struct {
	WorkspaceAggregateModel
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Payee         string          `gorm:"size:200;not null"`
	CategoryID    *uuid.UUID      `gorm:"type:uuid;index"`
	Notes         string          `gorm:"size:1000"`
	OccurredAt    time.Time       `gorm:"not null;index"`
	Status        string          `gorm:"size:20;not null"`
	GroupID       *uuid.UUID      `gorm:"type:uuid;index"`
	SplitParentID *uuid.UUID      `gorm:"type:uuid;index"`
	IsSplit       bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for TransactionModel
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the model to a domain transaction
func (m *TransactionModel) ToDomain() *ledger.Transaction {
	return &ledger.Transaction{
		WorkspaceAggregateRoot: m.ToDomainWorkspaceAggregateRoot(),
		AccountID:              m.AccountID,
		Amount:                 m.Amount,
		Payee:                  m.Payee,
		CategoryID:             m.CategoryID,
		Notes:                  m.Notes,
		OccurredAt:             m.OccurredAt,
		Status:                 ledger.TransactionStatus(m.Status),
		GroupID:                m.GroupID,
		SplitParentID:          m.SplitParentID,
		IsSplit:                m.IsSplit,
	}
}

// TransactionModelFromDomain builds the model from a domain transaction
func TransactionModelFromDomain(t *ledger.Transaction) *TransactionModel {
	m := &TransactionModel{
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
	}
	m.FromDomainWorkspaceAggregateRoot(t.WorkspaceAggregateRoot)
	return m
}

// AccountModel is the persistence model for accounts
type AccountModel struct {
	WorkspaceAggregateModel
	Name     string `gorm:"size:100;not null"`
	Kind     string `gorm:"size:20;not null"`
	Currency string `gorm:"size:3;not null"`
	Archived bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for AccountModel
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the model to a domain account
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		WorkspaceAggregateRoot: m.ToDomainWorkspaceAggregateRoot(),
		Name:                   m.Name,
		Kind:                   ledger.AccountKind(m.Kind),
		Currency:               m.Currency,
		Archived:               m.Archived,
	}
}

// AccountModelFromDomain builds the model from a domain account
func AccountModelFromDomain(a *ledger.Account) *AccountModel {
	m := &AccountModel{
		Name:     a.Name,
		Kind:     a.Kind.String(),
		Currency: a.Currency,
		Archived: a.Archived,
	}
	m.FromDomainWorkspaceAggregateRoot(a.WorkspaceAggregateRoot)
	return m
}

// CategoryModel is the persistence model for categories
type CategoryModel struct {
	WorkspaceAggregateModel
	Name string `gorm:"size:100;not null"`
}

// TableName returns the table name for CategoryModel
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the model to a domain category
func (m *CategoryModel) ToDomain() *ledger.Category {
	return &ledger.Category{
		WorkspaceAggregateRoot: m.ToDomainWorkspaceAggregateRoot(),
		Name:                   m.Name,
	}
}

// CategoryModelFromDomain builds the model from a domain category
func CategoryModelFromDomain(c *ledger.Category) *CategoryModel {
	m := &CategoryModel{Name: c.Name}
	m.FromDomainWorkspaceAggregateRoot(c.WorkspaceAggregateRoot)
	return m
}

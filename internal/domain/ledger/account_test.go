package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountValidation(t *testing.T) {
	_, err := NewAccount(uuid.New(), "", AccountKindChecking, "EUR")
	assert.Error(t, err)

	_, err = NewAccount(uuid.New(), "Everyday", AccountKind("WALLET"), "EUR")
	assert.Error(t, err)

	_, err = NewAccount(uuid.New(), "Everyday", AccountKindChecking, "EURO")
	assert.Error(t, err)
}

func TestAccountArchiveLifecycle(t *testing.T) {
	acc, err := NewAccount(uuid.New(), "Everyday", AccountKindChecking, "EUR")
	require.NoError(t, err)

	require.NoError(t, acc.Archive())
	assert.True(t, acc.Archived)

	assert.Error(t, acc.Archive())
	assert.Error(t, acc.Update("Renamed", AccountKindChecking), "archived accounts are read-only")

	require.NoError(t, acc.Unarchive())
	require.NoError(t, acc.Update("Renamed", AccountKindSavings))
	assert.Equal(t, "Renamed", acc.Name)
	assert.Equal(t, AccountKindSavings, acc.Kind)
}

func TestAccountAuditSchemaDiff(t *testing.T) {
	acc, err := NewAccount(uuid.New(), "Everyday", AccountKindChecking, "EUR")
	require.NoError(t, err)
	before := acc.Snapshot()

	require.NoError(t, acc.Update("Household", AccountKindChecking))

	changes := AccountAuditSchema.Diff(before, acc)
	require.Len(t, changes, 1)
	assert.Equal(t, "name", changes[0].Field)
	assert.Equal(t, "Everyday", changes[0].Old)
	assert.Equal(t, "Household", changes[0].New)
}

func TestTransactionAuditSchemaAmountChange(t *testing.T) {
	txn := newTestTransaction(t)
	before := txn.Snapshot()

	require.NoError(t, txn.Update(decimal.NewFromInt(-150), txn.Payee, txn.CategoryID, txn.Notes, txn.OccurredAt))

	changes := TransactionAuditSchema.Diff(before, txn)
	require.Len(t, changes, 1)
	assert.Equal(t, "amount", changes[0].Field)
}

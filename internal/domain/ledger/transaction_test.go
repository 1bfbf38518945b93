package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(t *testing.T) *Transaction {
	t.Helper()
	txn, err := NewTransaction(uuid.New(), uuid.New(), decimal.NewFromInt(-50), "Grocer", time.Now())
	require.NoError(t, err)
	return txn
}

func TestNewTransactionValidation(t *testing.T) {
	_, err := NewTransaction(uuid.New(), uuid.Nil, decimal.NewFromInt(10), "Shop", time.Now())
	assert.Error(t, err)

	_, err = NewTransaction(uuid.New(), uuid.New(), decimal.Zero, "Shop", time.Now())
	assert.Error(t, err)

	_, err = NewTransaction(uuid.New(), uuid.New(), decimal.NewFromInt(10), "", time.Now())
	assert.Error(t, err)

	_, err = NewTransaction(uuid.New(), uuid.New(), decimal.NewFromInt(10), "Shop", time.Time{})
	assert.Error(t, err)
}

func TestTransactionUpdate(t *testing.T) {
	txn := newTestTransaction(t)
	catID := uuid.New()

	err := txn.Update(decimal.NewFromInt(-75), "Market", &catID, "weekly run", txn.OccurredAt)
	require.NoError(t, err)

	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(-75)))
	assert.Equal(t, "Market", txn.Payee)
	assert.Equal(t, &catID, txn.CategoryID)
}

func TestTransactionUpdateVoidedRejected(t *testing.T) {
	txn := newTestTransaction(t)
	require.NoError(t, txn.Void())

	err := txn.Update(decimal.NewFromInt(-75), "Market", nil, "", txn.OccurredAt)
	assert.Error(t, err)
}

func TestTransactionGrouping(t *testing.T) {
	txn := newTestTransaction(t)
	groupID := uuid.New()

	require.NoError(t, txn.AssignGroup(groupID))
	assert.True(t, txn.IsGrouped())

	err := txn.AssignGroup(groupID)
	assert.Error(t, err, "assigning the same group twice is rejected")

	require.NoError(t, txn.RemoveFromGroup())
	assert.False(t, txn.IsGrouped())

	err = txn.RemoveFromGroup()
	assert.Error(t, err, "cannot leave a group twice")
}

func TestTransactionSplitLifecycle(t *testing.T) {
	txn := newTestTransaction(t)

	require.NoError(t, txn.MarkSplit())
	assert.True(t, txn.IsSplit)

	err := txn.MarkSplit()
	assert.Error(t, err)

	part, err := txn.NewSplitPart(decimal.NewFromInt(-20), nil, "half")
	require.NoError(t, err)
	assert.Equal(t, txn.GetID(), *part.SplitParentID)
	assert.Equal(t, txn.WorkspaceID, part.WorkspaceID)
	assert.Equal(t, txn.AccountID, part.AccountID)

	err = part.MarkSplit()
	assert.Error(t, err, "a split part cannot be split again")

	require.NoError(t, txn.Unsplit())
	assert.False(t, txn.IsSplit)
}

func TestTransactionSplitPartSignMustMatch(t *testing.T) {
	txn := newTestTransaction(t)
	require.NoError(t, txn.MarkSplit())

	_, err := txn.NewSplitPart(decimal.NewFromInt(20), nil, "")
	assert.Error(t, err)
}

func TestTransactionSnapshotIsIndependent(t *testing.T) {
	txn := newTestTransaction(t)
	before := txn.Snapshot()

	require.NoError(t, txn.Update(decimal.NewFromInt(-99), "Other", nil, "", txn.OccurredAt))

	assert.True(t, before.Amount.Equal(decimal.NewFromInt(-50)))
	assert.Equal(t, "Grocer", before.Payee)
}

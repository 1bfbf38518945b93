package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appaudit "github.com/finledger/backend/internal/application/audit"
	"github.com/finledger/backend/internal/domain/audit"
	"github.com/finledger/backend/internal/domain/ledger"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/workspace"
	"github.com/finledger/backend/internal/infrastructure/event"
	"github.com/finledger/backend/internal/infrastructure/persistence"
	"github.com/finledger/backend/internal/infrastructure/persistence/models"
)

// ledgerFixture wires the full pipeline: sqlite-backed repositories, the
// transaction manager, the async event bus, and the audit recorder. Tests
// observe the audit trail the same way production does, through the
// asynchronous subscriber.
type ledgerFixture struct {
	db           *gorm.DB
	bus          *event.AsyncEventBus
	auditRecords *persistence.GormAuditRecordRepository
	transactions *TransactionService
	accounts     *AccountService
	categories   *CategoryService

	workspaceID uuid.UUID
	ownerID     uuid.UUID
	viewerID    uuid.UUID
	accountID   uuid.UUID
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.WorkspaceModel{},
		&models.MemberModel{},
		&models.AccountModel{},
		&models.CategoryModel{},
		&models.TransactionModel{},
		&models.AuditRecordModel{},
	))

	log := zap.NewNop()
	retry := event.NewRetryExecutor(3, log)
	bus := event.NewAsyncEventBus(log, retry, event.Config{Workers: 2, QueueSize: 64})
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	auditRecords := persistence.NewGormAuditRecordRepository(db)
	bus.Subscribe(appaudit.NewRecorder(auditRecords, log))

	txm := persistence.NewTxManager(db, bus, log)
	transactionRepo := persistence.NewGormTransactionRepository(db)
	accountRepo := persistence.NewGormAccountRepository(db)
	categoryRepo := persistence.NewGormCategoryRepository(db)
	memberRepo := persistence.NewGormMemberRepository(db)
	workspaceRepo := persistence.NewGormWorkspaceRepository(db)

	f := &ledgerFixture{
		db:           db,
		bus:          bus,
		auditRecords: auditRecords,
		transactions: NewTransactionService(transactionRepo, accountRepo, categoryRepo, memberRepo, txm, bus, log),
		accounts:     NewAccountService(accountRepo, memberRepo, txm, bus, log),
		categories:   NewCategoryService(categoryRepo, transactionRepo, memberRepo, txm),
		ownerID:      uuid.New(),
		viewerID:     uuid.New(),
	}

	ctx := context.Background()
	ws, err := workspace.NewWorkspace("Household", f.ownerID)
	require.NoError(t, err)
	require.NoError(t, workspaceRepo.Save(ctx, ws))
	f.workspaceID = ws.ID

	owner, err := workspace.NewMember(ws.ID, f.ownerID, workspace.MemberRoleOwner)
	require.NoError(t, err)
	require.NoError(t, memberRepo.Save(ctx, owner))
	viewer, err := workspace.NewMember(ws.ID, f.viewerID, workspace.MemberRoleViewer)
	require.NoError(t, err)
	require.NoError(t, memberRepo.Save(ctx, viewer))

	account, err := ledger.NewAccount(ws.ID, "Checking", ledger.AccountKindChecking, "EUR")
	require.NoError(t, err)
	require.NoError(t, accountRepo.Save(ctx, account))
	f.accountID = account.GetID()

	return f
}

func (f *ledgerFixture) createTransaction(t *testing.T, amount int64, payee string) *TransactionResponse {
	resp, err := f.transactions.Create(context.Background(), f.workspaceID, f.ownerID, CreateTransactionRequest{
		AccountID:  f.accountID,
		Amount:     decimal.NewFromInt(amount),
		Payee:      payee,
		OccurredAt: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return resp
}

// auditTrail polls the entity's audit history until at least n records exist
func (f *ledgerFixture) auditTrail(t *testing.T, entityID uuid.UUID, n int) []audit.Record {
	var records []audit.Record
	require.Eventually(t, func() bool {
		found, err := f.auditRecords.ListForEntity(context.Background(), f.workspaceID, entityID, 0)
		if err != nil || len(found) < n {
			return false
		}
		records = found
		return true
	}, 2*time.Second, 10*time.Millisecond)
	return records
}

func (f *ledgerFixture) assertNoAuditTrail(t *testing.T, entityID uuid.UUID) {
	assert.Never(t, func() bool {
		found, err := f.auditRecords.ListForEntity(context.Background(), f.workspaceID, entityID, 0)
		return err == nil && len(found) > 0
	}, 300*time.Millisecond, 30*time.Millisecond)
}

func TestCreateTransactionWritesCreationRecord(t *testing.T) {
	f := newLedgerFixture(t)
	resp := f.createTransaction(t, -50, "Grocer")

	records := f.auditTrail(t, resp.ID, 1)
	require.Len(t, records, 1)
	assert.Equal(t, audit.ActionCreated, records[0].Action)
	assert.Equal(t, "transaction", records[0].Domain)
	assert.Empty(t, records[0].Changes, "creation records carry no field diff")
	require.NotNil(t, records[0].PerformedBy)
	assert.Equal(t, f.ownerID, *records[0].PerformedBy)
}

func TestUpdateTransactionRecordsFieldDiff(t *testing.T) {
	f := newLedgerFixture(t)
	resp := f.createTransaction(t, -50, "Grocer")

	_, err := f.transactions.Update(context.Background(), f.workspaceID, f.ownerID, resp.ID, UpdateTransactionRequest{
		Amount:     decimal.NewFromInt(-75),
		Payee:      "Market",
		OccurredAt: resp.OccurredAt,
	})
	require.NoError(t, err)

	records := f.auditTrail(t, resp.ID, 2)
	// Newest first: the update record precedes the creation record.
	update := records[0]
	assert.Equal(t, audit.ActionUpdated, update.Action)

	fields := make(map[string]bool)
	for _, change := range update.Changes {
		fields[change.Field] = true
	}
	assert.True(t, fields["amount"])
	assert.True(t, fields["payee"])
	assert.False(t, fields["status"], "unchanged fields stay out of the diff")
}

func TestFailedMutationLeavesNoTrace(t *testing.T) {
	f := newLedgerFixture(t)
	resp := f.createTransaction(t, -50, "Grocer")
	f.auditTrail(t, resp.ID, 1)

	_, err := f.transactions.Update(context.Background(), f.workspaceID, f.ownerID, resp.ID, UpdateTransactionRequest{
		Amount:     decimal.Zero, // rejected by the domain
		Payee:      "Market",
		OccurredAt: resp.OccurredAt,
	})
	require.Error(t, err)

	// The row is unchanged and no update record ever appears.
	current, err := f.transactions.Get(context.Background(), f.workspaceID, f.ownerID, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grocer", current.Payee)

	assert.Never(t, func() bool {
		found, err := f.auditRecords.ListForEntity(context.Background(), f.workspaceID, resp.ID, 0)
		return err == nil && len(found) > 1
	}, 300*time.Millisecond, 30*time.Millisecond)
}

func TestNoOpUpdatePublishesNothing(t *testing.T) {
	f := newLedgerFixture(t)
	resp := f.createTransaction(t, -50, "Grocer")
	f.auditTrail(t, resp.ID, 1)

	_, err := f.transactions.Update(context.Background(), f.workspaceID, f.ownerID, resp.ID, UpdateTransactionRequest{
		Amount:     resp.Amount,
		Payee:      resp.Payee,
		OccurredAt: resp.OccurredAt,
	})
	require.NoError(t, err)

	assert.Never(t, func() bool {
		found, err := f.auditRecords.ListForEntity(context.Background(), f.workspaceID, resp.ID, 0)
		return err == nil && len(found) > 1
	}, 300*time.Millisecond, 30*time.Millisecond)
}

func TestGroupLifecycle(t *testing.T) {
	f := newLedgerFixture(t)
	resp := f.createTransaction(t, -30, "Hotel")
	groupID := uuid.New()

	grouped, err := f.transactions.AssignGroup(context.Background(), f.workspaceID, f.ownerID, resp.ID, groupID)
	require.NoError(t, err)
	require.NotNil(t, grouped.GroupID)
	assert.Equal(t, groupID, *grouped.GroupID)

	records := f.auditTrail(t, resp.ID, 2)
	assert.Equal(t, audit.ActionGrouped, records[0].Action)

	_, err = f.transactions.RemoveFromGroup(context.Background(), f.workspaceID, f.ownerID, resp.ID)
	require.NoError(t, err)

	records = f.auditTrail(t, resp.ID, 3)
	assert.Equal(t, audit.ActionUngrouped, records[0].Action)
}

func TestSplitLifecycle(t *testing.T) {
	f := newLedgerFixture(t)
	resp := f.createTransaction(t, -100, "Supermarket")

	t.Run("parts must sum to parent amount", func(t *testing.T) {
		_, err := f.transactions.Split(context.Background(), f.workspaceID, f.ownerID, resp.ID, []SplitPartRequest{
			{Amount: decimal.NewFromInt(-60)},
			{Amount: decimal.NewFromInt(-30)},
		})
		require.Error(t, err)
	})

	t.Run("split creates parts and an audit record", func(t *testing.T) {
		parent, err := f.transactions.Split(context.Background(), f.workspaceID, f.ownerID, resp.ID, []SplitPartRequest{
			{Amount: decimal.NewFromInt(-60), Notes: "groceries"},
			{Amount: decimal.NewFromInt(-40), Notes: "household"},
		})
		require.NoError(t, err)
		assert.True(t, parent.IsSplit)

		parts, err := f.transactions.ListSplitParts(context.Background(), f.workspaceID, f.ownerID, resp.ID)
		require.NoError(t, err)
		assert.Len(t, parts, 2)

		records := f.auditTrail(t, resp.ID, 2)
		assert.Equal(t, audit.ActionSplit, records[0].Action)
	})

	t.Run("unsplit removes the parts", func(t *testing.T) {
		parent, err := f.transactions.Unsplit(context.Background(), f.workspaceID, f.ownerID, resp.ID)
		require.NoError(t, err)
		assert.False(t, parent.IsSplit)

		parts, err := f.transactions.ListSplitParts(context.Background(), f.workspaceID, f.ownerID, resp.ID)
		require.NoError(t, err)
		assert.Empty(t, parts)

		records := f.auditTrail(t, resp.ID, 3)
		assert.Equal(t, audit.ActionUnsplit, records[0].Action)
	})
}

func TestViewerCannotMutate(t *testing.T) {
	f := newLedgerFixture(t)
	resp := f.createTransaction(t, -50, "Grocer")

	_, err := f.transactions.Create(context.Background(), f.workspaceID, f.viewerID, CreateTransactionRequest{
		AccountID:  f.accountID,
		Amount:     decimal.NewFromInt(-10),
		Payee:      "Kiosk",
		OccurredAt: time.Now(),
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = f.transactions.Void(context.Background(), f.workspaceID, f.viewerID, resp.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// Reads are allowed for viewers.
	_, err = f.transactions.Get(context.Background(), f.workspaceID, f.viewerID, resp.ID)
	assert.NoError(t, err)
}

func TestOutsiderCannotRead(t *testing.T) {
	f := newLedgerFixture(t)
	resp := f.createTransaction(t, -50, "Grocer")

	_, err := f.transactions.Get(context.Background(), f.workspaceID, uuid.New(), resp.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestCreateOnArchivedAccountRejected(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.accounts.Archive(context.Background(), f.workspaceID, f.ownerID, f.accountID)
	require.NoError(t, err)

	_, err = f.transactions.Create(context.Background(), f.workspaceID, f.ownerID, CreateTransactionRequest{
		AccountID:  f.accountID,
		Amount:     decimal.NewFromInt(-10),
		Payee:      "Kiosk",
		OccurredAt: time.Now(),
	})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestListTransactionsPaginated(t *testing.T) {
	f := newLedgerFixture(t)
	for i := 0; i < 5; i++ {
		f.createTransaction(t, int64(-(i+1)), "Payee")
	}

	page, err := f.transactions.List(context.Background(), f.workspaceID, f.ownerID, TransactionListFilter{
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
}

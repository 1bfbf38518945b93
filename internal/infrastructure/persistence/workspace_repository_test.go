package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/finledger/backend/internal/domain/shared"
)

// newMockWorkspaceRepository backs the repository with a mocked SQL
// connection so the generated statements themselves can be asserted
func newMockWorkspaceRepository(t *testing.T) (*GormWorkspaceRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormWorkspaceRepository(gormDB), mock, mockDB
}

func TestGormWorkspaceRepositoryFindByID(t *testing.T) {
	t.Run("finds existing workspace", func(t *testing.T) {
		repo, mock, mockDB := newMockWorkspaceRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		ownerID := uuid.New()
		now := time.Now()
		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "name", "owner_id"}).
			AddRow(id, now, now, 1, "Household", ownerID)

		mock.ExpectQuery(`SELECT \* FROM "workspaces" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		ws, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, ws.ID)
		assert.Equal(t, "Household", ws.Name)
		assert.Equal(t, ownerID, ws.OwnerID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockWorkspaceRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "workspaces" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWorkspaceRepositoryDeleteMatchingNoRows(t *testing.T) {
	repo, mock, mockDB := newMockWorkspaceRepository(t)
	defer mockDB.Close()

	id := uuid.New()
	mock.ExpectExec(`DELETE FROM "workspaces" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Zero rows affected is success. Concurrent reaper dispatches race to
	// delete the same workspace and the losers must not error.
	assert.NoError(t, repo.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

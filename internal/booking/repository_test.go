package booking

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cancelQuery = `UPDATE bookings SET status = $1, cancelled_at = $2 WHERE id = $3 AND status = $4`

func TestCancelTx_GuardWins(t *testing.T) {
	sqlxDB, dbMock := newMockDB(t)
	cancelledAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	dbMock.ExpectBegin()
	dbMock.ExpectExec(regexp.QuoteMeta(cancelQuery)).
		WithArgs(StatusCancelled, cancelledAt, 5, StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectCommit()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	repo := NewRepository(sqlxDB)
	ok, err := repo.CancelTx(context.Background(), tx, 5, cancelledAt)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, tx.Commit())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCancelTx_AlreadyCancelledLoses(t *testing.T) {
	sqlxDB, dbMock := newMockDB(t)
	cancelledAt := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	dbMock.ExpectBegin()
	dbMock.ExpectExec(regexp.QuoteMeta(cancelQuery)).
		WithArgs(StatusCancelled, cancelledAt, 5, StatusConfirmed).
		WillReturnResult(sqlmock.NewResult(0, 0))
	dbMock.ExpectRollback()

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	repo := NewRepository(sqlxDB)
	ok, err := repo.CancelTx(context.Background(), tx, 5, cancelledAt)
	require.NoError(t, err)
	assert.False(t, ok)
}

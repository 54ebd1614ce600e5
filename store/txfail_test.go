package store_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagdex/tagdex/store"
)

// Driver-level failures are hard to provoke against a real SQLite file,
// so these run against a mocked connection.

func TestAddRollsBackOnDriverFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT OR IGNORE INTO tags").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	s := store.New(conn, nil)
	err = s.Add(context.Background(), "u1", sticker("e1"), []string{"cat"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddFailsWhenTransactionCannotStart(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin().WillReturnError(assert.AnError)

	s := store.New(conn, nil)
	err = s.Add(context.Background(), "u1", sticker("e1"), []string{"cat"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportPropagatesQueryFailure(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectQuery("SELECT").WillReturnError(assert.AnError)

	s := store.New(conn, nil)
	_, err = s.Export(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

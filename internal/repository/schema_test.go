package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS contributors").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, EnsureSchema(context.Background(), sqlxDB))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS contributors").WillReturnError(errors.New("permission denied"))
	err = EnsureSchema(context.Background(), sqlxDB)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")

	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	for _, migration := range Migrations {
		mock.ExpectExec(migration).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, RunMigrations(db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(Migrations[0]).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(Migrations[1]).WillReturnError(errors.New("permission denied"))

	err = RunMigrations(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMoneyColumnsAreBigint(t *testing.T) {
	schema := strings.Join(Migrations, "\n")

	assert.Contains(t, schema, "total_price BIGINT")
	assert.Contains(t, schema, "subtotal_price BIGINT")
	assert.Contains(t, schema, "ALTER COLUMN total_price TYPE BIGINT")
	assert.Contains(t, schema, "ALTER COLUMN subtotal_price TYPE BIGINT")
	assert.NotContains(t, schema, "total_price INTEGER")
}

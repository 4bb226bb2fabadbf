package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petmatch/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DB{
		DbHOST:     "db",
		DbPORT:     "5432",
		DbUSER:     "postgres",
		DbPASSWORD: "secret",
		DbNAME:     "petmatch",
		DbSSLMODE:  "disable",
	})

	assert.Equal(t, "host=db port=5432 user=postgres password=secret dbname=petmatch sslmode=disable", dsn)
}

func TestHealthCheck(t *testing.T) {
	t.Run("nil connection", func(t *testing.T) {
		var db *DB
		assert.Error(t, db.HealthCheck(context.Background()))
	})

	t.Run("ping", func(t *testing.T) {
		conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer conn.Close()

		mock.ExpectPing()

		db := &DB{sqlx.NewDb(conn, "sqlmock")}
		assert.NoError(t, db.HealthCheck(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_init.sql", entries[0].Name())
}

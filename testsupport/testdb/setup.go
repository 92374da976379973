package testdb

import (
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	tcpg "github.com/mpapenbr/motorsport-analytics/testsupport/tcpostgres"
)

// InitTestDB provides a migrated and cleared database.
// Set TESTDB_URL to use an existing database or MSA_TESTCONTAINERS=true to
// start a postgres container. Otherwise the calling test is skipped.
func InitTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	var pool *pgxpool.Pool
	var err error
	switch {
	case os.Getenv("TESTDB_URL") != "":
		pool, err = tcpg.SetupExternalTestDB(os.Getenv("TESTDB_URL"))
	case os.Getenv("MSA_TESTCONTAINERS") == "true":
		pool, err = tcpg.SetupTestDB()
	default:
		t.Skip("no test database configured (TESTDB_URL, MSA_TESTCONTAINERS)")
	}
	if err != nil {
		t.Fatalf("initTestDB: %v", err)
	}
	tcpg.ClearAllTables(pool)
	t.Cleanup(pool.Close)
	return pool
}

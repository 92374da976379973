//nolint:errcheck // testsetup
package tcpostgres

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mpapenbr/motorsport-analytics/pkg/db/migrate"
	database "github.com/mpapenbr/motorsport-analytics/pkg/db/postgres"
)

// SetupTestDB starts (or reuses) a postgres container and applies the migrations
func SetupTestDB() (*pgxpool.Pool, error) {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		return nil, err
	}
	container, err := SetupPostgres(ctx,
		WithPort(port.Port()),
		WithInitialDatabase("postgres", "password", "postgres"),
		WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
		WithName("motorsport-analytics-test"),
	)
	if err != nil {
		return nil, err
	}
	containerPort, err := container.MappedPort(ctx, port)
	if err != nil {
		return nil, err
	}
	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}
	dbURL := fmt.Sprintf("postgresql://postgres:password@%s:%s/postgres",
		host, containerPort.Port())
	return SetupExternalTestDB(dbURL)
}

// SetupExternalTestDB uses an existing database (e.g. from TESTDB_URL)
func SetupExternalTestDB(dbURL string) (*pgxpool.Pool, error) {
	if err := migrate.MigrateDb(dbURL); err != nil {
		return nil, err
	}
	return database.InitWithURL(dbURL)
}

func ClearSessionCacheTable(pool *pgxpool.Pool) {
	pool.Exec(context.Background(), "delete from session_cache")
}

func ClearAllTables(pool *pgxpool.Pool) {
	ClearSessionCacheTable(pool)
}

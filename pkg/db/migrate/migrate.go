package migrate

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// MigrateDb applies the embedded migrations
func MigrateDb(dbURI string) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, pgxURL(dbURI))
	if err != nil {
		return err
	}
	defer m.Close()

	return up(m)
}

// MigrateDbFromSource applies the migrations found at sourceURL (e.g. file:///migrations).
// The database is accessed via the lib/pq based postgres driver.
func MigrateDbFromSource(sourceURL, dbURI string) error {
	m, err := migrate.New(sourceURL,
		strings.Replace(dbURI, "postgresql://", "postgres://", 1))
	if err != nil {
		return err
	}
	defer m.Close()
	return up(m)
}

func up(m *migrate.Migrate) error {
	err := m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func pgxURL(dbURI string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dbURI, prefix) {
			return "pgx://" + strings.TrimPrefix(dbURI, prefix)
		}
	}
	return dbURI
}

//nolint:whitespace // can't make both editor and linter happy
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
)

var StoreTypeSqlite factory.StoreType = "sqlite"

var ErrMissingFile = errors.New("sqlite store requires a database file")

type (
	Option       func(*sqliteConfig)
	sqliteConfig struct {
		file string
	}
	sqliteStore struct {
		db *sql.DB
	}
)

func WithFile(file string) Option {
	return func(c *sqliteConfig) {
		c.file = file
	}
}

func New(
	common []resultcache.StoreOption, specific []Option,
) (resultcache.Store, error) {
	cfg := &sqliteConfig{}
	for _, o := range specific {
		o(cfg)
	}
	if cfg.file == "" {
		return nil, ErrMissingFile
	}
	if err := os.MkdirAll(filepath.Dir(cfg.file), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", cfg.file)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows only one writer
	db.SetMaxOpenConns(1)
	s := &sqliteStore{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS session_cache (
  year INTEGER NOT NULL,
  round INTEGER NOT NULL,
  session_name TEXT NOT NULL,
  data_type TEXT NOT NULL,
  data BLOB NOT NULL,
  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (year, round, session_name, data_type)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session_cache table: %w", err)
	}
	return nil
}

func (s *sqliteStore) Get(
	ctx context.Context, key resultcache.Key,
) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT data FROM session_cache
WHERE year = ? AND round = ? AND session_name = ? AND data_type = ?;
`, key.Year, key.Round, string(key.Session), string(key.Metric))
	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, resultcache.ErrNotFound
		}
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	return data, nil
}

func (s *sqliteStore) Put(
	ctx context.Context, key resultcache.Key, data []byte,
) error {
	const stmt = `
INSERT INTO session_cache (year, round, session_name, data_type, data, created_at)
VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(year, round, session_name, data_type)
DO UPDATE SET data = excluded.data, created_at = excluded.created_at;
`
	if _, err := s.db.ExecContext(ctx, stmt,
		key.Year, key.Round, string(key.Session), string(key.Metric), data); err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func init() {
	factory.Register(StoreTypeSqlite, New)
}

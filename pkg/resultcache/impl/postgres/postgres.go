//nolint:whitespace // can't make both editor and linter happy
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/mpapenbr/motorsport-analytics/pkg/db/postgres"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
)

var StoreTypePostgres factory.StoreType = "postgres"

var ErrMissingConnection = errors.New("postgres store requires a connection")

type (
	Option        func(*postgresStore)
	postgresStore struct {
		conn postgres.Querier
	}
)

// WithQuerier sets the connection (usually a *pgxpool.Pool) to be used.
func WithQuerier(conn postgres.Querier) Option {
	return func(s *postgresStore) {
		s.conn = conn
	}
}

// New creates a store backed by the table session_cache.
// The table is created by the migrations in pkg/db/migrate.
func New(
	common []resultcache.StoreOption, specific []Option,
) (resultcache.Store, error) {
	ret := &postgresStore{}
	for _, o := range specific {
		o(ret)
	}
	if ret.conn == nil {
		return nil, ErrMissingConnection
	}
	return ret, nil
}

func (s *postgresStore) Get(
	ctx context.Context, key resultcache.Key,
) ([]byte, error) {
	row := s.conn.QueryRow(ctx, `
	select data from session_cache
	where year=$1 and round=$2 and session_name=$3 and data_type=$4
	`, key.Year, key.Round, string(key.Session), string(key.Metric))

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resultcache.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *postgresStore) Put(
	ctx context.Context, key resultcache.Key, data []byte,
) error {
	_, err := s.conn.Exec(ctx, `
	insert into session_cache (
		year, round, session_name, data_type, data, created_at
	) values ($1,$2,$3,$4,$5,now())
	on conflict (year, round, session_name, data_type)
	do update set data=excluded.data, created_at=excluded.created_at
	`,
		key.Year, key.Round, string(key.Session), string(key.Metric), string(data),
	)
	return err
}

func init() {
	factory.Register(StoreTypePostgres, New)
}

package util

import (
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/config"
	"github.com/mpapenbr/motorsport-analytics/pkg/db/postgres"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/impl/memory"
	natsStore "github.com/mpapenbr/motorsport-analytics/pkg/resultcache/impl/nats"
	pgStore "github.com/mpapenbr/motorsport-analytics/pkg/resultcache/impl/postgres"
	redisStore "github.com/mpapenbr/motorsport-analytics/pkg/resultcache/impl/redis"
	sqliteStore "github.com/mpapenbr/motorsport-analytics/pkg/resultcache/impl/sqlite"
	"github.com/mpapenbr/motorsport-analytics/pkg/service/analytics"
	"github.com/mpapenbr/motorsport-analytics/pkg/session"
	"github.com/mpapenbr/motorsport-analytics/pkg/session/archive"
)

// Backend holds the components shared by the serve and analyze commands
type Backend struct {
	Pool      *pgxpool.Pool // nil if no database is configured
	Analytics *analytics.Service
	closers   []func()
}

// NewBackend connects to the configured database and result cache store and
// creates the analytics service on top of the session archive.
func NewBackend(tracers ...pgx.QueryTracer) (*Backend, error) {
	b := &Backend{}
	if config.DB != "" {
		pool, err := postgres.InitWithURL(config.DB, postgres.WithTracer(tracers...))
		if err != nil {
			return nil, err
		}
		b.Pool = pool
		b.closers = append(b.closers, pool.Close)
	}
	store, err := b.newStore()
	if err != nil {
		b.Close()
		return nil, err
	}
	log.Info("Using result cache store", log.String("type", config.CacheStore))

	loader := session.NewCachingLoader(
		archive.NewLoader(config.ArchiveDir),
		session.WithTTL(ParseDuration("session-ttl", config.SessionTTL, 10*time.Minute)))
	b.Analytics = analytics.New(loader, resultcache.New(store))
	return b, nil
}

// Close releases the connections in reverse order of creation
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

func (b *Backend) newStore() (resultcache.Store, error) {
	storeType := factory.StoreType(config.CacheStore)
	if !factory.Registered(storeType) {
		return nil, fmt.Errorf("%w: %s", factory.ErrTypeNotSupported, config.CacheStore)
	}
	common := []resultcache.StoreOption{}
	if config.CachePrefix != "" {
		common = append(common, resultcache.WithPrefix(config.CachePrefix))
	}

	var store resultcache.Store
	var err error
	switch storeType {
	case pgStore.StoreTypePostgres:
		if b.Pool == nil {
			return nil, fmt.Errorf("cache store %s requires --db", config.CacheStore)
		}
		store, err = factory.New[resultcache.Store, pgStore.Option](storeType, common,
			[]pgStore.Option{pgStore.WithQuerier(b.Pool)})
	case redisStore.StoreTypeRedis:
		store, err = factory.New[resultcache.Store, redisStore.Option](storeType, common,
			[]redisStore.Option{redisStore.WithURL(config.RedisURL)})
	case natsStore.StoreTypeNats:
		nc, connErr := nats.Connect(config.NatsURL)
		if connErr != nil {
			return nil, fmt.Errorf("connect to nats: %w", connErr)
		}
		b.closers = append(b.closers, nc.Close)
		store, err = factory.New[resultcache.Store, natsStore.Option](storeType, common,
			[]natsStore.Option{natsStore.WithNATS(nc)})
	case sqliteStore.StoreTypeSqlite:
		store, err = factory.New[resultcache.Store, sqliteStore.Option](storeType, common,
			[]sqliteStore.Option{sqliteStore.WithFile(config.SqliteFile)})
	default:
		store, err = factory.New[resultcache.Store, memory.Option](storeType, common, nil)
	}
	if err != nil {
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		b.closers = append(b.closers, func() {
			if err := c.Close(); err != nil {
				log.Warn("Could not close cache store", log.ErrorField(err))
			}
		})
	}
	return store, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgx-contrib/pgxtrace"

	"github.com/mpapenbr/motorsport-analytics/log"
)

type PoolConfigOption func(cfg *pgxpool.Config)

// WithTracer installs the given tracers. Multiple tracers are combined.
func WithTracer(tracers ...pgx.QueryTracer) PoolConfigOption {
	return func(cfg *pgxpool.Config) {
		switch len(tracers) {
		case 0:
		case 1:
			cfg.ConnConfig.Tracer = tracers[0]
		default:
			cfg.ConnConfig.Tracer = pgxtrace.CompositeQueryTracer(tracers)
		}
	}
}

// NewOtlpTracer creates a tracer reporting queries as OpenTelemetry spans
func NewOtlpTracer() pgx.QueryTracer {
	return otelpgx.NewTracer(otelpgx.WithIncludeQueryParameters())
}

// NewLogTracer creates a tracer which logs executed statements on the given level
func NewLogTracer(logger *log.Logger, level log.Level) pgx.QueryTracer {
	return &logTracer{log: logger.Named("sql"), level: level}
}

func InitWithURL(url string, opts ...PoolConfigOption) (*pgxpool.Pool, error) {
	dbConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}
	for _, opt := range opts {
		opt(dbConfig)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create the database pool: %w", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to get a valid database connection: %w", err)
	}
	return pool, nil
}

type logTracer struct {
	log   *log.Logger
	level log.Level
}

func (t *logTracer) TraceQueryStart(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	if t.level == log.DebugLevel {
		t.log.Debug("Executing", log.String("sql", data.SQL), log.Any("args", data.Args))
	} else {
		t.log.Info("Executing", log.String("sql", data.SQL))
	}
	return ctx
}

//nolint:whitespace // can't make the linters happy
func (t *logTracer) TraceQueryEnd(
	ctx context.Context,
	conn *pgx.Conn,
	data pgx.TraceQueryEndData,
) {
	if data.Err != nil {
		t.log.Warn("query failed", log.ErrorField(data.Err))
	}
}

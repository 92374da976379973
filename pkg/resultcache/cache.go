package resultcache

import (
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	"github.com/mpapenbr/motorsport-analytics/pkg/sanitize"
)

type (
	Option func(*Cache)
	// Cache stores sanitized analysis results per session and metric.
	// Failures of the underlying store are logged and never reported to the caller.
	Cache struct {
		store   Store
		log     *log.Logger
		lookups metric.Int64Counter
		errors  metric.Int64Counter
	}
)

func WithLogger(l *log.Logger) Option {
	return func(c *Cache) {
		c.log = l
	}
}

func New(store Store, opts ...Option) *Cache {
	ret := &Cache{
		store: store,
		log:   log.Default().Named("resultcache"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	meter := otel.GetMeterProvider().Meter("msa.resultcache")
	ret.lookups, _ = meter.Int64Counter("resultcache_lookups",
		metric.WithDescription("result cache lookups by outcome"))
	ret.errors, _ = meter.Int64Counter("resultcache_errors",
		metric.WithDescription("failed result cache store operations"))
	return ret
}

// Get decodes the cached entry into target. It returns false on a miss
// or if the entry could not be read.
//
//nolint:whitespace // editor/linter issue
func (c *Cache) Get(
	ctx context.Context, sk model.SessionKey, m model.Metric, target any,
) bool {
	key := NewKey(sk, m)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Warn("could not read cache entry",
				log.String("key", key.String()), log.ErrorField(err))
			c.count(ctx, c.errors, "get", m)
		}
		c.count(ctx, c.lookups, "miss", m)
		return false
	}
	if err := json.Unmarshal(data, target); err != nil {
		c.log.Warn("could not decode cache entry",
			log.String("key", key.String()), log.ErrorField(err))
		c.count(ctx, c.errors, "decode", m)
		c.count(ctx, c.lookups, "miss", m)
		return false
	}
	c.log.Debug("cache hit", log.String("key", key.String()))
	c.count(ctx, c.lookups, "hit", m)
	return true
}

// Put sanitizes value and stores its JSON representation.
//
//nolint:whitespace // editor/linter issue
func (c *Cache) Put(
	ctx context.Context, sk model.SessionKey, m model.Metric, value any,
) {
	key := NewKey(sk, m)
	data, err := json.Marshal(sanitize.Clean(value))
	if err != nil {
		c.log.Warn("could not encode cache entry",
			log.String("key", key.String()), log.ErrorField(err))
		c.count(ctx, c.errors, "encode", m)
		return
	}
	if err := c.store.Put(ctx, key, data); err != nil {
		c.log.Warn("could not write cache entry",
			log.String("key", key.String()), log.ErrorField(err))
		c.count(ctx, c.errors, "put", m)
		return
	}
	c.log.Debug("cache entry stored",
		log.String("key", key.String()), log.Int("size", len(data)))
}

//nolint:whitespace // editor/linter issue
func (c *Cache) count(
	ctx context.Context, counter metric.Int64Counter, op string, m model.Metric,
) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("metric", string(m)),
	))
}

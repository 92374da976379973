package session

import (
	"context"
	"time"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	"github.com/mpapenbr/motorsport-analytics/pkg/utils/cache"
	"github.com/mpapenbr/motorsport-analytics/pkg/utils/cache/loadercache"
)

// Loader turns the raw timing data of a session into a model.Session.
// Failures are reported as *model.LoadError, invalid keys as *model.ValidationError.
type Loader interface {
	Load(ctx context.Context, key model.SessionKey) (model.Session, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context, key model.SessionKey) (model.Session, error)

func (f LoaderFunc) Load(ctx context.Context, key model.SessionKey) (model.Session, error) {
	return f(ctx, key)
}

type (
	CachingOption  func(*cachingLoader)
	cachingLoader struct {
		delegate Loader
		ttl      time.Duration
		log      *log.Logger
		cache    cache.Cache[model.SessionKey, model.Session]
	}
)

func WithTTL(ttl time.Duration) CachingOption {
	return func(c *cachingLoader) {
		c.ttl = ttl
	}
}

func WithLogger(l *log.Logger) CachingOption {
	return func(c *cachingLoader) {
		c.log = l
	}
}

// NewCachingLoader keeps loaded sessions in memory for the configured ttl.
// A ttl <= 0 disables the cache and returns the delegate.
func NewCachingLoader(delegate Loader, opts ...CachingOption) Loader {
	ret := &cachingLoader{
		delegate: delegate,
		ttl:      10 * time.Minute,
		log:      log.Default().Named("session"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.ttl <= 0 {
		return delegate
	}
	ret.cache = loadercache.New(
		loadercache.WithExpiration[model.SessionKey, model.Session](ret.ttl),
		loadercache.WithLogger[model.SessionKey, model.Session](ret.log.Named("cache")),
		loadercache.WithLoader(ret.load),
	)
	return ret
}

func (c *cachingLoader) load(ctx context.Context, key model.SessionKey) (*model.Session, error) {
	s, err := c.delegate.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *cachingLoader) Load(ctx context.Context, key model.SessionKey) (model.Session, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	s, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return *s, nil
}

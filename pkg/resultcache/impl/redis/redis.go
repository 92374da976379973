//nolint:whitespace // can't make both editor and linter happy
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
)

var StoreTypeRedis factory.StoreType = "redis"

var ErrMissingClient = errors.New("redis store requires a client or url")

type (
	Option      func(*redisConfig)
	redisConfig struct {
		client *redis.Client
		url    string
	}
	redisStore struct {
		cfg    *resultcache.StoreConfig
		client *redis.Client
	}
)

func WithClient(c *redis.Client) Option {
	return func(cfg *redisConfig) {
		cfg.client = c
	}
}

// WithURL configures the connection by url, e.g. redis://localhost:6379/0
func WithURL(url string) Option {
	return func(cfg *redisConfig) {
		cfg.url = url
	}
}

func New(
	common []resultcache.StoreOption, specific []Option,
) (resultcache.Store, error) {
	own := &redisConfig{}
	for _, o := range specific {
		o(own)
	}
	client := own.client
	if client == nil {
		if own.url == "" {
			return nil, ErrMissingClient
		}
		opts, err := redis.ParseURL(own.url)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client = redis.NewClient(opts)
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &redisStore{
		cfg:    resultcache.NewStoreConfig(common...),
		client: client,
	}, nil
}

func (s *redisStore) key(key resultcache.Key) string {
	return fmt.Sprintf("%s:cache:%d:%d:%s:%s",
		s.cfg.Prefix, key.Year, key.Round, key.Session, key.Metric)
}

func (s *redisStore) Get(
	ctx context.Context, key resultcache.Key,
) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, resultcache.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *redisStore) Put(
	ctx context.Context, key resultcache.Key, data []byte,
) error {
	return s.client.Set(ctx, s.key(key), data, 0).Err()
}

func init() {
	factory.Register(StoreTypeRedis, New)
}

package resultcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
)

var ErrNotFound = errors.New("cache entry not found")

type (
	// Key addresses one cache entry
	Key struct {
		Year    int
		Round   int
		Session model.SessionID
		Metric  model.Metric
	}

	// Store persists the encoded analysis results.
	// Implementations must be safe for concurrent use.
	Store interface {
		// Get returns ErrNotFound if there is no entry for key
		Get(ctx context.Context, key Key) ([]byte, error)
		// Put stores data for key, replacing an existing entry
		Put(ctx context.Context, key Key, data []byte) error
	}

	StoreConfig struct {
		// Prefix is used by stores sharing a namespace with other applications
		Prefix string
	}
	StoreOption func(*StoreConfig)
)

func NewKey(sk model.SessionKey, metric model.Metric) Key {
	return Key{Year: sk.Year, Round: sk.Round, Session: sk.Session, Metric: metric}
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d:%s:%s", k.Year, k.Round, k.Session, k.Metric)
}

func WithPrefix(prefix string) StoreOption {
	return func(c *StoreConfig) {
		c.Prefix = prefix
	}
}

func NewStoreConfig(opts ...StoreOption) *StoreConfig {
	cfg := &StoreConfig{Prefix: "msa"}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

//nolint:whitespace // can't make both editor and linter happy
package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
)

var StoreTypeNats factory.StoreType = "nats"

var ErrMissingConnection = errors.New("nats store requires a connection")

type (
	Option     func(*natsConfig)
	natsConfig struct {
		nc     *nats.Conn
		bucket string
	}

	natsStore struct {
		cfg    *resultcache.StoreConfig
		ownCfg *natsConfig
		log    *log.Logger
		kv     jetstream.KeyValue
	}
)

func WithNATS(nc *nats.Conn) Option {
	return func(c *natsConfig) {
		c.nc = nc
	}
}

func WithBucket(name string) Option {
	return func(c *natsConfig) {
		c.bucket = name
	}
}

func New(
	common []resultcache.StoreOption, specific []Option,
) (resultcache.Store, error) {
	ownCfg := &natsConfig{}
	for _, o := range specific {
		o(ownCfg)
	}
	if ownCfg.nc == nil {
		return nil, ErrMissingConnection
	}
	ret := &natsStore{
		cfg:    resultcache.NewStoreConfig(common...),
		ownCfg: ownCfg,
		log:    log.Default().Named("resultcache.nats"),
	}
	if ret.ownCfg.bucket == "" {
		ret.ownCfg.bucket = ret.cfg.Prefix + "_session_cache"
	}
	ret.log.Debug("Initializing NATS KV storage for session cache",
		log.String("bucket", ret.ownCfg.bucket))
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *natsStore) init() error {
	js, err := jetstream.New(s.ownCfg.nc)
	if err != nil {
		return err
	}
	s.kv, err = js.CreateOrUpdateKeyValue(context.Background(), jetstream.KeyValueConfig{
		Bucket:      s.ownCfg.bucket,
		Description: "analysis results per session and metric",
	})
	return err
}

// key builds a subject compatible key (tokens separated by dots)
func (s *natsStore) key(key resultcache.Key) string {
	return fmt.Sprintf("%d.%d.%s.%s", key.Year, key.Round, key.Session, key.Metric)
}

func (s *natsStore) Get(
	ctx context.Context, key resultcache.Key,
) ([]byte, error) {
	kve, err := s.kv.Get(ctx, s.key(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, resultcache.ErrNotFound
		}
		return nil, err
	}
	return kve.Value(), nil
}

func (s *natsStore) Put(
	ctx context.Context, key resultcache.Key, data []byte,
) error {
	_, err := s.kv.Put(ctx, s.key(key), data)
	return err
}

func init() {
	factory.Register(StoreTypeNats, New)
}

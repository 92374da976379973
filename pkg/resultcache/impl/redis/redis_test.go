package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
	"github.com/mpapenbr/motorsport-analytics/testsupport/storetest"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	return mr
}

func TestRedisStore(t *testing.T) {
	mr := setupMiniredis(t)
	store, err := factory.New[resultcache.Store, Option](
		StoreTypeRedis, nil, []Option{WithURL("redis://" + mr.Addr())})
	require.NoError(t, err)
	storetest.Run(t, store)
}

func TestRedisKeyLayout(t *testing.T) {
	mr := setupMiniredis(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store, err := New(nil, []Option{WithClient(client)})
	require.NoError(t, err)
	key := resultcache.Key{
		Year: 2024, Round: 1, Session: model.SessionQualifying,
		Metric: model.MetricBestSectors,
	}
	require.NoError(t, store.Put(context.Background(), key, []byte(`[]`)))

	val, err := mr.Get("msa:cache:2024:1:Q:best_sectors")
	require.NoError(t, err)
	assert.Equal(t, "[]", val)
}

func TestRedisStoreRequiresConnection(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrMissingClient)
}

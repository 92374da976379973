package loadercache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/log"
	"github.com/mpapenbr/motorsport-analytics/pkg/utils/cache"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestLoaderCache(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	loads := 0
	c := New(
		WithExpiration[string, int](time.Minute),
		WithLogger[string, int](log.Nop()),
		withClock[string, int](clock.now),
		WithLoader(func(_ context.Context, key string) (*int, error) {
			loads++
			if key == "bad" {
				return nil, errors.New("boom")
			}
			v := len(key)
			return &v, nil
		}),
	)
	ctx := context.Background()

	v, err := c.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 3, *v)
	_, _ = c.Get(ctx, "abc")
	assert.Equal(t, 1, loads, "second get must be served from cache")

	clock.t = clock.t.Add(2 * time.Minute)
	_, _ = c.Get(ctx, "abc")
	assert.Equal(t, 2, loads, "expired entry must be reloaded")

	c.Invalidate(ctx, "abc")
	_, _ = c.Get(ctx, "abc")
	assert.Equal(t, 3, loads)

	_, err = c.Get(ctx, "bad")
	assert.Error(t, err)
	_, err = c.Get(ctx, "bad")
	assert.Error(t, err)
	assert.Equal(t, 5, loads, "errors are not cached")
}

func TestLoaderCacheWithoutLoader(t *testing.T) {
	c := New[string, int](WithLogger[string, int](log.Nop()))
	_, err := c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

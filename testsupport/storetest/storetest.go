//nolint:thelper // ok for tests
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/pkg/model"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
)

// Run verifies the contract of a resultcache.Store implementation
func Run(t *testing.T, store resultcache.Store) {
	ctx := context.Background()
	key := resultcache.Key{
		Year: 2023, Round: 5, Session: model.SessionRace, Metric: model.MetricStints,
	}
	other := key
	other.Metric = model.MetricSpeedTraps

	t.Run("miss", func(t *testing.T) {
		_, err := store.Get(ctx, key)
		assert.True(t, errors.Is(err, resultcache.ErrNotFound), "got %v", err)
	})

	t.Run("put and get", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, []byte(`[{"driver":"VER"}]`)))
		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"driver":"VER"}]`, string(data))
	})

	t.Run("last write wins", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, []byte(`[{"driver":"HAM"}]`)))
		data, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"driver":"HAM"}]`, string(data))
	})

	t.Run("keys are independent", func(t *testing.T) {
		_, err := store.Get(ctx, other)
		assert.True(t, errors.Is(err, resultcache.ErrNotFound), "got %v", err)
	})
}

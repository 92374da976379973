package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
	"github.com/mpapenbr/motorsport-analytics/testsupport/storetest"
	"github.com/mpapenbr/motorsport-analytics/testsupport/testdb"
)

func TestPostgresStore(t *testing.T) {
	pool := testdb.InitTestDB(t)
	store, err := factory.New[resultcache.Store, Option](
		StoreTypePostgres, nil, []Option{WithQuerier(pool)})
	require.NoError(t, err)
	storetest.Run(t, store)
}

func TestPostgresStoreRequiresConnection(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrMissingConnection)
}

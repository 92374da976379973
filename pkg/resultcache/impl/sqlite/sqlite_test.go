package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
	"github.com/mpapenbr/motorsport-analytics/testsupport/storetest"
)

func TestSqliteStore(t *testing.T) {
	store, err := factory.New[resultcache.Store, Option](
		StoreTypeSqlite, nil,
		[]Option{WithFile(filepath.Join(t.TempDir(), "cache", "msa.db"))})
	require.NoError(t, err)
	t.Cleanup(func() {
		//nolint:errcheck // test cleanup
		store.(*sqliteStore).Close()
	})
	storetest.Run(t, store)
}

func TestSqliteStoreRequiresFile(t *testing.T) {
	_, err := New(nil, nil)
	require.ErrorIs(t, err, ErrMissingFile)
}

package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
	"github.com/mpapenbr/motorsport-analytics/testsupport/storetest"
)

func TestMemoryStore(t *testing.T) {
	store, err := factory.New[resultcache.Store, Option](
		StoreTypeMemory, nil, nil)
	require.NoError(t, err)
	storetest.Run(t, store)
}

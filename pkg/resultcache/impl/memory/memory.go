package memory

import (
	"context"
	"sync"

	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache"
	"github.com/mpapenbr/motorsport-analytics/pkg/resultcache/factory"
)

var StoreTypeMemory factory.StoreType = "memory"

type (
	Option      func(*memoryStore)
	memoryStore struct {
		mutex   sync.RWMutex
		entries map[resultcache.Key][]byte
	}
)

//nolint:whitespace // editor/linter issue
func New(
	common []resultcache.StoreOption, specific []Option,
) (resultcache.Store, error) {
	ret := &memoryStore{entries: make(map[resultcache.Key][]byte)}
	for _, o := range specific {
		o(ret)
	}
	return ret, nil
}

func (s *memoryStore) Get(ctx context.Context, key resultcache.Key) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if data, ok := s.entries[key]; ok {
		return data, nil
	}
	return nil, resultcache.ErrNotFound
}

//nolint:whitespace // editor/linter issue
func (s *memoryStore) Put(
	ctx context.Context, key resultcache.Key, data []byte,
) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.entries[key] = cp
	return nil
}

func init() {
	factory.Register(StoreTypeMemory, New)
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/CreativeUnicorns/launcherprefs"
)

// MemoryStorage keeps every store in process memory.
// This is useful for testing or when settings need not survive a restart.
type MemoryStorage struct {
	mu     sync.RWMutex
	stores map[launcherprefs.StoreID]map[string]json.RawMessage
	closed bool
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		stores: make(map[launcherprefs.StoreID]map[string]json.RawMessage),
	}
}

// Load returns a copy of the persisted values of store.
func (s *MemoryStorage) Load(_ context.Context, store launcherprefs.StoreID) (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("%w: memory storage closed", launcherprefs.ErrStorageUnavailable)
	}

	out := make(map[string]json.RawMessage, len(s.stores[store]))
	for k, v := range s.stores[store] {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out, nil
}

// Commit applies batch to store.
func (s *MemoryStorage) Commit(_ context.Context, store launcherprefs.StoreID, batch launcherprefs.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: memory storage closed", launcherprefs.ErrStorageUnavailable)
	}

	values, ok := s.stores[store]
	if !ok {
		values = make(map[string]json.RawMessage)
		s.stores[store] = values
	}
	for _, k := range batch.Delete {
		delete(values, k)
	}
	for k, v := range batch.Put {
		values[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}

// Close marks the storage closed. Later calls fail with ErrStorageUnavailable.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

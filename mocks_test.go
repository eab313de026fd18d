package launcherprefs

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// MockStorage implements the Storage interface for testing.
type MockStorage struct {
	mu        sync.Mutex
	data      map[StoreID]map[string]json.RawMessage
	closed    bool
	commits   int
	failLoad  error
	failStore map[StoreID]error // forces Commit errors for one store
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		data:      make(map[StoreID]map[string]json.RawMessage),
		failStore: make(map[StoreID]error),
	}
}

func (m *MockStorage) Load(_ context.Context, store StoreID) (map[string]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrStorageUnavailable
	}
	if m.failLoad != nil {
		return nil, m.failLoad
	}
	out := make(map[string]json.RawMessage, len(m.data[store]))
	for k, v := range m.data[store] {
		out[k] = v
	}
	return out, nil
}

func (m *MockStorage) Commit(_ context.Context, store StoreID, batch Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStorageUnavailable
	}
	if err := m.failStore[store]; err != nil {
		return err
	}
	if m.data[store] == nil {
		m.data[store] = make(map[string]json.RawMessage)
	}
	for _, k := range batch.Delete {
		delete(m.data[store], k)
	}
	for k, v := range batch.Put {
		m.data[store][k] = v
	}
	m.commits++
	return nil
}

func (m *MockStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *MockStorage) raw(store StoreID, key string) (json.RawMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[store][key]
	return v, ok
}

func (m *MockStorage) put(store StoreID, key string, raw string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[store] == nil {
		m.data[store] = make(map[string]json.RawMessage)
	}
	m.data[store][key] = json.RawMessage(raw)
}

func (m *MockStorage) failCommits(store StoreID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStore[store] = err
}

// MockCache implements the Cache interface for testing.
type MockCache struct {
	mu      sync.Mutex
	items   map[string][]byte
	ttls    map[string]time.Duration
	failSet error
	gets    int
}

func NewMockCache() *MockCache {
	return &MockCache{
		items: make(map[string][]byte),
		ttls:  make(map[string]time.Duration),
	}
}

func (m *MockCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	v, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *MockCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.items[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *MockCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MockCache) Close() error { return nil }

func (m *MockCache) snapshot(t *testing.T, store StoreID) map[string]json.RawMessage {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.items[cacheKeyPrefix+string(store)]
	if !ok {
		return nil
	}
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	return raw
}

// MockLogger records log entries for assertions.
type MockLogger struct {
	mu      sync.Mutex
	entries []string
	level   LogLevel
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (l *MockLogger) log(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, fmt.Sprintf("%s: %s %v", level, msg, args))
}

func (l *MockLogger) Debug(msg string, args ...any) { l.log("DEBUG", msg, args...) }
func (l *MockLogger) Info(msg string, args ...any)  { l.log("INFO", msg, args...) }
func (l *MockLogger) Warn(msg string, args ...any)  { l.log("WARN", msg, args...) }
func (l *MockLogger) Error(msg string, args ...any) { l.log("ERROR", msg, args...) }
func (l *MockLogger) SetLevel(level LogLevel)       { l.level = level }

func (l *MockLogger) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type themeMode string

const (
	themeLight  themeMode = "LIGHT"
	themeDark   themeMode = "DARK"
	themeSystem themeMode = "SYSTEM"
)

var (
	keyEnabled = BoolKey("enabled", false)
	keyCount   = IntKey("count", 3)
	keyRatio   = FloatKey("ratio", 0.5)
	keyLabel   = StringKey("label", "home")
	keyTags    = StringSetKey("tags")
	keyTheme   = EnumKey("theme", themeSystem, themeLight, themeDark, themeSystem)
	keySecret  = StringKey("secret", "").Sensitive()
)

func testDefinition(id StoreID) *StoreDefinition {
	return MustDefineStore(id, keyEnabled, keyCount, keyRatio, keyLabel, keyTags, keyTheme, keySecret)
}

func newTestRegistry(t *testing.T, opts ...Option) (*Registry, *MockStorage) {
	t.Helper()
	storage := NewMockStorage()
	all := append([]Option{WithStorage(storage), WithLogger(NewMockLogger())}, opts...)
	return New(all...), storage
}

func registerTestStore(t *testing.T, reg *Registry, id StoreID) *Store {
	t.Helper()
	s, err := reg.Register(context.Background(), testDefinition(id))
	require.NoError(t, err)
	return s
}

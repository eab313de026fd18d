package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CreativeUnicorns/launcherprefs"
)

// MockRedisClient is an in-memory stand-in for *redis.Client.
type MockRedisClient struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockRedisClient) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	val, exists := m.data[key]
	if !exists {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *MockRedisClient) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.data[key] = string(value.([]byte))
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *MockRedisClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	count := 0
	for _, key := range keys {
		if _, exists := m.data[key]; exists {
			delete(m.data, key)
			count++
		}
	}
	return redis.NewIntResult(int64(count), nil)
}

func (m *MockRedisClient) Close() error {
	return nil
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	mockClient := NewMockRedisClient()
	redisCache := &RedisCache{client: mockClient}

	key := "launcherprefs:store:Drawer"
	value := []byte(`{"auto_launch":false}`)

	if err := redisCache.Set(ctx, key, value, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if mockClient.ttls[key] != time.Hour {
		t.Errorf("ttl = %v, want 1h", mockClient.ttls[key])
	}

	got, err := redisCache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("Get = %s, want %s", got, value)
	}

	if err := redisCache.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = redisCache.Get(ctx, key)
	if !errors.Is(err, launcherprefs.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got: %v", err)
	}
}

func TestRedisCache_Unavailable(t *testing.T) {
	ctx := context.Background()
	mockClient := NewMockRedisClient()
	mockClient.err = errors.New("connection refused")
	redisCache := &RedisCache{client: mockClient}

	if _, err := redisCache.Get(ctx, "k"); !errors.Is(err, launcherprefs.ErrCacheUnavailable) {
		t.Errorf("Get: expected ErrCacheUnavailable, got %v", err)
	}
	if err := redisCache.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, launcherprefs.ErrCacheUnavailable) {
		t.Errorf("Set: expected ErrCacheUnavailable, got %v", err)
	}
	if err := redisCache.Delete(ctx, "k"); !errors.Is(err, launcherprefs.ErrCacheUnavailable) {
		t.Errorf("Delete: expected ErrCacheUnavailable, got %v", err)
	}
}

package launcherprefs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	reg, storage := newTestRegistry(t)
	s := registerTestStore(t, reg, "Test")

	t.Run("absent_key_returns_default", func(t *testing.T) {
		v, err := Get(s, keyCount)
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)

		theme, err := Get(s, keyTheme)
		require.NoError(t, err)
		assert.Equal(t, themeSystem, theme)
	})

	t.Run("set_persists_native_json", func(t *testing.T) {
		require.NoError(t, Set(ctx, s, keyCount, 9))
		require.NoError(t, Set(ctx, s, keyTags, []string{"b", "a"}))
		require.NoError(t, Set(ctx, s, keyTheme, themeDark))

		v, err := Get(s, keyCount)
		require.NoError(t, err)
		assert.Equal(t, int64(9), v)

		raw, ok := storage.raw("Test", "tags")
		require.True(t, ok)
		assert.JSONEq(t, `["a","b"]`, string(raw))
		raw, _ = storage.raw("Test", "theme")
		assert.JSONEq(t, `"DARK"`, string(raw))
	})

	t.Run("unknown_key", func(t *testing.T) {
		_, err := Get(s, BoolKey("nope", false))
		assert.ErrorIs(t, err, ErrUnknownKey)
	})

	t.Run("kind_mismatch", func(t *testing.T) {
		_, err := Get(s, IntKey("enabled", 0))
		assert.ErrorIs(t, err, ErrKindMismatch)
	})

	t.Run("invalid_enum_value", func(t *testing.T) {
		err := Set(ctx, s, keyTheme, themeMode("NEON"))
		assert.ErrorIs(t, err, ErrInvalidValue)
	})

	t.Run("value_and_snapshot_are_copies", func(t *testing.T) {
		snap := s.Snapshot()
		snap["tags"].([]string)[0] = "mutated"

		v, err := s.Value("tags")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, v)
	})
}

func TestStoreUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	reg, storage := newTestRegistry(t)
	s := registerTestStore(t, reg, "Test")
	require.NoError(t, Set(ctx, s, keyLabel, "before"))

	t.Run("fn_error_discards_every_mutation", func(t *testing.T) {
		boom := errors.New("boom")
		commits := storage.commits

		err := s.Update(ctx, func(tx *Tx) error {
			require.NoError(t, Put(tx, keyLabel, "after"))
			require.NoError(t, Put(tx, keyEnabled, true))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, commits, storage.commits)

		label, _ := Get(s, keyLabel)
		assert.Equal(t, "before", label)
		enabled, _ := Get(s, keyEnabled)
		assert.False(t, enabled)
	})

	t.Run("storage_failure_leaves_snapshot", func(t *testing.T) {
		storage.failCommits("Test", errors.New("disk full"))
		defer storage.failCommits("Test", nil)

		err := Set(ctx, s, keyLabel, "after")
		assert.ErrorIs(t, err, ErrStorageUnavailable)

		label, _ := Get(s, keyLabel)
		assert.Equal(t, "before", label)
	})

	t.Run("reads_inside_transaction_see_staged_values", func(t *testing.T) {
		err := s.Update(ctx, func(tx *Tx) error {
			if err := Put(tx, keyCount, 10); err != nil {
				return err
			}
			n, err := Read(tx, keyCount)
			if err != nil {
				return err
			}
			return Put(tx, keyCount, n+1)
		})
		require.NoError(t, err)
		n, _ := Get(s, keyCount)
		assert.Equal(t, int64(11), n)
	})

	t.Run("empty_transaction_does_not_commit", func(t *testing.T) {
		commits := storage.commits
		require.NoError(t, s.Update(ctx, func(tx *Tx) error { return nil }))
		assert.Equal(t, commits, storage.commits)
	})
}

func TestStoreResetAll(t *testing.T) {
	ctx := context.Background()
	reg, storage := newTestRegistry(t)
	s := registerTestStore(t, reg, "Test")

	require.NoError(t, Set(ctx, s, keyEnabled, true))
	require.NoError(t, Set(ctx, s, keyRatio, 0.9))

	require.NoError(t, s.ResetAll(ctx))

	assert.Empty(t, s.Snapshot())
	_, ok := storage.raw("Test", "enabled")
	assert.False(t, ok)
	ratio, _ := Get(s, keyRatio)
	assert.Equal(t, 0.5, ratio)
}

func TestStoreConcurrentTransactions(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)
	a := registerTestStore(t, reg, "A")
	b := registerTestStore(t, reg, "B")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, s := range []*Store{a, b} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.Update(ctx, func(tx *Tx) error {
					n, err := Read(tx, keyCount)
					if err != nil {
						return err
					}
					return Put(tx, keyCount, n+1)
				})
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	for _, s := range []*Store{a, b} {
		n, err := Get(s, keyCount)
		require.NoError(t, err)
		assert.Equal(t, int64(53), n, string(s.ID()))
	}
}

func TestStoreReload(t *testing.T) {
	ctx := context.Background()
	reg, storage := newTestRegistry(t)
	s := registerTestStore(t, reg, "Test")
	require.NoError(t, Set(ctx, s, keyRatio, 0.25))

	t.Run("values_survive_reopen", func(t *testing.T) {
		reopened := New(WithStorage(storage), WithLogger(NewMockLogger()))
		s2 := registerTestStore(t, reopened, "Test")
		ratio, err := Get(s2, keyRatio)
		require.NoError(t, err)
		assert.Equal(t, 0.25, ratio)
	})

	t.Run("undecodable_values_fall_back_to_default", func(t *testing.T) {
		storage.put("Broken", "count", `"many"`)
		storage.put("Broken", "retired_key", `true`)
		storage.put("Broken", "label", `"kept"`)

		logger := NewMockLogger()
		r := New(WithStorage(storage), WithLogger(logger))
		s3 := registerTestStore(t, r, "Broken")

		n, _ := Get(s3, keyCount)
		assert.Equal(t, int64(3), n)
		label, _ := Get(s3, keyLabel)
		assert.Equal(t, "kept", label)
		assert.NotContains(t, s3.Snapshot(), "retired_key")

		warnings := 0
		for _, e := range logger.Entries() {
			if strings.HasPrefix(e, "WARN") {
				warnings++
			}
		}
		assert.Equal(t, 2, warnings)
	})

	t.Run("load_failure", func(t *testing.T) {
		failing := NewMockStorage()
		failing.failLoad = errors.New("no such table")
		r := New(WithStorage(failing), WithLogger(NewMockLogger()))
		_, err := r.Register(ctx, testDefinition("Test"))
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})
}

func TestStoreCache(t *testing.T) {
	ctx := context.Background()
	cache := NewMockCache()
	reg, _ := newTestRegistry(t, WithCache(cache), WithCacheTTL(time.Hour))
	s := registerTestStore(t, reg, "Test")

	t.Run("write_through", func(t *testing.T) {
		require.NoError(t, Set(ctx, s, keyLabel, "cached"))
		raw := cache.snapshot(t, "Test")
		assert.JSONEq(t, `"cached"`, string(raw["label"]))
		assert.Equal(t, time.Hour, cache.ttls[cacheKeyPrefix+"Test"])
	})

	t.Run("read_through_prefers_cache", func(t *testing.T) {
		other, _ := newTestRegistry(t, WithCache(cache))
		s2 := registerTestStore(t, other, "Test")
		label, err := Get(s2, keyLabel)
		require.NoError(t, err)
		assert.Equal(t, "cached", label)
	})

	t.Run("miss_populates_cache", func(t *testing.T) {
		registerTestStore(t, reg, "Fresh")
		assert.NotNil(t, cache.snapshot(t, "Fresh"))
	})

	t.Run("cache_failure_does_not_fail_commit", func(t *testing.T) {
		cache.failSet = errors.New("redis down")
		defer func() { cache.failSet = nil }()

		require.NoError(t, Set(ctx, s, keyLabel, "uncached"))
		label, _ := Get(s, keyLabel)
		assert.Equal(t, "uncached", label)
		assert.Nil(t, cache.snapshot(t, "Test"), "stale snapshot must be evicted")
	})
}

func TestStoreEncryption(t *testing.T) {
	ctx := context.Background()
	enc, err := NewEncryptionAdapterWithKey([]byte("this-is-a-32-byte-key-for-test!!"))
	require.NoError(t, err)

	reg, storage := newTestRegistry(t, WithEncryption(enc))
	s := registerTestStore(t, reg, "Test")

	require.NoError(t, Set(ctx, s, keySecret, "content://backups/tree"))
	require.NoError(t, Set(ctx, s, keyLabel, "plain"))

	raw, ok := storage.raw("Test", "secret")
	require.True(t, ok)
	assert.NotContains(t, string(raw), "backups")
	var sealed string
	require.NoError(t, json.Unmarshal(raw, &sealed))
	assert.NotEmpty(t, sealed)

	raw, _ = storage.raw("Test", "label")
	assert.JSONEq(t, `"plain"`, string(raw))

	reopened := New(WithStorage(storage), WithEncryption(enc), WithLogger(NewMockLogger()))
	s2 := registerTestStore(t, reopened, "Test")
	secret, err := Get(s2, keySecret)
	require.NoError(t, err)
	assert.Equal(t, "content://backups/tree", secret)

	t.Run("export_is_plain_text", func(t *testing.T) {
		values, err := s2.ExportBackup()
		require.NoError(t, err)
		assert.Equal(t, TextValue("content://backups/tree"), values["secret"])
	})
}

func TestStoreImportBackup(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(t)
	s := registerTestStore(t, reg, "Test")
	require.NoError(t, Set(ctx, s, keyLabel, "untouched"))
	require.NoError(t, Set(ctx, s, keyCount, 8))

	t.Run("merge", func(t *testing.T) {
		n, err := s.ImportBackup(ctx, map[string]BackupValue{
			"enabled": TextValue("yes"),
			"count":   {},
			"tags":    TextValue("solo"),
			"future":  BoolValue(true),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		enabled, _ := Get(s, keyEnabled)
		assert.True(t, enabled)
		count, _ := Get(s, keyCount)
		assert.Equal(t, int64(8), count, "null leaves the key untouched")
		label, _ := Get(s, keyLabel)
		assert.Equal(t, "untouched", label)
		tags, _ := Get(s, keyTags)
		assert.Equal(t, []string{"solo"}, tags)
	})

	t.Run("decode_failure_rolls_back_store", func(t *testing.T) {
		n, err := s.ImportBackup(ctx, map[string]BackupValue{
			"label": TextValue("changed"),
			"theme": TextValue("Dark"),
		})
		assert.ErrorIs(t, err, ErrDecodeTypeMismatch)
		assert.Zero(t, n)

		label, _ := Get(s, keyLabel)
		assert.Equal(t, "untouched", label)
	})

	t.Run("export_import_is_idempotent", func(t *testing.T) {
		exported, err := s.ExportBackup()
		require.NoError(t, err)
		before := s.Snapshot()

		_, err = s.ImportBackup(ctx, exported)
		require.NoError(t, err)
		assert.Equal(t, before, s.Snapshot())

		again, err := s.ExportBackup()
		require.NoError(t, err)
		assert.Equal(t, exported, again)
	})
}

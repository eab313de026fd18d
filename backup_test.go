package launcherprefs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLegacy struct {
	id    StoreID
	calls int
	got   json.RawMessage
	err   error
}

func (f *fakeLegacy) StoreID() StoreID { return f.id }

func (f *fakeLegacy) ImportLegacy(_ context.Context, raw json.RawMessage) (int, error) {
	f.calls++
	f.got = raw
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

func newBackupFixture(t *testing.T, opts ...BackupOption) (*BackupManager, *Registry, *MockStorage) {
	t.Helper()
	reg, storage := newTestRegistry(t)
	registerTestStore(t, reg, "Debug")
	registerTestStore(t, reg, "Drawer")
	_, err := reg.Register(context.Background(), testDefinition("Private").WithoutBackup())
	require.NoError(t, err)
	registerTestStore(t, reg, "Swipe")
	return NewBackupManager(reg, opts...), reg, storage
}

func mustStore(t *testing.T, reg *Registry, id StoreID) *Store {
	t.Helper()
	s, err := reg.Store(id)
	require.NoError(t, err)
	return s
}

func TestBackupExport(t *testing.T) {
	ctx := context.Background()
	m, reg, _ := newBackupFixture(t)
	require.NoError(t, Set(ctx, mustStore(t, reg, "Debug"), keyEnabled, true))
	require.NoError(t, Set(ctx, mustStore(t, reg, "Private"), keyEnabled, true))
	require.NoError(t, Set(ctx, mustStore(t, reg, "Swipe"), keyLabel, "points"))

	t.Run("all_stores", func(t *testing.T) {
		doc, err := m.Export(ctx)
		require.NoError(t, err)
		assert.Equal(t, []StoreID{"Debug", "Swipe"}, doc.StoreIDs(), "default-only and private stores are omitted")
		assert.Equal(t, BoolValue(true), doc.Stores["Debug"]["enabled"])
	})

	t.Run("selection", func(t *testing.T) {
		doc, err := m.Export(ctx, "Swipe", "Private")
		require.NoError(t, err)
		assert.Equal(t, []StoreID{"Swipe"}, doc.StoreIDs())
	})

	t.Run("unknown_selection", func(t *testing.T) {
		_, err := m.Export(ctx, "Nope")
		assert.ErrorIs(t, err, ErrUnknownStore)
	})

	t.Run("document_json", func(t *testing.T) {
		doc, err := m.Export(ctx)
		require.NoError(t, err)
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.JSONEq(t, `{"Debug":{"enabled":true},"Swipe":{"label":"points"}}`, string(data))
	})
}

func TestBackupImport(t *testing.T) {
	ctx := context.Background()

	t.Run("per_store_failure_isolation", func(t *testing.T) {
		m, reg, _ := newBackupFixture(t)
		require.NoError(t, Set(ctx, mustStore(t, reg, "Drawer"), keyLabel, "old"))

		var doc Document
		require.NoError(t, json.Unmarshal([]byte(`{
			"Debug":  {"enabled": "on", "count": 4},
			"Drawer": {"label": "new", "theme": "dark"},
			"Unknown": {"x": 1},
			"version": 3
		}`), &doc))

		result, err := m.Import(ctx, &doc)
		require.NoError(t, err)

		assert.Equal(t, []StoreID{"Debug"}, result.Imported())
		failed := result.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, StoreID("Drawer"), failed[0].Store)
		assert.ErrorIs(t, failed[0].Err, ErrDecodeTypeMismatch)
		assert.ErrorIs(t, result.Err(), ErrDecodeTypeMismatch)

		enabled, _ := Get(mustStore(t, reg, "Debug"), keyEnabled)
		assert.True(t, enabled)
		label, _ := Get(mustStore(t, reg, "Drawer"), keyLabel)
		assert.Equal(t, "old", label, "failed store rolls back")

		statuses := map[StoreID]ImportStatus{}
		for _, o := range result.Outcomes {
			statuses[o.Store] = o.Status
		}
		assert.Equal(t, map[StoreID]ImportStatus{
			"Debug":   StatusImported,
			"Drawer":  StatusFailed,
			"Private": StatusSkipped,
			"Swipe":   StatusSkipped,
		}, statuses)
	})

	t.Run("malformed_store_entry_fails", func(t *testing.T) {
		m, reg, _ := newBackupFixture(t)
		var doc Document
		require.NoError(t, json.Unmarshal([]byte(`{"Debug": "yes", "Drawer": {"label": "new"}, "Later": 7}`), &doc))

		result, err := m.Import(ctx, &doc, "Debug", "Drawer")
		require.NoError(t, err)
		assert.Equal(t, []StoreID{"Drawer"}, result.Imported())
		failed := result.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, StoreID("Debug"), failed[0].Store)

		var de *DecodeError
		require.ErrorAs(t, failed[0].Err, &de)
		assert.Equal(t, "Debug", de.Key)
		assert.Equal(t, "String", de.Actual)

		enabled, _ := Get(mustStore(t, reg, "Debug"), keyEnabled)
		assert.False(t, enabled)
	})

	t.Run("private_store_never_imported", func(t *testing.T) {
		m, reg, _ := newBackupFixture(t)
		doc := NewDocument()
		doc.Stores["Private"] = map[string]BackupValue{"enabled": BoolValue(true)}

		result, err := m.Import(ctx, doc, "Private")
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, result.Outcomes[0].Status)
		enabled, _ := Get(mustStore(t, reg, "Private"), keyEnabled)
		assert.False(t, enabled)
	})

	t.Run("storage_failure_aborts", func(t *testing.T) {
		m, _, storage := newBackupFixture(t)
		storage.failCommits("Drawer", errors.New("read-only file system"))

		doc := NewDocument()
		doc.Stores["Drawer"] = map[string]BackupValue{"label": TextValue("x")}
		_, err := m.Import(ctx, doc)
		assert.ErrorIs(t, err, ErrStorageUnavailable)
	})

	t.Run("round_trip", func(t *testing.T) {
		src, srcReg, _ := newBackupFixture(t)
		require.NoError(t, Set(ctx, mustStore(t, srcReg, "Debug"), keyTags, []string{"x", "y"}))
		require.NoError(t, Set(ctx, mustStore(t, srcReg, "Drawer"), keyTheme, themeLight))
		require.NoError(t, Set(ctx, mustStore(t, srcReg, "Drawer"), keyRatio, 1.0/3))

		doc, err := src.Export(ctx)
		require.NoError(t, err)
		data, err := json.Marshal(doc)
		require.NoError(t, err)

		dst, dstReg, _ := newBackupFixture(t)
		var parsed Document
		require.NoError(t, json.Unmarshal(data, &parsed))
		result, err := dst.Import(ctx, &parsed)
		require.NoError(t, err)
		require.NoError(t, result.Err())

		for _, id := range []StoreID{"Debug", "Drawer"} {
			assert.Equal(t, mustStore(t, srcReg, id).Snapshot(), mustStore(t, dstReg, id).Snapshot(), string(id))
		}
	})

	t.Run("nil_document", func(t *testing.T) {
		m, _, _ := newBackupFixture(t)
		_, err := m.Import(ctx, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestBackupLegacyFallback(t *testing.T) {
	ctx := context.Background()
	legacyDoc := `{"Debug":{"enabled":true},"actions":[{"circleNumber":0,"angleDeg":90}]}`

	t.Run("used_when_store_entry_absent", func(t *testing.T) {
		legacy := &fakeLegacy{id: "Swipe"}
		m, _, _ := newBackupFixture(t, WithLegacyImporter(legacy))

		var doc Document
		require.NoError(t, json.Unmarshal([]byte(legacyDoc), &doc))
		result, err := m.Import(ctx, &doc)
		require.NoError(t, err)

		assert.Equal(t, 1, legacy.calls)
		assert.JSONEq(t, `[{"circleNumber":0,"angleDeg":90}]`, string(legacy.got))
		for _, o := range result.Outcomes {
			if o.Store == "Swipe" {
				assert.Equal(t, StatusImported, o.Status)
				assert.True(t, o.Legacy)
				assert.Equal(t, 2, o.Keys)
			}
		}
	})

	t.Run("ignored_when_store_entry_present", func(t *testing.T) {
		legacy := &fakeLegacy{id: "Swipe"}
		m, _, _ := newBackupFixture(t, WithLegacyImporter(legacy))

		var doc Document
		require.NoError(t, json.Unmarshal([]byte(`{"Swipe":{"label":"modern"},"actions":[]}`), &doc))
		_, err := m.Import(ctx, &doc)
		require.NoError(t, err)
		assert.Zero(t, legacy.calls)
	})

	t.Run("ignored_when_store_not_selected", func(t *testing.T) {
		legacy := &fakeLegacy{id: "Swipe"}
		m, _, _ := newBackupFixture(t, WithLegacyImporter(legacy))

		var doc Document
		require.NoError(t, json.Unmarshal([]byte(legacyDoc), &doc))
		_, err := m.Import(ctx, &doc, "Debug")
		require.NoError(t, err)
		assert.Zero(t, legacy.calls)
	})

	t.Run("legacy_failure_is_isolated", func(t *testing.T) {
		legacy := &fakeLegacy{id: "Swipe", err: &DecodeError{Key: "actions", Expected: "List", Actual: "Object"}}
		m, _, _ := newBackupFixture(t, WithLegacyImporter(legacy))

		var doc Document
		require.NoError(t, json.Unmarshal([]byte(legacyDoc), &doc))
		result, err := m.Import(ctx, &doc)
		require.NoError(t, err)
		assert.Equal(t, []StoreID{"Debug"}, result.Imported())
		require.Len(t, result.Failed(), 1)
		assert.True(t, result.Failed()[0].Legacy)
	})
}

func TestDocumentJSON(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`{"A":{"k":1},"B":"not a store","actions":[1]}`), &doc))
	assert.Equal(t, []StoreID{"A"}, doc.StoreIDs())
	assert.JSONEq(t, `[1]`, string(doc.LegacyActions))
	assert.JSONEq(t, `"not a store"`, string(doc.Malformed["B"]))

	data, err := json.Marshal(&doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":{"k":1},"actions":[1]}`, string(data))

	require.NoError(t, json.Unmarshal([]byte(`{"A":null}`), &doc))
	assert.Empty(t, doc.StoreIDs())
	assert.Empty(t, doc.Malformed)

	err = json.Unmarshal([]byte(`[1,2]`), &doc)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

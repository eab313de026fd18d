package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/launcherprefs"
	"github.com/CreativeUnicorns/launcherprefs/gesture"
	"github.com/CreativeUnicorns/launcherprefs/storage"
	"github.com/CreativeUnicorns/launcherprefs/widgets"
)

func quietLogger() launcherprefs.Logger {
	l := launcherprefs.NewDefaultLogger()
	l.SetLevel(launcherprefs.LogLevelError)
	return l
}

func openTestLauncher(t *testing.T, o Options) *Launcher {
	t.Helper()
	l, err := Open(context.Background(), o,
		launcherprefs.WithStorage(storage.NewMemoryStorage()),
		launcherprefs.WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestDefinitions(t *testing.T) {
	defs, err := Definitions()
	require.NoError(t, err)

	var ids []launcherprefs.StoreID
	for _, d := range defs {
		ids = append(ids, d.ID)
		assert.Equal(t, d.ID == Private, d.NoBackup, d.ID)
	}
	assert.Equal(t, []launcherprefs.StoreID{Debug, Drawer, Wallpaper, Private, ColorModes, Backup, Widgets, SwipePoints}, ids)

	t.Run("key_counts", func(t *testing.T) {
		counts := map[launcherprefs.StoreID]int{}
		for _, d := range defs {
			counts[d.ID] = len(d.Keys())
		}
		assert.Equal(t, map[launcherprefs.StoreID]int{
			Debug: 6, Drawer: 3, Wallpaper: 8, Private: 5, ColorModes: 3, Backup: 4, Widgets: 1, SwipePoints: 1,
		}, counts)
	})

	t.Run("fresh_definitions_each_call", func(t *testing.T) {
		again, err := Definitions()
		require.NoError(t, err)
		assert.NotSame(t, defs[0], again[0])
	})

	t.Run("backup_uri_encrypted_at_rest", func(t *testing.T) {
		assert.True(t, AutoBackupURI.Definition().Encrypted)
	})
}

func TestOpen(t *testing.T) {
	l := openTestLauncher(t, Options{MinGap: 45})
	assert.Equal(t, 45.0, l.Dial.MinGap())
	assert.Equal(t, widgets.Metrics{ScreenWidth: 1080, ScreenHeight: 2400, CellSize: 100}, l.Widgets.Metrics())
	assert.Len(t, l.Registry.Stores(), 8)

	s, err := l.Registry.Store(Drawer)
	require.NoError(t, err)
	v, err := launcherprefs.Get(s, SearchBarBottom)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestLauncherBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestLauncher(t, Options{})

	store := func(l *Launcher, id launcherprefs.StoreID) *launcherprefs.Store {
		s, err := l.Registry.Store(id)
		require.NoError(t, err)
		return s
	}

	require.NoError(t, launcherprefs.Set(ctx, store(src, Debug), DebugEnabled, true))
	require.NoError(t, launcherprefs.Set(ctx, store(src, Wallpaper), WallpaperMainBlurRadius, 12.5))
	require.NoError(t, launcherprefs.Set(ctx, store(src, ColorModes), DefaultTheme, ThemeLight))
	require.NoError(t, launcherprefs.Set(ctx, store(src, Backup), BackupStores, []string{"Debug", "Widgets"}))
	require.NoError(t, launcherprefs.Set(ctx, store(src, Private), HasSeenWelcome, true))
	_, _, err := src.Dial.Add(ctx, 0, gesture.OpenAppDrawer())
	require.NoError(t, err)
	_, err = src.Widgets.Add(ctx, 4, widgets.Provider{Package: "p", Class: "c"}, 200, 100)
	require.NoError(t, err)

	doc, err := src.Backups.Export(ctx)
	require.NoError(t, err)
	assert.NotContains(t, doc.Stores, Private)
	assert.NotContains(t, doc.Stores, Drawer)

	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)

	var parsed launcherprefs.Document
	require.NoError(t, json.Unmarshal(data, &parsed))

	dst := openTestLauncher(t, Options{})
	result, err := dst.Backups.Import(ctx, &parsed)
	require.NoError(t, err)
	require.NoError(t, result.Err())

	for _, id := range []launcherprefs.StoreID{Debug, Wallpaper, ColorModes, Backup, Widgets, SwipePoints} {
		assert.Equal(t, store(src, id).Snapshot(), store(dst, id).Snapshot(), id)
	}
	welcome, err := launcherprefs.Get(store(dst, Private), HasSeenWelcome)
	require.NoError(t, err)
	assert.False(t, welcome)
}

func TestImportFromDebugExample(t *testing.T) {
	ctx := context.Background()
	l := openTestLauncher(t, Options{})
	s, err := l.Registry.Store(Debug)
	require.NoError(t, err)

	var doc launcherprefs.Document
	require.NoError(t, json.Unmarshal([]byte(`{"Debug":{"debug_enabled":"yes"}}`), &doc))
	result, err := l.Backups.Import(ctx, &doc, Debug)
	require.NoError(t, err)
	require.NoError(t, result.Err())
	v, err := launcherprefs.Get(s, DebugEnabled)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, json.Unmarshal([]byte(`{"Debug":{"debug_enabled":"maybe"}}`), &doc))
	result, err = l.Backups.Import(ctx, &doc, Debug)
	require.NoError(t, err)
	var de *launcherprefs.DecodeError
	require.ErrorAs(t, result.Err(), &de)
	assert.Equal(t, "debug_enabled", de.Key)
}

func TestWidgetsBackupEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("export_writes_widget_list", func(t *testing.T) {
		l := openTestLauncher(t, Options{})
		_, err := l.Widgets.Add(ctx, 7, widgets.Provider{Package: "p", Class: "c"}, 200, 100)
		require.NoError(t, err)

		doc, err := l.Backups.Export(ctx, Widgets)
		require.NoError(t, err)
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		assert.JSONEq(t,
			`{"Widgets":{"widgets":[{"id":7,"provider":"p:c","spanX":2,"spanY":1,"x":0,"y":0}]}}`,
			string(data))
	})

	t.Run("import_widget_list", func(t *testing.T) {
		l := openTestLauncher(t, Options{})
		var doc launcherprefs.Document
		require.NoError(t, json.Unmarshal([]byte(`{"Widgets":{"widgets":[
			{"id":7,"provider":"p:c","spanX":2,"spanY":1,"x":0.25,"y":0.5},
			{"id":9,"provider":":"}
		]}}`), &doc))

		result, err := l.Backups.Import(ctx, &doc, Widgets)
		require.NoError(t, err)
		require.NoError(t, result.Err())
		require.Len(t, result.Outcomes, 1)
		assert.Equal(t, launcherprefs.StatusImported, result.Outcomes[0].Status)

		assert.Equal(t, []widgets.Placement{
			{ID: 7, Provider: widgets.Provider{Package: "p", Class: "c"}, SpanX: 2, SpanY: 1, X: 0.25, Y: 0.5},
			{ID: 9, SpanX: 1, SpanY: 1},
		}, l.Widgets.Placements())
	})

	t.Run("import_state_text", func(t *testing.T) {
		l := openTestLauncher(t, Options{})
		var doc launcherprefs.Document
		require.NoError(t, json.Unmarshal([]byte(
			`{"Widgets":{"widgets_state":"{\"widgets\":[{\"id\":3,\"provider\":\"a:b\"}]}"}}`), &doc))

		result, err := l.Backups.Import(ctx, &doc, Widgets)
		require.NoError(t, err)
		require.NoError(t, result.Err())
		assert.Equal(t, []widgets.Placement{
			{ID: 3, Provider: widgets.Provider{Package: "a", Class: "b"}, SpanX: 1, SpanY: 1},
		}, l.Widgets.Placements())
	})

	t.Run("invalid_list_fails_store", func(t *testing.T) {
		l := openTestLauncher(t, Options{})
		_, err := l.Widgets.Add(ctx, 1, widgets.Provider{}, 100, 100)
		require.NoError(t, err)

		var doc launcherprefs.Document
		require.NoError(t, json.Unmarshal([]byte(`{"Widgets":{"widgets":[{"provider":"p:c"}]}}`), &doc))
		result, err := l.Backups.Import(ctx, &doc, Widgets)
		require.NoError(t, err)

		var de *launcherprefs.DecodeError
		require.ErrorAs(t, result.Err(), &de)
		assert.Equal(t, widgets.EntryKey, de.Key)
		assert.Len(t, l.Widgets.Placements(), 1)
	})
}

package backupfile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CreativeUnicorns/launcherprefs"
)

func sampleDocument() *launcherprefs.Document {
	doc := launcherprefs.NewDocument()
	doc.Stores["Debug"] = map[string]launcherprefs.BackupValue{
		"debug_enabled": launcherprefs.BoolValue(true),
	}
	doc.Stores["Wallpaper"] = map[string]launcherprefs.BackupValue{
		"wallpaper_main_blur_radius": launcherprefs.NumberValue(4.5),
	}
	return doc
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleDocument()))
	assert.Equal(t, `{
  "Debug": {
    "debug_enabled": true
  },
  "Wallpaper": {
    "wallpaper_main_blur_radius": 4.5
  }
}
`, buf.String())
}

func TestDecode(t *testing.T) {
	t.Run("byte_order_mark", func(t *testing.T) {
		doc, err := Decode(strings.NewReader("\xef\xbb\xbf{\"Debug\":{\"debug_enabled\":false}}"))
		require.NoError(t, err)
		assert.Equal(t, []launcherprefs.StoreID{"Debug"}, doc.StoreIDs())
	})

	t.Run("not_an_object", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`[1]`))
		assert.ErrorIs(t, err, launcherprefs.ErrInvalidInput)
	})
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "backup.json")

	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))
	require.NoError(t, Write(path, sampleDocument()))

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []launcherprefs.StoreID{"Debug", "Wallpaper"}, doc.StoreIDs())
	b, ok := doc.Stores["Debug"]["debug_enabled"].Bool()
	assert.True(t, ok)
	assert.True(t, b)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFailures(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "missing", "backup.json"), sampleDocument())
	assert.ErrorIs(t, err, launcherprefs.ErrStorageUnavailable)

	_, err = Read(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, launcherprefs.ErrStorageUnavailable)
}

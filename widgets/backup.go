package widgets

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/CreativeUnicorns/launcherprefs"
)

// EntryKey names the placement list inside the Widgets backup entry.
const EntryKey = "widgets"

// BackupEntry maps the widgets store to its backup entry,
// {"widgets":[{"id":..,"provider":..,"spanX":..,"spanY":..,"x":..,"y":..}]}.
// Entries that still carry the widgets_state text are imported as is.
type BackupEntry struct{}

var _ launcherprefs.BackupMapping = BackupEntry{}

// ExportEntry replaces the widgets_state text with the structured list. An
// unreadable state is exported unchanged so that no data is lost.
func (BackupEntry) ExportEntry(values map[string]launcherprefs.BackupValue) (map[string]launcherprefs.BackupValue, error) {
	raw, ok := values[StateKey.Name()]
	if !ok {
		return values, nil
	}
	text, _ := raw.Text()
	placements, err := DecodeState([]byte(text))
	if err != nil {
		return values, nil
	}

	out := without(values, StateKey.Name())
	if len(placements) == 0 {
		return out, nil
	}
	data, err := json.Marshal(placements)
	if err != nil {
		return nil, fmt.Errorf("encode widgets: %w", err)
	}
	var list launcherprefs.BackupValue
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("encode widgets: %w", err)
	}
	out[EntryKey] = list
	return out, nil
}

// ImportEntry validates the structured list and stores it as widgets_state.
// The list wins over a widgets_state value in the same entry.
func (BackupEntry) ImportEntry(entry map[string]launcherprefs.BackupValue) (map[string]launcherprefs.BackupValue, error) {
	v, ok := entry[EntryKey]
	if !ok || v.IsNull() {
		return entry, nil
	}
	if v.Kind() != launcherprefs.BackupList {
		return nil, &launcherprefs.DecodeError{
			Key:      EntryKey,
			Expected: "List of widget records",
			Actual:   v.Kind().String(),
			Raw:      v.Raw(),
		}
	}

	doc, err := json.Marshal(map[string]launcherprefs.BackupValue{EntryKey: v})
	if err != nil {
		return nil, fmt.Errorf("encode widgets: %w", err)
	}
	placements, err := DecodeState(doc)
	if err != nil {
		var de *launcherprefs.DecodeError
		if errors.As(err, &de) {
			de.Key = EntryKey
		}
		return nil, err
	}
	encoded, err := EncodeState(placements)
	if err != nil {
		return nil, err
	}

	out := without(entry, EntryKey)
	out[StateKey.Name()] = launcherprefs.TextValue(encoded)
	return out, nil
}

func without(values map[string]launcherprefs.BackupValue, name string) map[string]launcherprefs.BackupValue {
	out := make(map[string]launcherprefs.BackupValue, len(values))
	for k, v := range values {
		if k != name {
			out[k] = v
		}
	}
	return out
}

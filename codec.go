package launcherprefs

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ToBackupValue encodes a native value for export. Bool, Int and Float keep
// their typed shape; every other kind is serialized to Text. A StringSet is
// written as the text of a JSON array.
func ToBackupValue(key PreferenceKey, native any) (BackupValue, error) {
	v, err := normalizeNative(key, native)
	if err != nil {
		return BackupValue{}, err
	}
	switch key.Kind {
	case KindBool:
		return BoolValue(v.(bool)), nil
	case KindInt:
		return IntValue(v.(int64)), nil
	case KindFloat:
		return NumberValue(v.(float64)), nil
	case KindStringSet:
		data, err := json.Marshal(v.([]string))
		if err != nil {
			return BackupValue{}, err
		}
		return TextValue(string(data)), nil
	default:
		return TextValue(v.(string)), nil
	}
}

// ExportSnapshot returns the sparse backup form of a snapshot: only keys whose
// stored value differs from the domain default are emitted.
func ExportSnapshot(def *StoreDefinition, snap Snapshot) (map[string]BackupValue, error) {
	out := make(map[string]BackupValue)
	for _, key := range def.keys {
		stored, ok := snap[key.Name]
		if !ok || valuesEqual(key.Kind, stored, key.Default) {
			continue
		}
		v, err := ToBackupValue(key, stored)
		if err != nil {
			return nil, err
		}
		out[key.Name] = v
	}
	return out, nil
}

// FromBackupValue strictly decodes a backup value into the key's canonical
// native form. Any shape that cannot be coerced yields a *DecodeError; there is
// no silent fallback to the default.
func FromBackupValue(key PreferenceKey, v BackupValue) (any, error) {
	switch key.Kind {
	case KindBool:
		return decodeBool(key, v)
	case KindInt:
		return decodeInt(key, v)
	case KindFloat:
		return decodeFloat(key, v)
	case KindString:
		if s, ok := v.Text(); ok {
			return s, nil
		}
	case KindStringSet:
		return decodeStringSet(key, v)
	case KindEnum:
		if s, ok := v.Text(); ok && slices.Contains(key.Variants, s) {
			return s, nil
		}
	}
	return nil, newDecodeError(key, v)
}

// DecodeOrDefault decodes the key from a backup map. A missing or null entry
// yields the key's default, never an error.
func DecodeOrDefault(key PreferenceKey, values map[string]BackupValue) (any, error) {
	v, ok := values[key.Name]
	if !ok || v.IsNull() {
		return key.Default, nil
	}
	return FromBackupValue(key, v)
}

func decodeBool(key PreferenceKey, v BackupValue) (any, error) {
	switch v.Kind() {
	case BackupBool:
		b, _ := v.Bool()
		return b, nil
	case BackupNumber:
		f, ok := v.Number()
		if ok {
			return f != 0, nil
		}
	case BackupText:
		s, _ := v.Text()
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes", "y", "on":
			return true, nil
		case "false", "0", "no", "n", "off":
			return false, nil
		}
	}
	return nil, newDecodeError(key, v)
}

func decodeInt(key PreferenceKey, v BackupValue) (any, error) {
	switch v.Kind() {
	case BackupNumber:
		if n, err := strconv.ParseInt(v.NumberLiteral(), 10, 64); err == nil {
			return n, nil
		}
		// Exponent or fractional notation is accepted only for integral values.
		f, ok := v.Number()
		if ok && f == math.Trunc(f) && math.Abs(f) <= 1<<53 {
			return int64(f), nil
		}
	case BackupText:
		s, _ := v.Text()
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n, nil
		}
	}
	return nil, newDecodeError(key, v)
}

func decodeFloat(key PreferenceKey, v BackupValue) (any, error) {
	var (
		f  float64
		ok bool
	)
	switch v.Kind() {
	case BackupNumber:
		f, ok = v.Number()
	case BackupText:
		s, _ := v.Text()
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		f, ok = parsed, err == nil
	}
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, newDecodeError(key, v)
	}
	return f, nil
}

func decodeStringSet(key PreferenceKey, v BackupValue) (any, error) {
	switch v.Kind() {
	case BackupList:
		items, _ := v.List()
		set := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.Text()
			if !ok {
				return nil, newDecodeError(key, v)
			}
			set = append(set, s)
		}
		return normalizeSet(set), nil
	case BackupText:
		s, _ := v.Text()
		var arr []string
		if strings.HasPrefix(strings.TrimSpace(s), "[") && json.Unmarshal([]byte(s), &arr) == nil {
			return normalizeSet(arr), nil
		}
		return []string{s}, nil
	}
	return nil, newDecodeError(key, v)
}

package launcherprefs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// BackupKind is the shape of a BackupValue.
type BackupKind int

// Backup value shapes. Export only ever produces Bool, Number and Text;
// List and Object are shapes an imported document may carry.
const (
	BackupBool BackupKind = iota + 1
	BackupNumber
	BackupText
	BackupList
	BackupObject
)

// String returns the shape name used in decode diagnostics.
func (k BackupKind) String() string {
	switch k {
	case BackupBool:
		return "Boolean"
	case BackupNumber:
		return "Number"
	case BackupText:
		return "String"
	case BackupList:
		return "List"
	case BackupObject:
		return "Object"
	default:
		return "Null"
	}
}

// BackupValue is the backup-neutral representation of one preference value.
// The zero value represents an absent (null) value.
type BackupValue struct {
	kind BackupKind
	b    bool
	num  string
	text string
	list []BackupValue
	raw  json.RawMessage
}

// BoolValue returns a boolean backup value.
func BoolValue(b bool) BackupValue {
	return BackupValue{kind: BackupBool, b: b}
}

// NumberValue returns a numeric backup value.
func NumberValue(f float64) BackupValue {
	return BackupValue{kind: BackupNumber, num: strconv.FormatFloat(f, 'g', -1, 64)}
}

// IntValue returns a numeric backup value holding an exact integer.
func IntValue(n int64) BackupValue {
	return BackupValue{kind: BackupNumber, num: strconv.FormatInt(n, 10)}
}

// TextValue returns a text backup value.
func TextValue(s string) BackupValue {
	return BackupValue{kind: BackupText, text: s}
}

// ListValue returns a sequence backup value.
func ListValue(items ...BackupValue) BackupValue {
	return BackupValue{kind: BackupList, list: items}
}

// Kind returns the value's shape; zero for an absent value.
func (v BackupValue) Kind() BackupKind { return v.kind }

// IsNull reports whether the value is absent.
func (v BackupValue) IsNull() bool { return v.kind == 0 }

// Bool returns the boolean payload.
func (v BackupValue) Bool() (bool, bool) { return v.b, v.kind == BackupBool }

// Number returns the numeric payload as a float64.
func (v BackupValue) Number() (float64, bool) {
	if v.kind != BackupNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumberLiteral returns the number exactly as it appeared in the document.
func (v BackupValue) NumberLiteral() string { return v.num }

// Text returns the text payload.
func (v BackupValue) Text() (string, bool) { return v.text, v.kind == BackupText }

// List returns the sequence payload.
func (v BackupValue) List() ([]BackupValue, bool) { return v.list, v.kind == BackupList }

// Raw returns the payload as a plain Go value for diagnostics.
func (v BackupValue) Raw() any {
	switch v.kind {
	case BackupBool:
		return v.b
	case BackupNumber:
		return json.Number(v.num)
	case BackupText:
		return v.text
	case BackupList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Raw()
		}
		return out
	case BackupObject:
		return string(v.raw)
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (v BackupValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case BackupBool:
		return json.Marshal(v.b)
	case BackupNumber:
		return []byte(v.num), nil
	case BackupText:
		return json.Marshal(v.text)
	case BackupList:
		items := v.list
		if items == nil {
			items = []BackupValue{}
		}
		return json.Marshal(items)
	case BackupObject:
		return v.raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Numbers keep their literal text
// so that integers beyond float64 precision survive a round trip.
func (v *BackupValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return fmt.Errorf("decode backup value: %w", err)
	}
	decoded, err := backupValueOf(x)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func backupValueOf(x any) (BackupValue, error) {
	switch t := x.(type) {
	case nil:
		return BackupValue{}, nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		return BackupValue{kind: BackupNumber, num: t.String()}, nil
	case string:
		return TextValue(t), nil
	case []any:
		items := make([]BackupValue, len(t))
		for i, item := range t {
			iv, err := backupValueOf(item)
			if err != nil {
				return BackupValue{}, err
			}
			items[i] = iv
		}
		return ListValue(items...), nil
	case map[string]any:
		raw, err := json.Marshal(t)
		if err != nil {
			return BackupValue{}, fmt.Errorf("encode object value: %w", err)
		}
		return BackupValue{kind: BackupObject, raw: raw}, nil
	default:
		return BackupValue{}, fmt.Errorf("%w: unsupported JSON value %T", ErrInvalidValue, x)
	}
}

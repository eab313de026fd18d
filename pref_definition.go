package launcherprefs

// ValueKind identifies the native type held by a preference key.
// A key's kind is fixed for the lifetime of the schema; changing it is a
// breaking migration.
type ValueKind int

// Supported value kinds.
const (
	// KindBool is a boolean flag.
	KindBool ValueKind = iota + 1
	// KindInt is a 64-bit signed integer.
	KindInt
	// KindFloat is a 64-bit floating point number.
	KindFloat
	// KindString is free text.
	KindString
	// KindStringSet is an unordered set of strings, stored sorted and de-duplicated.
	KindStringSet
	// KindEnum is one of a fixed list of case-sensitive variant names.
	KindEnum
)

// String returns the human readable kind name used in diagnostics.
func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "Boolean"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindStringSet:
		return "StringSet"
	case KindEnum:
		return "Enum"
	default:
		return "Unknown"
	}
}

func (k ValueKind) valid() bool {
	return k >= KindBool && k <= KindEnum
}

// MarshalText implements encoding.TextMarshaler.
func (k ValueKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

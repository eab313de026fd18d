// errors.go
package launcherprefs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidInput       = errors.New("invalid input parameters")
	ErrInvalidKey         = errors.New("invalid preference key")
	ErrInvalidKind        = errors.New("invalid preference kind")
	ErrInvalidValue       = errors.New("invalid preference value")
	ErrNotFound           = errors.New("preference not found")
	ErrUnknownKey         = errors.New("preference not defined")
	ErrUnknownStore       = errors.New("store not registered")
	ErrDuplicateKey       = errors.New("duplicate preference key")
	ErrDuplicateStore     = errors.New("store already registered")
	ErrKindMismatch       = errors.New("preference kind mismatch")
	ErrStorageUnavailable = errors.New("storage backend unavailable")
	ErrCacheUnavailable   = errors.New("cache backend unavailable")
	ErrDecodeTypeMismatch = errors.New("backup value type mismatch")
)

// DecodeError reports a backup value whose shape cannot be coerced to the
// expected kind. It matches ErrDecodeTypeMismatch with errors.Is.
type DecodeError struct {
	// Key is the preference key name, or the store ID when a whole store
	// entry has the wrong shape.
	Key string
	// Expected describes the expected kind, including enum variants.
	Expected string
	// Actual describes the shape found in the backup.
	Actual string
	// Raw is the offending value as found in the backup.
	Raw any
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: key %q expected %s but found %s (%v)",
		ErrDecodeTypeMismatch, e.Key, e.Expected, e.Actual, e.Raw)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecodeTypeMismatch
}

func newDecodeError(key PreferenceKey, v BackupValue) *DecodeError {
	expected := key.Kind.String()
	if key.Kind == KindEnum {
		expected = fmt.Sprintf("Enum(one of %s)", strings.Join(key.Variants, ", "))
	}
	return &DecodeError{
		Key:      key.Name,
		Expected: expected,
		Actual:   v.Kind().String(),
		Raw:      v.Raw(),
	}
}

func storageError(store StoreID, op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrStorageUnavailable, op, store, err)
}

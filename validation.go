// validation.go
package launcherprefs

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

func validateDefinition(k PreferenceKey) error {
	if k.Name == "" {
		return ErrInvalidKey
	}
	if !k.Kind.valid() {
		return fmt.Errorf("%w: %s", ErrInvalidKind, k.Name)
	}
	if k.Kind == KindEnum {
		if len(k.Variants) == 0 {
			return fmt.Errorf("%w: enum %s has no variants", ErrInvalidValue, k.Name)
		}
		seen := make(map[string]bool, len(k.Variants))
		for _, v := range k.Variants {
			if seen[v] {
				return fmt.Errorf("%w: enum %s repeats variant %q", ErrInvalidValue, k.Name, v)
			}
			seen[v] = true
		}
	}
	if _, err := normalizeNative(k, k.Default); err != nil {
		return fmt.Errorf("default of %s: %w", k.Name, err)
	}
	return nil
}

// normalizeNative checks that value matches the key's kind and returns its
// canonical stored form: int64 for Int, float64 for Float, sorted unique
// []string for StringSet.
func normalizeNative(k PreferenceKey, value any) (any, error) {
	switch k.Kind {
	case KindBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
		return nil, fmt.Errorf("%w: %s expected boolean", ErrInvalidValue, k.Name)
	case KindInt:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case int64:
			return v, nil
		}
		return nil, fmt.Errorf("%w: %s expected integer", ErrInvalidValue, k.Name)
	case KindFloat:
		switch v := value.(type) {
		case float32:
			v64 := float64(v)
			if math.IsNaN(v64) || math.IsInf(v64, 0) {
				return nil, fmt.Errorf("%w: %s is not finite", ErrInvalidValue, k.Name)
			}
			return v64, nil
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s is not finite", ErrInvalidValue, k.Name)
			}
			return v, nil
		}
		return nil, fmt.Errorf("%w: %s expected number", ErrInvalidValue, k.Name)
	case KindString:
		if s, ok := value.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("%w: %s expected string", ErrInvalidValue, k.Name)
	case KindStringSet:
		if s, ok := value.([]string); ok {
			return normalizeSet(s), nil
		}
		return nil, fmt.Errorf("%w: %s expected string set", ErrInvalidValue, k.Name)
	case KindEnum:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expected enum name", ErrInvalidValue, k.Name)
		}
		if !slices.Contains(k.Variants, s) {
			return nil, fmt.Errorf("%w: %s has no variant %q", ErrInvalidValue, k.Name, s)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidKind, k.Name)
	}
}

func normalizeSet(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// valuesEqual compares two canonical native values of the same kind.
func valuesEqual(kind ValueKind, a, b any) bool {
	if kind == KindStringSet {
		as, _ := a.([]string)
		bs, _ := b.([]string)
		return slices.Equal(as, bs)
	}
	return a == b
}

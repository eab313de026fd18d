// Package launcherprefs defines the core types used by the settings stores.
package launcherprefs

import (
	"fmt"
	"time"
)

// StoreID is the stable backup identifier of a store (e.g. "Debug", "Widgets").
// Identifiers key the store inside a backup document and must never be renamed
// across versions.
type StoreID string

// PreferenceKey describes a single typed key of a store.
// Keys are unique per store and immutable once defined.
type PreferenceKey struct {
	// Name is the persisted key name, also used inside backup documents.
	Name string `json:"name"`
	// Kind is the native value type of the key.
	Kind ValueKind `json:"kind"`
	// Default is returned whenever the key is absent from the store.
	// Its Go type must match Kind: bool, int64, float64, string or []string.
	Default any `json:"default,omitempty"`
	// Variants lists the valid names of an Enum key (case-sensitive).
	Variants []string `json:"variants,omitempty"`
	// Encrypted marks a value that is encrypted at rest when the registry has
	// an Encryptor configured.
	Encrypted bool `json:"encrypted,omitempty"`
}

// Definer is implemented by typed keys so that store schemas can be declared
// from the same values callers use to read and write.
type Definer interface {
	Definition() PreferenceKey
}

// Definition returns the key itself.
func (k PreferenceKey) Definition() PreferenceKey {
	return k
}

// Key is a typed handle on a PreferenceKey. It converts between the caller's
// Go type T and the store's native representation.
type Key[T any] struct {
	def  PreferenceKey
	from func(any) T
	to   func(T) any
}

// Name returns the persisted key name.
func (k Key[T]) Name() string { return k.def.Name }

// Definition returns the untyped key description.
func (k Key[T]) Definition() PreferenceKey { return k.def }

// Default returns the key's default value.
func (k Key[T]) Default() T { return k.from(k.def.Default) }

// Sensitive returns a copy of the key that is encrypted at rest.
func (k Key[T]) Sensitive() Key[T] {
	k.def.Encrypted = true
	return k
}

// BoolKey declares a boolean key.
func BoolKey(name string, def bool) Key[bool] {
	return Key[bool]{
		def:  PreferenceKey{Name: name, Kind: KindBool, Default: def},
		from: func(v any) bool { b, _ := v.(bool); return b },
		to:   func(v bool) any { return v },
	}
}

// IntKey declares an integer key.
func IntKey(name string, def int64) Key[int64] {
	return Key[int64]{
		def:  PreferenceKey{Name: name, Kind: KindInt, Default: def},
		from: func(v any) int64 { n, _ := v.(int64); return n },
		to:   func(v int64) any { return v },
	}
}

// FloatKey declares a floating point key.
func FloatKey(name string, def float64) Key[float64] {
	return Key[float64]{
		def:  PreferenceKey{Name: name, Kind: KindFloat, Default: def},
		from: func(v any) float64 { f, _ := v.(float64); return f },
		to:   func(v float64) any { return v },
	}
}

// StringKey declares a text key.
func StringKey(name, def string) Key[string] {
	return Key[string]{
		def:  PreferenceKey{Name: name, Kind: KindString, Default: def},
		from: func(v any) string { s, _ := v.(string); return s },
		to:   func(v string) any { return v },
	}
}

// StringSetKey declares a string set key. The default set may be empty.
func StringSetKey(name string, def ...string) Key[[]string] {
	return Key[[]string]{
		def: PreferenceKey{Name: name, Kind: KindStringSet, Default: normalizeSet(def)},
		from: func(v any) []string {
			s, _ := v.([]string)
			out := make([]string, len(s))
			copy(out, s)
			return out
		},
		to: func(v []string) any { return normalizeSet(v) },
	}
}

// EnumKey declares an enum key over the given variants. The default must be
// one of the variants; DefineStore reports it otherwise.
func EnumKey[E ~string](name string, def E, variants ...E) Key[E] {
	names := make([]string, len(variants))
	for i, v := range variants {
		names[i] = string(v)
	}
	return Key[E]{
		def:  PreferenceKey{Name: name, Kind: KindEnum, Default: string(def), Variants: names},
		from: func(v any) E { s, _ := v.(string); return E(s) },
		to:   func(v E) any { return string(v) },
	}
}

// StoreDefinition is the schema of one settings store.
type StoreDefinition struct {
	// ID is the stable backup identifier.
	ID StoreID
	// NoBackup excludes the store from backup export and import.
	NoBackup bool

	keys    []PreferenceKey
	index   map[string]int
	mapping BackupMapping
}

// BackupMapping translates between a store's per-key backup values and the
// shape of its entry in a backup document, for stores whose entry is not one
// value per key.
type BackupMapping interface {
	// ExportEntry turns the sparse per-key export into the document entry.
	ExportEntry(values map[string]BackupValue) (map[string]BackupValue, error)
	// ImportEntry turns a document entry back into per-key values, which are
	// then decoded strictly. Failures should be *DecodeError.
	ImportEntry(entry map[string]BackupValue) (map[string]BackupValue, error)
}

// DefineStore validates the given keys and returns the store schema.
// Key names must be unique within the store.
func DefineStore(id StoreID, keys ...Definer) (*StoreDefinition, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty store id", ErrInvalidInput)
	}
	def := &StoreDefinition{
		ID:    id,
		keys:  make([]PreferenceKey, 0, len(keys)),
		index: make(map[string]int, len(keys)),
	}
	for _, k := range keys {
		pk := k.Definition()
		if err := validateDefinition(pk); err != nil {
			return nil, fmt.Errorf("store %s: %w", id, err)
		}
		if _, dup := def.index[pk.Name]; dup {
			return nil, fmt.Errorf("store %s: %w: %s", id, ErrDuplicateKey, pk.Name)
		}
		def.index[pk.Name] = len(def.keys)
		def.keys = append(def.keys, pk)
	}
	return def, nil
}

// MustDefineStore is like DefineStore but panics on an invalid schema.
// It is intended for package-level schema declarations.
func MustDefineStore(id StoreID, keys ...Definer) *StoreDefinition {
	def, err := DefineStore(id, keys...)
	if err != nil {
		panic(err)
	}
	return def
}

// WithoutBackup marks the store as excluded from backups and returns it.
func (d *StoreDefinition) WithoutBackup() *StoreDefinition {
	d.NoBackup = true
	return d
}

// WithBackupMapping installs m as the store's backup entry mapping and
// returns the definition.
func (d *StoreDefinition) WithBackupMapping(m BackupMapping) *StoreDefinition {
	d.mapping = m
	return d
}

// Keys returns the store's keys in declaration order.
func (d *StoreDefinition) Keys() []PreferenceKey {
	out := make([]PreferenceKey, len(d.keys))
	copy(out, d.keys)
	return out
}

// Lookup returns the key with the given name.
func (d *StoreDefinition) Lookup(name string) (PreferenceKey, bool) {
	i, ok := d.index[name]
	if !ok {
		return PreferenceKey{}, false
	}
	return d.keys[i], true
}

// Snapshot maps key names to native stored values. Absent keys hold their
// domain default.
type Snapshot map[string]any

// Config holds the internal configuration for a Registry instance.
// It is populated by applying functional Options when a Registry is created
// with New().
type Config struct {
	// storage is the persistence layer implementation.
	storage Storage
	// cache is the optional snapshot cache.
	cache Cache
	// cacheTTL bounds how long a cached snapshot is trusted.
	cacheTTL time.Duration
	// logger is used by the registry and every store it opens.
	logger Logger
	// encryptor encrypts values of keys marked Encrypted.
	encryptor Encryptor
}

// Option configures a Registry.
type Option func(*Config)

// WithStorage sets the Storage backend used to persist every store.
// This option is mandatory.
func WithStorage(s Storage) Option {
	return func(c *Config) {
		c.storage = s
	}
}

// WithCache sets an optional snapshot cache consulted before Storage when a
// store is opened, and written through on every commit.
func WithCache(cache Cache) Option {
	return func(c *Config) {
		c.cache = cache
	}
}

// WithCacheTTL overrides the default 24h cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Config) {
		c.cacheTTL = ttl
	}
}

// WithLogger sets the Logger. If not set, NewDefaultLogger is used.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.logger = l
	}
}

// WithEncryption sets the Encryptor used for keys marked Encrypted.
// Without it, encrypted keys are persisted in clear text.
func WithEncryption(e Encryptor) Option {
	return func(c *Config) {
		c.encryptor = e
	}
}

package launcherprefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const cacheKeyPrefix = "launcherprefs:store:"

// Store is one persisted settings domain. Reads are lock-free snapshots;
// writes run as whole-store transactions serialized by a per-store lock, so
// writers on different stores never block each other.
type Store struct {
	def      *StoreDefinition
	storage  Storage
	cache    Cache
	cacheTTL time.Duration
	enc      Encryptor
	logger   Logger

	mu   sync.Mutex // serializes transactions
	snap atomic.Pointer[Snapshot]
	hub  *broadcaster
}

func openStore(ctx context.Context, def *StoreDefinition, cfg *Config) (*Store, error) {
	s := &Store{
		def:      def,
		storage:  cfg.storage,
		cache:    cfg.cache,
		cacheTTL: cfg.cacheTTL,
		enc:      cfg.encryptor,
		logger:   cfg.logger,
		hub:      newBroadcaster(),
	}

	raw, err := s.loadRaw(ctx)
	if err != nil {
		return nil, err
	}
	snap := s.decodeRaw(raw)
	s.snap.Store(&snap)
	return s, nil
}

// ID returns the store's backup identifier.
func (s *Store) ID() StoreID { return s.def.ID }

// Definition returns the store schema.
func (s *Store) Definition() *StoreDefinition { return s.def }

// Snapshot returns a copy of the stored values. Keys holding their default are
// absent.
func (s *Store) Snapshot() Snapshot {
	return copySnapshot(*s.snap.Load())
}

// Value returns the current value of the named key, or its default.
func (s *Store) Value(name string) (any, error) {
	key, ok := s.def.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownKey, s.def.ID, name)
	}
	return copyValue(effective(key, *s.snap.Load())), nil
}

// Observe returns an Observable over the whole snapshot.
func (s *Store) Observe() *Observable[Snapshot] {
	return NewObservable(s, s.Snapshot)
}

// Update runs fn inside a transaction. The transaction commits every mutation
// fn made, or none of them if fn or the storage commit fails.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &Tx{def: s.def, base: *s.snap.Load(), changes: make(map[string]change)}
	if err := fn(tx); err != nil {
		return err
	}

	next, batch, err := s.prepare(tx)
	if err != nil {
		return err
	}
	if batch.Empty() {
		return nil
	}

	if err := s.storage.Commit(ctx, s.def.ID, batch); err != nil {
		return storageError(s.def.ID, "commit", err)
	}

	s.snap.Store(&next)
	s.writeCache(ctx, next)
	s.hub.publish()

	s.logger.Debug("Committed store transaction",
		"store", s.def.ID,
		"put", len(batch.Put),
		"delete", len(batch.Delete))
	return nil
}

// ResetAll atomically reverts every key of the store to its default.
func (s *Store) ResetAll(ctx context.Context) error {
	return s.Update(ctx, func(tx *Tx) error {
		tx.Clear()
		return nil
	})
}

// ExportBackup returns the sparse backup form of the store, shaped by the
// definition's BackupMapping if it has one.
func (s *Store) ExportBackup() (map[string]BackupValue, error) {
	values, err := ExportSnapshot(s.def, *s.snap.Load())
	if err != nil || s.def.mapping == nil {
		return values, err
	}
	return s.def.mapping.ExportEntry(values)
}

// ImportBackup strictly decodes values, after the definition's BackupMapping
// if it has one, and merges them into the store in one transaction. Keys absent from values are left untouched; unknown keys are
// ignored. The first decode failure aborts the whole import and is returned as
// a *DecodeError. It returns the number of keys applied.
func (s *Store) ImportBackup(ctx context.Context, values map[string]BackupValue) (int, error) {
	if s.def.mapping != nil {
		mapped, err := s.def.mapping.ImportEntry(values)
		if err != nil {
			return 0, err
		}
		values = mapped
	}

	applied := 0
	err := s.Update(ctx, func(tx *Tx) error {
		applied = 0
		for _, key := range s.def.keys {
			v, ok := values[key.Name]
			if !ok || v.IsNull() {
				continue
			}
			native, err := FromBackupValue(key, v)
			if err != nil {
				return err
			}
			if err := tx.Set(key.Name, native); err != nil {
				return err
			}
			applied++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for name := range values {
		if _, ok := s.def.Lookup(name); !ok {
			s.logger.Debug("Ignoring unknown backup key", "store", s.def.ID, "key", name)
		}
	}
	return applied, nil
}

func (s *Store) prepare(tx *Tx) (Snapshot, Batch, error) {
	next := copySnapshot(tx.base)
	batch := Batch{Put: make(map[string]json.RawMessage)}

	for name, c := range tx.changes {
		if c.remove {
			if _, ok := next[name]; ok {
				delete(next, name)
				batch.Delete = append(batch.Delete, name)
			}
			continue
		}
		key, _ := s.def.Lookup(name)
		raw, err := s.encodeValue(key, c.value)
		if err != nil {
			return nil, Batch{}, err
		}
		next[name] = c.value
		batch.Put[name] = raw
	}
	return next, batch, nil
}

func (s *Store) encodeValue(key PreferenceKey, native any) (json.RawMessage, error) {
	data, err := json.Marshal(native)
	if err != nil {
		return nil, fmt.Errorf("encode %s.%s: %w", s.def.ID, key.Name, err)
	}
	if !key.Encrypted || s.enc == nil {
		return data, nil
	}
	sealed, err := s.enc.Encrypt(string(data))
	if err != nil {
		return nil, fmt.Errorf("encrypt %s.%s: %w", s.def.ID, key.Name, err)
	}
	return json.Marshal(sealed)
}

func (s *Store) decodeValue(key PreferenceKey, raw json.RawMessage) (any, error) {
	if key.Encrypted && s.enc != nil {
		var sealed string
		if err := json.Unmarshal(raw, &sealed); err != nil {
			return nil, err
		}
		plain, err := s.enc.Decrypt(sealed)
		if err != nil {
			return nil, err
		}
		raw = json.RawMessage(plain)
	}
	var v BackupValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return FromBackupValue(key, v)
}

func (s *Store) decodeRaw(raw map[string]json.RawMessage) Snapshot {
	snap := make(Snapshot, len(raw))
	for name, data := range raw {
		key, ok := s.def.Lookup(name)
		if !ok {
			s.logger.Warn("Ignoring persisted value for unknown key", "store", s.def.ID, "key", name)
			continue
		}
		v, err := s.decodeValue(key, data)
		if err != nil {
			s.logger.Warn("Falling back to default for undecodable value",
				"store", s.def.ID, "key", name, "error", err)
			continue
		}
		snap[name] = v
	}
	return snap
}

func (s *Store) loadRaw(ctx context.Context) (map[string]json.RawMessage, error) {
	if s.cache != nil {
		data, err := s.cache.Get(ctx, cacheKeyPrefix+string(s.def.ID))
		switch {
		case err == nil:
			var raw map[string]json.RawMessage
			if jerr := json.Unmarshal(data, &raw); jerr == nil {
				return raw, nil
			} else {
				s.logger.Warn("Discarding undecodable cached snapshot", "store", s.def.ID, "error", jerr)
			}
		case !errors.Is(err, ErrNotFound):
			s.logger.Warn("Snapshot cache unavailable", "store", s.def.ID, "error", err)
		}
	}

	raw, err := s.storage.Load(ctx, s.def.ID)
	if err != nil {
		return nil, storageError(s.def.ID, "load", err)
	}
	if s.cache != nil {
		s.putCache(ctx, raw)
	}
	return raw, nil
}

func (s *Store) writeCache(ctx context.Context, snap Snapshot) {
	if s.cache == nil {
		return
	}
	raw := make(map[string]json.RawMessage, len(snap))
	for name, v := range snap {
		key, _ := s.def.Lookup(name)
		data, err := s.encodeValue(key, v)
		if err != nil {
			s.dropCache(ctx, err)
			return
		}
		raw[name] = data
	}
	s.putCache(ctx, raw)
}

func (s *Store) putCache(ctx context.Context, raw map[string]json.RawMessage) {
	data, err := json.Marshal(raw)
	if err != nil {
		s.dropCache(ctx, err)
		return
	}
	if err := s.cache.Set(ctx, cacheKeyPrefix+string(s.def.ID), data, s.cacheTTL); err != nil {
		s.dropCache(ctx, err)
	}
}

// dropCache evicts the cached snapshot so a stale copy is never served.
func (s *Store) dropCache(ctx context.Context, cause error) {
	s.logger.Error("Failed to cache store snapshot", "store", s.def.ID, "error", cause)
	if err := s.cache.Delete(ctx, cacheKeyPrefix+string(s.def.ID)); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Error("Failed to evict store snapshot", "store", s.def.ID, "error", err)
	}
}

type change struct {
	value  any
	remove bool
}

// Tx is an open store transaction. It is only valid inside Update.
type Tx struct {
	def     *StoreDefinition
	base    Snapshot
	changes map[string]change
}

// Set stages a new value for the named key after checking it against the key's kind.
func (tx *Tx) Set(name string, value any) error {
	key, ok := tx.def.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownKey, tx.def.ID, name)
	}
	v, err := normalizeNative(key, value)
	if err != nil {
		return err
	}
	tx.changes[name] = change{value: v}
	return nil
}

// Remove stages the named key's reversion to its default.
func (tx *Tx) Remove(name string) error {
	if _, ok := tx.def.Lookup(name); !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownKey, tx.def.ID, name)
	}
	tx.changes[name] = change{remove: true}
	return nil
}

// Clear stages the reversion of every key to its default.
func (tx *Tx) Clear() {
	for _, key := range tx.def.keys {
		tx.changes[key.Name] = change{remove: true}
	}
}

// Value returns the value of the named key as seen inside the transaction.
func (tx *Tx) Value(name string) (any, error) {
	key, ok := tx.def.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownKey, tx.def.ID, name)
	}
	if c, ok := tx.changes[name]; ok {
		if c.remove {
			return copyValue(key.Default), nil
		}
		return copyValue(c.value), nil
	}
	return copyValue(effective(key, tx.base)), nil
}

// Get returns the current value of a typed key.
func Get[T any](s *Store, k Key[T]) (T, error) {
	if err := checkKey(s.def, k.def); err != nil {
		var zero T
		return zero, err
	}
	return k.from(effective(k.def, *s.snap.Load())), nil
}

// Observe returns an Observable over a typed key.
func Observe[T any](s *Store, k Key[T]) (*Observable[T], error) {
	if err := checkKey(s.def, k.def); err != nil {
		return nil, err
	}
	return NewObservable(s, func() T {
		return k.from(effective(k.def, *s.snap.Load()))
	}), nil
}

// Set writes a typed key in its own transaction.
func Set[T any](ctx context.Context, s *Store, k Key[T], v T) error {
	return s.Update(ctx, func(tx *Tx) error {
		return Put(tx, k, v)
	})
}

// Put stages a typed key inside a transaction.
func Put[T any](tx *Tx, k Key[T], v T) error {
	if err := checkKey(tx.def, k.def); err != nil {
		return err
	}
	return tx.Set(k.def.Name, k.to(v))
}

// Read returns a typed key's value as seen inside a transaction.
func Read[T any](tx *Tx, k Key[T]) (T, error) {
	if err := checkKey(tx.def, k.def); err != nil {
		var zero T
		return zero, err
	}
	v, err := tx.Value(k.def.Name)
	if err != nil {
		var zero T
		return zero, err
	}
	return k.from(v), nil
}

func checkKey(def *StoreDefinition, k PreferenceKey) error {
	known, ok := def.Lookup(k.Name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownKey, def.ID, k.Name)
	}
	if known.Kind != k.Kind {
		return fmt.Errorf("%w: %s.%s is %s, not %s", ErrKindMismatch, def.ID, k.Name, known.Kind, k.Kind)
	}
	return nil
}

func effective(key PreferenceKey, snap Snapshot) any {
	if v, ok := snap[key.Name]; ok {
		return v
	}
	return key.Default
}

func copyValue(v any) any {
	if s, ok := v.([]string); ok {
		out := make([]string, len(s))
		copy(out, s)
		return out
	}
	return v
}

func copySnapshot(in Snapshot) Snapshot {
	out := make(Snapshot, len(in))
	for k, v := range in {
		out[k] = copyValue(v)
	}
	return out
}

package launcherprefs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const defaultCacheTTL = 24 * time.Hour

// Registry owns the store instances of one settings root, keyed by StoreID and
// kept in registration order. That order is the order backups are exported in.
type Registry struct {
	mu     sync.RWMutex
	config *Config
	stores map[StoreID]*Store
	order  []StoreID
}

// New returns a Registry configured by opts. WithStorage is required before
// any store can be registered.
func New(opts ...Option) *Registry {
	cfg := &Config{
		logger:   NewDefaultLogger(),
		cacheTTL: defaultCacheTTL,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Registry{
		config: cfg,
		stores: make(map[StoreID]*Store),
	}
}

// Logger returns the registry's logger.
func (r *Registry) Logger() Logger {
	return r.config.logger
}

// Register opens the store described by def, loading its persisted snapshot.
func (r *Registry) Register(ctx context.Context, def *StoreDefinition) (*Store, error) {
	if def == nil || def.ID == "" {
		return nil, ErrInvalidInput
	}
	if r.config.storage == nil {
		return nil, fmt.Errorf("%w: no storage configured", ErrStorageUnavailable)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stores[def.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateStore, def.ID)
	}

	s, err := openStore(ctx, def, r.config)
	if err != nil {
		return nil, err
	}

	r.stores[def.ID] = s
	r.order = append(r.order, def.ID)
	r.config.logger.Debug("Registered store", "store", def.ID, "keys", len(def.keys), "backup", !def.NoBackup)
	return s, nil
}

// Store returns the registered store with the given id.
func (r *Registry) Store(id StoreID) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStore, id)
	}
	return s, nil
}

// Stores returns every registered store in registration order.
func (r *Registry) Stores() []*Store {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Store, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.stores[id])
	}
	return out
}

// Close releases the storage and cache backends.
func (r *Registry) Close() error {
	var errs []error
	if r.config.cache != nil {
		if err := r.config.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if r.config.storage != nil {
		if err := r.config.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Package launcherprefs defines interfaces for storage, caching and encryption used by the stores.
package launcherprefs

import (
	"context"
	"encoding/json"
	"time"
)

// Batch is one atomic store mutation: every Put and Delete is applied or none.
type Batch struct {
	// Put maps key names to their JSON-encoded native values.
	Put map[string]json.RawMessage
	// Delete lists key names reverted to their defaults.
	Delete []string
}

// Empty reports whether the batch carries no mutation.
func (b Batch) Empty() bool {
	return len(b.Put) == 0 && len(b.Delete) == 0
}

// Storage defines the methods required for a persistence backend.
// Implementations must apply a Batch atomically.
type Storage interface {
	Load(ctx context.Context, store StoreID) (map[string]json.RawMessage, error)
	Commit(ctx context.Context, store StoreID, batch Batch) error
	Close() error
}

// Cache defines the methods required for a snapshot cache backend.
// A miss is reported as ErrNotFound.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Encryptor encrypts values of keys marked Encrypted before they reach Storage.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

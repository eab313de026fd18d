package launcherprefs

import (
	"github.com/CreativeUnicorns/launcherprefs/encryption"
)

// EncryptionAdapter adapts encryption.Manager to the Encryptor interface so
// sensitive keys (such as the auto-backup target) are sealed at rest.
type EncryptionAdapter struct {
	manager *encryption.Manager
}

// NewEncryptionAdapter reads the key from LAUNCHERPREFS_ENCRYPTION_KEY and
// fails fast if it is missing or too short.
func NewEncryptionAdapter() (*EncryptionAdapter, error) {
	manager, err := encryption.NewManager()
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{manager: manager}, nil
}

// NewEncryptionAdapterWithKey creates an adapter with a provided key.
func NewEncryptionAdapterWithKey(key []byte) (*EncryptionAdapter, error) {
	manager, err := encryption.NewManagerWithKey(key)
	if err != nil {
		return nil, err
	}
	return &EncryptionAdapter{manager: manager}, nil
}

// Encrypt implements Encryptor.
func (e *EncryptionAdapter) Encrypt(plaintext string) (string, error) {
	return e.manager.Encrypt(plaintext)
}

// Decrypt implements Encryptor.
func (e *EncryptionAdapter) Decrypt(ciphertext string) (string, error) {
	return e.manager.Decrypt(ciphertext)
}

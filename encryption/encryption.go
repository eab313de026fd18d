// Package encryption seals sensitive launcher settings at rest with
// AES-256-GCM. The key material is read from the environment and stretched
// to a 256-bit key with SHA-256.
package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// MinKeyLength is the minimum length of the key material in bytes.
	MinKeyLength = 32
	// EnvKeyName is the environment variable holding the key material.
	EnvKeyName = "LAUNCHERPREFS_ENCRYPTION_KEY"
)

var (
	ErrInvalidKeyLength  = errors.New("encryption key must be at least 32 bytes")
	ErrKeyNotFound       = errors.New("encryption key not found in environment variable " + EnvKeyName)
	ErrEncryptionFailed  = errors.New("encryption operation failed")
	ErrDecryptionFailed  = errors.New("decryption operation failed")
	ErrInvalidCiphertext = errors.New("invalid ciphertext: too short or malformed")
)

// Manager encrypts and decrypts setting values.
type Manager struct {
	key  []byte
	aead cipher.AEAD
}

// NewManager creates a Manager from the key material in EnvKeyName.
func NewManager() (*Manager, error) {
	if err := ValidateKey(); err != nil {
		return nil, err
	}
	return NewManagerWithKey([]byte(os.Getenv(EnvKeyName)))
}

// NewManagerWithKey creates a Manager from the given key material.
func NewManagerWithKey(material []byte) (*Manager, error) {
	if err := checkLength(material); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(material)
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("%w: create cipher: %v", ErrEncryptionFailed, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: create GCM: %v", ErrEncryptionFailed, err)
	}

	return &Manager{key: sum[:], aead: aead}, nil
}

// Encrypt returns the base64 encoding of nonce||ciphertext.
// The empty string encrypts to itself.
func (m *Manager) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, m.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("%w: generate nonce: %v", ErrEncryptionFailed, err)
	}

	sealed := m.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt.
func (m *Manager) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", ErrDecryptionFailed, err)
	}

	n := m.aead.NonceSize()
	if len(sealed) < n+m.aead.Overhead() {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := m.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	return string(plaintext), nil
}

// ValidateKey checks the key material in the environment without building a
// Manager, so binaries can fail at startup.
func ValidateKey() error {
	material := os.Getenv(EnvKeyName)
	if material == "" {
		return ErrKeyNotFound
	}
	return checkLength([]byte(material))
}

func checkLength(material []byte) error {
	if len(material) < MinKeyLength {
		return fmt.Errorf("%w: got %d bytes, need at least %d", ErrInvalidKeyLength, len(material), MinKeyLength)
	}
	return nil
}

package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/taskboard/internal/model"
)

// Vault stores secrets in the system keyring.
type Vault struct {
	ring keyring.Keyring
}

// OpenVault returns a Vault backed by the best available OS keyring,
// falling back to an encrypted file under cfg.KeyringDir.
func OpenVault(cfg model.SessionConfig) (*Vault, error) {
	backends := []keyring.BackendType{
		keyring.KeychainBackend,
		keyring.SecretServiceBackend,
		keyring.WinCredBackend,
		keyring.PassBackend,
		keyring.FileBackend,
	}
	switch cfg.KeyringBackend {
	case "":
	case "file":
		backends = []keyring.BackendType{keyring.FileBackend}
	default:
		return nil, fmt.Errorf("unknown keyring backend %q", cfg.KeyringBackend)
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              cfg.KeyringService,
		AllowedBackends:          backends,
		FileDir:                  cfg.KeyringDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(cfg.KeyringService + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Vault{ring: ring}, nil
}

// NewVault wraps an existing keyring, e.g. keyring.NewArrayKeyring in tests.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Get retrieves a credential value by key. A missing key yields ErrNoToken.
func (v *Vault) Get(key string) (string, error) {
	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key.
func (v *Vault) Set(key string, value string) error {
	err := v.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "taskboard session",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key. Deleting a missing key is not an error.
func (v *Vault) Delete(key string) error {
	err := v.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

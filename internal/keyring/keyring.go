package keyring

import (
	"context"
	"errors"
	"fmt"

	"github.com/illarion/passlane/internal/core"
	"github.com/zalando/go-keyring"
)

const masterService = "passlane"

// Store mirrors credentials into the OS keyring. Each credential becomes an
// entry with the record's service as keyring service and its username as
// account.
type Store struct{}

// New creates a keyring-backed secret store
func New() *Store {
	return &Store{}
}

// Set stores a password in the OS keyring
func (s *Store) Set(ctx context.Context, service, username, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := keyring.Set(service, username, password); err != nil {
		return fmt.Errorf("keyring set %s: %w", service, err)
	}
	return nil
}

// Get retrieves a password from the OS keyring
func (s *Store) Get(ctx context.Context, service, username string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	password, err := keyring.Get(service, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", core.ErrSecretNotFound
		}
		return "", fmt.Errorf("keyring get %s: %w", service, err)
	}
	return password, nil
}

// Delete removes a password from the OS keyring
func (s *Store) Delete(ctx context.Context, service, username string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := keyring.Delete(service, username); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return core.ErrSecretNotFound
		}
		return fmt.Errorf("keyring delete %s: %w", service, err)
	}
	return nil
}

// SaveMasterPassword stores the master password of a vault in the OS keyring
func SaveMasterPassword(vaultID string, password string) error {
	return keyring.Set(masterService, vaultID, password)
}

// GetMasterPassword retrieves the master password of a vault
func GetMasterPassword(vaultID string) (string, error) {
	return keyring.Get(masterService, vaultID)
}

// DeleteMasterPassword removes the master password of a vault
func DeleteMasterPassword(vaultID string) error {
	return keyring.Delete(masterService, vaultID)
}

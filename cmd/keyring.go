package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/passlane/internal/core"
	"github.com/illarion/passlane/internal/crypto"
	"github.com/illarion/passlane/internal/keyring"
)

func vaultIDOrExit(ctx context.Context, env *Env) string {
	status, err := env.Store.Status(ctx)
	if err != nil {
		HandleError(err)
	}
	if !status.Exists || status.VaultID == "" {
		fmt.Fprintln(os.Stderr, "Error: no vault yet")
		fmt.Fprintln(os.Stderr, "Run 'passlane save' to create one")
		os.Exit(1)
	}
	return status.VaultID
}

// KeyringSave saves the master password to the OS keyring
func KeyringSave(ctx context.Context, env *Env) {
	vaultID := vaultIDOrExit(ctx, env)

	password, err := core.ReadPassword("Master password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(password)

	// Verify password is correct
	if _, err := env.Store.Open(password); err != nil {
		HandleError(err)
	}

	if err := keyring.SaveMasterPassword(vaultID, string(password)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("Master password saved to keyring")
}

// KeyringDelete removes the master password from the OS keyring
func KeyringDelete(ctx context.Context, env *Env) {
	vaultID := vaultIDOrExit(ctx, env)

	if err := keyring.DeleteMasterPassword(vaultID); err != nil {
		fmt.Println("No master password stored in keyring")
		return
	}
	fmt.Println("Master password removed from keyring")
}

// KeyringStatus checks if the master password is stored in the keyring
func KeyringStatus(ctx context.Context, env *Env) {
	vaultID := vaultIDOrExit(ctx, env)

	if _, err := keyring.GetMasterPassword(vaultID); err == nil {
		fmt.Println("Master password: stored in keyring")
	} else {
		fmt.Println("Master password: not stored")
	}
}

package cmd

import (
	"context"
	"fmt"

	"github.com/illarion/passlane/internal/core"
	"github.com/illarion/passlane/internal/crypto"
	"github.com/illarion/passlane/internal/keyring"
)

// Passwd changes the master password
func Passwd(ctx context.Context, env *Env) {
	status, err := env.Store.Status(ctx)
	if err != nil {
		HandleError(err)
	}
	if !status.Exists {
		fmt.Println("No vault yet, nothing to re-encrypt")
		return
	}

	currentPassword := GetPasswordOrExit(ctx, env)
	defer crypto.ClearBytes(currentPassword)

	newPassword, err := core.ReadPasswordConfirm("New master password: ")
	if err != nil {
		HandleError(err)
	}
	defer crypto.ClearBytes(newPassword)

	if err := env.Store.ChangeMasterPassword(ctx, currentPassword, newPassword); err != nil {
		HandleError(err)
	}

	// Keep a stored master password usable
	if status.VaultID != "" {
		if _, err := keyring.GetMasterPassword(status.VaultID); err == nil {
			if err := keyring.SaveMasterPassword(status.VaultID, string(newPassword)); err == nil {
				fmt.Println("Keyring updated with new password")
			}
		}
	}

	fmt.Println("Master password changed successfully")
}

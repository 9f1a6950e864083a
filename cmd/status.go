package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/illarion/passlane/internal/git"
	"github.com/illarion/passlane/internal/keyring"
)

// Status shows vault information without asking for the master password
func Status(ctx context.Context, env *Env) {
	status, err := env.Store.Status(ctx)
	if err != nil {
		HandleError(err)
	}

	if !status.Exists {
		fmt.Printf("No vault at %s\n", status.Path)
		fmt.Println("Run 'passlane save' to store the first credential")
		return
	}

	fmt.Printf("Vault:       %s (%d bytes)\n", status.Path, status.Size)
	if status.VaultID != "" {
		fmt.Printf("ID:          %s\n", status.VaultID)
	}
	fmt.Printf("Records:     %d (%d mirrored to keychain)\n", status.Records, status.Mirrored)
	if !status.Created.IsZero() {
		fmt.Printf("Created:     %s\n", status.Created.Format(time.RFC3339))
	}
	if !status.LastModified.IsZero() {
		fmt.Printf("Modified:    %s\n", status.LastModified.Format(time.RFC3339))
	}
	fmt.Printf("Encryption:  %s, %s (%d iterations)\n", status.Algorithm, status.KDF, status.KDFIterations)

	if status.VaultID != "" {
		if _, err := keyring.GetMasterPassword(status.VaultID); err == nil {
			fmt.Println("Keyring:     master password stored")
		} else {
			fmt.Println("Keyring:     master password not stored")
		}
	}

	gs := checkGit(env)
	if gs.Problems() {
		env.Log.Warnw("passlane home is inside a git work tree with unprotected plaintext", "home", env.Config.Home)
	}
	fmt.Print(git.Format(gs))
}

func checkGit(env *Env) *git.Status {
	home := env.Config.Home
	files := []git.File{
		{Name: filepath.Base(env.Config.VaultPath())},
		{Name: filepath.Base(env.Config.LockPath())},
		{Name: ".env", Plaintext: true},
	}
	return git.Check(home, files, func(name string) bool {
		_, err := os.Stat(filepath.Join(home, name))
		return err == nil
	})
}

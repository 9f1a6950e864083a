package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/illarion/passlane/internal/core"
	"github.com/illarion/passlane/internal/crypto"
	"github.com/illarion/passlane/internal/passgen"
)

// SaveOptions selects where the new password comes from
type SaveOptions struct {
	Generate  bool
	Clipboard bool
	Keychain  bool
}

// Save asks for a service and username and stores the credential
func Save(ctx context.Context, env *Env, opts SaveOptions) {
	password, err := readNewPassword(env, opts)
	if err != nil {
		HandleError(fmt.Errorf("failed to get password: %w", err))
	}

	service, err := core.ReadLine("Service: ")
	if err != nil {
		HandleError(err)
	}
	username, err := core.ReadLine("Username: ")
	if err != nil {
		HandleError(err)
	}

	master := GetPasswordOrExit(ctx, env)
	defer crypto.ClearBytes(master)

	record := core.Record{Service: service, Username: username, Password: password}
	result, err := env.Store.Put(ctx, master, record)
	if err != nil {
		HandleError(err)
	}

	switch result {
	case core.Unchanged:
		fmt.Println("Already saved, nothing changed.")
	default:
		fmt.Printf("Saved (%s).\n", result)
	}

	if opts.Keychain {
		outcome, err := env.Store.SyncRecord(ctx, master, env.Syncer, service, username)
		if err != nil {
			HandleError(err)
		}
		printOutcome(outcome)
		if outcome.Kind == core.KeychainFailed {
			os.Exit(1)
		}
	}

	if !opts.Clipboard && copyToClipboard(env, password) {
		fmt.Println("Password copied to clipboard")
	}
}

func readNewPassword(env *Env, opts SaveOptions) (string, error) {
	switch {
	case opts.Generate:
		return passgen.Generate(env.Config.PasswordLength)
	case opts.Clipboard:
		value, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("clipboard unavailable: %w", err)
		}
		if err := passgen.Validate(value); err != nil {
			return "", fmt.Errorf("the text in clipboard is not a valid password: %w", err)
		}
		return value, nil
	default:
		password, err := core.ReadPassword("Password to save: ")
		if err != nil {
			return "", err
		}
		defer crypto.ClearBytes(password)
		return string(password), nil
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/passlane/internal/core"
	"github.com/illarion/passlane/internal/crypto"
)

// Remove deletes a credential from the vault
func Remove(ctx context.Context, env *Env, args []string) {
	if len(args) == 0 || len(args) > 2 {
		fmt.Fprintf(os.Stderr, "Error: rm requires a service and an optional username\n")
		fmt.Fprintf(os.Stderr, "Usage: passlane rm <service> [username]\n")
		os.Exit(1)
	}

	service := args[0]
	username := ""
	if len(args) == 2 {
		username = args[1]
	}

	password := GetPasswordOrExit(ctx, env)
	defer crypto.ClearBytes(password)

	removed, err := env.Store.Remove(ctx, password, service, username)
	if err != nil {
		HandleError(err)
	}
	fmt.Printf("Removed %s\n", service)

	// Drop the mirrored copy too
	outcome := env.Syncer.Forget(ctx, removed)
	switch outcome.Kind {
	case core.KeychainRemoved:
		printOutcome(outcome)
	case core.KeychainFailed:
		printOutcome(outcome)
		os.Exit(1)
	}
}

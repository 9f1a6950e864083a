package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/passlane/internal/crypto"
)

// Import reads credentials from a CSV export. With keychain set the vault
// is mirrored to the OS keychain afterwards.
func Import(ctx context.Context, env *Env, path string, keychain bool) {
	f, err := os.Open(path)
	if err != nil {
		HandleError(err)
	}
	defer f.Close()

	password := GetPasswordOrExit(ctx, env)
	defer crypto.ClearBytes(password)

	report, err := env.Store.ImportCSV(ctx, password, f)
	if err != nil {
		HandleError(err)
	}

	fmt.Printf("Imported %d, updated %d, unchanged %d, skipped %d\n",
		report.Imported, report.Updated, report.Unchanged, report.Skipped)

	if keychain {
		outcomes, err := env.Store.Sync(ctx, password, env.Syncer)
		if err != nil {
			HandleError(err)
		}
		failed := 0
		for _, o := range outcomes {
			if o.Err != nil {
				failed++
				printOutcome(o)
			}
		}
		if failed > 0 {
			fmt.Fprintf(os.Stderr, "%d records could not be mirrored to the keychain\n", failed)
			os.Exit(1)
		}
		fmt.Println("Keychain in sync")
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/illarion/passlane/internal/core"
	"github.com/illarion/passlane/internal/crypto"
)

// Sync mirrors records into the OS keychain. With a service only that
// record is synced; otherwise every record is.
func Sync(ctx context.Context, env *Env, service, username string) {
	password := GetPasswordOrExit(ctx, env)
	defer crypto.ClearBytes(password)

	if service != "" {
		outcome, err := env.Store.SyncRecord(ctx, password, env.Syncer, service, username)
		if err != nil {
			HandleError(err)
		}
		printOutcome(outcome)
		if outcome.Kind == core.KeychainFailed {
			os.Exit(1)
		}
		return
	}

	outcomes, err := env.Store.Sync(ctx, password, env.Syncer)
	if err != nil {
		HandleError(err)
	}

	counts := make(map[core.OutcomeKind]int)
	for _, o := range outcomes {
		counts[o.Kind]++
		if o.Kind != core.KeychainUnchanged {
			printOutcome(o)
		}
	}
	fmt.Printf("\n%d added, %d updated, %d unchanged, %d failed\n",
		counts[core.KeychainAdded], counts[core.KeychainUpdated],
		counts[core.KeychainUnchanged], counts[core.KeychainFailed])

	if counts[core.KeychainFailed] > 0 {
		os.Exit(1)
	}
}

// Reconcile re-reads the keychain and repairs the stored sync flags
func Reconcile(ctx context.Context, env *Env) {
	password := GetPasswordOrExit(ctx, env)
	defer crypto.ClearBytes(password)

	report, err := env.Store.Reconcile(ctx, password, env.Syncer)
	if err != nil {
		HandleError(err)
	}

	for _, o := range report.Failed {
		printOutcome(o)
	}
	fmt.Printf("Checked %d records, repaired %d\n", report.Checked, report.Repaired)
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}

func printOutcome(o core.Outcome) {
	name := o.Service
	if o.Username != "" {
		name = o.Username + "@" + o.Service
	}
	if o.Kind == core.KeychainFailed {
		fmt.Fprintf(os.Stderr, "  ✗ %s: keychain %s: %s\n", name, o.Kind, o.Err)
		return
	}
	fmt.Printf("  ✓ %s: keychain %s\n", name, o.Kind)
}

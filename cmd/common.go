package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/illarion/passlane/internal/config"
	"github.com/illarion/passlane/internal/core"
	"github.com/illarion/passlane/internal/crypto"
	"github.com/illarion/passlane/internal/keyring"
	"go.uber.org/zap"
)

// Env carries what every command needs
type Env struct {
	Config *config.Config
	Log    *zap.SugaredLogger
	Store  *core.Store
	Syncer *core.Syncer
}

// NewEnv wires the store and the keychain syncer from cfg
func NewEnv(cfg *config.Config, log *zap.SugaredLogger) *Env {
	store := core.New(cfg.VaultPath(),
		core.WithLockPath(cfg.LockPath()),
		core.WithIterations(cfg.KDFIterations),
		core.WithLockTimeout(cfg.LockTimeout),
		core.WithLogger(log),
	)
	return &Env{
		Config: cfg,
		Log:    log,
		Store:  store,
		Syncer: core.NewSyncer(keyring.New(), cfg.KeychainTimeout, log),
	}
}

// GetPassword returns the master password from PASSLANE_PASSWORD, the OS
// keyring or a prompt, in that order. A vault that does not exist yet asks
// for the new password twice.
// The caller is responsible for calling crypto.ClearBytes on the returned password
func GetPassword(ctx context.Context, env *Env) ([]byte, error) {
	if password := env.Config.EnvPassword(); password != nil {
		return password, nil
	}

	status, err := env.Store.Status(ctx)
	if errors.Is(err, core.ErrVaultBusy) {
		// A writer holds the index; skip the keyring lookup and prompt
		env.Log.Debugw("vault index busy, not looking up keyring password")
		return core.ReadPassword("Master password: ")
	} else if err != nil {
		return nil, err
	}

	if !status.Exists {
		fmt.Println("No vault yet, choose a master password")
		return core.ReadPasswordConfirm("Master password: ")
	}

	if status.VaultID != "" {
		if stored, err := keyring.GetMasterPassword(status.VaultID); err == nil {
			password := []byte(stored)
			if _, err := env.Store.Open(password); err == nil {
				return password, nil
			}
			crypto.ClearBytes(password)
			env.Log.Warnw("stale master password in keyring", "vault_id", status.VaultID)
			fmt.Fprintln(os.Stderr, "Keyring password is outdated, run 'passlane keyring save'")
		}
	}

	password, err := core.ReadPassword("Master password: ")
	if err != nil {
		return nil, err
	}
	return password, nil
}

// GetPasswordOrExit is like GetPassword but exits on error
func GetPasswordOrExit(ctx context.Context, env *Env) []byte {
	password, err := GetPassword(ctx, env)
	if err != nil {
		HandleError(err)
	}
	return password
}

// OpenOrExit unlocks the vault read-only
func OpenOrExit(ctx context.Context, env *Env) *core.Vault {
	password := GetPasswordOrExit(ctx, env)
	defer crypto.ClearBytes(password)

	v, err := env.Store.Open(password)
	if err != nil {
		HandleError(err)
	}
	return v
}

// copyToClipboard writes value to the clipboard and reports failures
// without failing the command
func copyToClipboard(env *Env, value string) bool {
	if err := clipboard.WriteAll(value); err != nil {
		env.Log.Debugw("clipboard unavailable", "error", err)
		fmt.Fprintf(os.Stderr, "warning: could not copy to clipboard: %s\n", err)
		return false
	}
	return true
}

// HandleError prints an actionable message for err and exits with status 1
func HandleError(err error) {
	switch {
	case errors.Is(err, core.ErrWrongPasswordOrCorrupt):
		fmt.Fprintf(os.Stderr, "Error: wrong master password or corrupted vault\n")
	case errors.Is(err, core.ErrVaultBusy):
		fmt.Fprintf(os.Stderr, "Error: vault is in use by another passlane process\n")
		fmt.Fprintf(os.Stderr, "Try again in a moment\n")
	case errors.Is(err, core.ErrMissingHeader):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "The first row must name the username, password and service columns\n")
	case errors.Is(err, core.ErrMissingRequiredColumn):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, core.ErrInvalidRecord):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "Service and password must not be empty\n")
	case errors.Is(err, core.ErrNoMatch):
		fmt.Fprintf(os.Stderr, "Error: no matching record\n")
	case errors.Is(err, core.ErrInvalidSelection):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(os.Stderr, "Interrupted\n")
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	os.Exit(1)
}

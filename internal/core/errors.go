package core

import "errors"

var (
	ErrWrongPasswordOrCorrupt = errors.New("wrong master password or corrupted vault")
	ErrVaultBusy              = errors.New("vault is in use by another process")
	ErrPasswordRequired       = errors.New("password required")
	ErrInvalidRecord          = errors.New("invalid record")
	ErrNoMatch                = errors.New("no matching record")
	ErrInvalidSelection       = errors.New("invalid selection")
	ErrMissingHeader          = errors.New("missing CSV header row")
	ErrMissingRequiredColumn  = errors.New("missing required CSV column")
	ErrSecretNotFound         = errors.New("secret not found in keychain")
)

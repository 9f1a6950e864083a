package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/illarion/passlane/internal/storage"
	"go.uber.org/zap"
)

const DefaultKeychainTimeout = 10 * time.Second

// SecretStore is the OS-native secret storage records are mirrored into.
// Get and Delete return an error wrapping ErrSecretNotFound for absent
// entries.
type SecretStore interface {
	Set(ctx context.Context, service, username, password string) error
	Get(ctx context.Context, service, username string) (string, error)
	Delete(ctx context.Context, service, username string) error
}

// OutcomeKind classifies the result of syncing one record
type OutcomeKind int

const (
	KeychainAdded OutcomeKind = iota
	KeychainUpdated
	KeychainUnchanged
	KeychainFailed
	KeychainRemoved
)

func (k OutcomeKind) String() string {
	switch k {
	case KeychainAdded:
		return "added"
	case KeychainUpdated:
		return "updated"
	case KeychainUnchanged:
		return "unchanged"
	case KeychainRemoved:
		return "removed"
	default:
		return "failed"
	}
}

// Outcome is the result of syncing one record
type Outcome struct {
	Service  string
	Username string
	Kind     OutcomeKind
	Err      error // Set when Kind is KeychainFailed
}

// ReconcileReport summarizes a reconciliation pass
type ReconcileReport struct {
	Checked  int
	Repaired int
	Failed   []Outcome
}

// Syncer mirrors vault records into a SecretStore
type Syncer struct {
	store   SecretStore
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewSyncer creates a Syncer. Every SecretStore call is bounded by timeout.
func NewSyncer(store SecretStore, timeout time.Duration, logger *zap.SugaredLogger) *Syncer {
	if timeout <= 0 {
		timeout = DefaultKeychainTimeout
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Syncer{store: store, timeout: timeout, log: logger}
}

// SyncOne mirrors r into the secret store and updates its sync state.
// A record already mirrored is not written again.
func (s *Syncer) SyncOne(ctx context.Context, r *Record) Outcome {
	out := Outcome{Service: r.Service, Username: r.Username}

	if r.Keychain == storage.SyncMirrored {
		out.Kind = KeychainUnchanged
		return out
	}

	err := s.guard(ctx, func(ctx context.Context) error {
		return s.store.Set(ctx, r.Service, r.Username, r.Password)
	})
	if err != nil {
		s.log.Warnw("keychain write failed", "service", r.Service, "username", r.Username, "error", err)
		out.Kind = KeychainFailed
		out.Err = err
		return out
	}

	if r.Keychain == storage.SyncStale {
		out.Kind = KeychainUpdated
	} else {
		out.Kind = KeychainAdded
	}
	r.Keychain = storage.SyncMirrored
	s.log.Debugw("keychain entry written", "service", r.Service, "username", r.Username, "outcome", out.Kind)
	return out
}

// SyncAll mirrors every record. A failure for one record never stops the
// others; the outcome list has one entry per record in vault order.
func (s *Syncer) SyncAll(ctx context.Context, v *Vault) []Outcome {
	outcomes := make([]Outcome, 0, v.Len())
	for i := range v.payload.Records {
		r := v.payload.Records[i]
		out := s.SyncOne(ctx, &r)
		v.setSyncState(i, r.Keychain)
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// syncRecord mirrors the record identified by service and username
func (s *Syncer) syncRecord(ctx context.Context, v *Vault, service, username string) (Outcome, error) {
	i := v.find(service, username)
	if i < 0 {
		return Outcome{}, ErrNoMatch
	}
	r := v.payload.Records[i]
	out := s.SyncOne(ctx, &r)
	v.setSyncState(i, r.Keychain)
	return out, nil
}

// Reconcile re-derives the sync state of every record from the secret store,
// repairing stale flags. Records whose entry cannot be read keep their flag.
func (s *Syncer) Reconcile(ctx context.Context, v *Vault) ReconcileReport {
	var report ReconcileReport
	for i := range v.payload.Records {
		r := v.payload.Records[i]
		report.Checked++

		var stored string
		err := s.guard(ctx, func(ctx context.Context) error {
			var err error
			stored, err = s.store.Get(ctx, r.Service, r.Username)
			return err
		})

		var state storage.SyncState
		switch {
		case errors.Is(err, ErrSecretNotFound):
			state = storage.SyncNone
		case err != nil:
			s.log.Warnw("keychain read failed", "service", r.Service, "username", r.Username, "error", err)
			report.Failed = append(report.Failed, Outcome{Service: r.Service, Username: r.Username, Kind: KeychainFailed, Err: err})
			continue
		case stored == r.Password:
			state = storage.SyncMirrored
		default:
			state = storage.SyncStale
		}

		if state != r.Keychain {
			report.Repaired++
			v.setSyncState(i, state)
		}
	}
	return report
}

// guard runs call with a deadline. The call runs in its own goroutine so a
// secret store that ignores the context cannot block the caller.
func (s *Syncer) guard(ctx context.Context, call func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- call(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("keychain did not respond: %w", ctx.Err())
	}
}

// Sync mirrors all records into the secret store and persists the new sync
// state. Keychain calls run on a snapshot without holding the vault lock;
// the lock is only taken to merge the resulting flags. Local vault errors
// are returned; keychain errors are per outcome.
func (s *Store) Sync(ctx context.Context, password []byte, syncer *Syncer) ([]Outcome, error) {
	snapshot, err := s.Open(password)
	if err != nil {
		return nil, err
	}
	outcomes := syncer.SyncAll(ctx, snapshot)
	return outcomes, s.mergeSyncState(ctx, password, snapshot)
}

// SyncRecord mirrors one record. It returns ErrNoMatch if there is none.
func (s *Store) SyncRecord(ctx context.Context, password []byte, syncer *Syncer, service, username string) (Outcome, error) {
	snapshot, err := s.Open(password)
	if err != nil {
		return Outcome{}, err
	}
	out, err := syncer.syncRecord(ctx, snapshot, service, username)
	if err != nil {
		return Outcome{}, err
	}
	return out, s.mergeSyncState(ctx, password, snapshot)
}

// Reconcile repairs the persisted sync state against the secret store
func (s *Store) Reconcile(ctx context.Context, password []byte, syncer *Syncer) (ReconcileReport, error) {
	snapshot, err := s.Open(password)
	if err != nil {
		return ReconcileReport{}, err
	}
	report := syncer.Reconcile(ctx, snapshot)
	return report, s.mergeSyncState(ctx, password, snapshot)
}

// mergeSyncState copies the keychain flags of snapshot into the current
// vault under the lock. A record whose password changed since the snapshot
// was taken keeps its current flag.
func (s *Store) mergeSyncState(ctx context.Context, password []byte, snapshot *Vault) error {
	if !snapshot.Dirty() {
		return nil
	}
	return s.Update(ctx, password, func(v *Vault) error {
		for _, r := range snapshot.Records() {
			i := v.find(r.Service, r.Username)
			if i < 0 || v.payload.Records[i].Password != r.Password {
				continue
			}
			v.setSyncState(i, r.Keychain)
		}
		return nil
	})
}

// Forget deletes the keychain entry of a record removed from the vault.
// An entry that does not exist is not an error.
func (s *Syncer) Forget(ctx context.Context, r Record) Outcome {
	out := Outcome{Service: r.Service, Username: r.Username, Kind: KeychainUnchanged}
	if r.Keychain == storage.SyncNone {
		return out
	}

	err := s.guard(ctx, func(ctx context.Context) error {
		return s.store.Delete(ctx, r.Service, r.Username)
	})
	switch {
	case errors.Is(err, ErrSecretNotFound):
	case err != nil:
		s.log.Warnw("keychain delete failed", "service", r.Service, "username", r.Username, "error", err)
		out.Kind = KeychainFailed
		out.Err = err
	default:
		out.Kind = KeychainRemoved
		s.log.Debugw("keychain entry removed", "service", r.Service, "username", r.Username)
	}
	return out
}

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/illarion/passlane/internal/crypto"
	"github.com/illarion/passlane/internal/storage"
	"go.uber.org/zap"
)

const (
	VaultFileName      = "store.vault"
	LockFileName       = "store.lock"
	DefaultLockTimeout = 5 * time.Second
	Algorithm          = "AES-256-GCM"
	KDFAlgorithm       = "PBKDF2-HMAC-SHA256"

	readRetryDelay = 50 * time.Millisecond
)

// Store owns the vault file: it opens, saves and re-keys it, and serializes
// mutating operations across processes with an advisory lock.
type Store struct {
	path        string
	lockPath    string
	iterations  int
	lockTimeout time.Duration
	log         *zap.SugaredLogger
	now         func() time.Time
	readFile    func(path string) (*storage.VaultFile, error)
}

// Option configures a Store
type Option func(*Store)

// WithLockPath overrides the lock/index file location
func WithLockPath(path string) Option {
	return func(s *Store) { s.lockPath = path }
}

// WithIterations sets the PBKDF2 work factor for newly created vaults and
// for re-keying
func WithIterations(n int) Option {
	return func(s *Store) { s.iterations = n }
}

// WithLockTimeout bounds the wait for the vault lock
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) { s.lockTimeout = d }
}

// WithLogger sets the logger
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the time source used for record timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store for the vault file at path. The lock file defaults to
// LockFileName in the same directory.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:        path,
		lockPath:    filepath.Join(filepath.Dir(path), LockFileName),
		iterations:  crypto.DefaultIters,
		lockTimeout: DefaultLockTimeout,
		now:         time.Now,
		readFile:    storage.ReadVaultFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = zap.NewNop().Sugar()
	}
	return s
}

// Path returns the vault file path
func (s *Store) Path() string {
	return s.path
}

// Open decrypts the vault without taking the lock. A missing or empty vault
// file opens as an empty vault.
func (s *Store) Open(password []byte) (*Vault, error) {
	if len(password) == 0 {
		return nil, ErrPasswordRequired
	}

	f, err := s.readVaultFile()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debugw("vault file not found, starting empty vault", "path", s.path)
			return NewVault(s.now), nil
		}
		return nil, err
	}
	if f == nil {
		return NewVault(s.now), nil
	}

	return s.decode(f, password)
}

// readVaultFile reads the vault file, retrying once on a transient error
// such as a read racing an in-progress replacement
func (s *Store) readVaultFile() (*storage.VaultFile, error) {
	f, err := s.readFile(s.path)
	if err == nil || errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrUnsupportedVersion) {
		return f, err
	}
	if errors.Is(err, storage.ErrCorruptHeader) {
		return nil, fmt.Errorf("%w: %v", ErrWrongPasswordOrCorrupt, err)
	}

	s.log.Debugw("vault read failed, retrying once", "path", s.path, "error", err)
	time.Sleep(readRetryDelay)

	f, err = s.readFile(s.path)
	if errors.Is(err, storage.ErrTruncated) {
		return nil, fmt.Errorf("%w: %v", ErrWrongPasswordOrCorrupt, err)
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}
	return f, err
}

// decode decrypts and unmarshals a vault file
func (s *Store) decode(f *storage.VaultFile, password []byte) (*Vault, error) {
	sealed := &crypto.Sealed{
		Salt:       f.Salt,
		Iterations: int(f.Iterations),
		Nonce:      f.Nonce,
		Ciphertext: f.Ciphertext,
	}

	plaintext, err := crypto.Decrypt(sealed, password, f.Header())
	if err != nil {
		return nil, ErrWrongPasswordOrCorrupt
	}
	defer crypto.ClearBytes(plaintext)

	var payload storage.Payload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrongPasswordOrCorrupt, err)
	}
	if payload.Records == nil {
		payload.Records = make([]Record, 0)
	}

	return &Vault{
		payload: &payload,
		kdf:     &crypto.KDF{Salt: f.Salt, Iterations: int(f.Iterations)},
		now:     s.now,
	}, nil
}

// encode marshals and encrypts the vault. A vault that was never written
// gets a fresh salt; afterwards the salt is reused.
func (s *Store) encode(v *Vault, password []byte) (*storage.VaultFile, error) {
	if v.kdf == nil {
		kdf, err := crypto.NewKDF(s.iterations)
		if err != nil {
			return nil, err
		}
		v.kdf = kdf
	}

	f := &storage.VaultFile{
		Version:    storage.FormatVersion,
		Iterations: uint32(v.kdf.Iterations),
		Salt:       v.kdf.Salt,
	}

	v.payload.Modified = s.now()
	plaintext, err := json.Marshal(v.payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal vault: %w", err)
	}
	defer crypto.ClearBytes(plaintext)

	sealed, err := crypto.Encrypt(plaintext, password, v.kdf, f.Header())
	if err != nil {
		return nil, err
	}
	f.Nonce = sealed.Nonce
	f.Ciphertext = sealed.Ciphertext
	return f, nil
}

// lock acquires exclusive access to the vault
func (s *Store) lock(ctx context.Context) (*storage.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(s.lockPath), storage.DirPermSecure); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}

	idx, err := storage.OpenIndex(s.lockPath, s.lockTimeout, false)
	if err != nil {
		if errors.Is(err, storage.ErrLockTimeout) {
			return nil, ErrVaultBusy
		}
		return nil, err
	}
	return idx, nil
}

// write encrypts and atomically replaces the vault file. The caller holds idx.
func (s *Store) write(idx *storage.Index, v *Vault, password []byte) error {
	f, err := s.encode(v, password)
	if err != nil {
		return err
	}
	if err := storage.WriteVaultFile(s.path, f); err != nil {
		return err
	}
	v.dirty = false

	if err := idx.Record(f.Iterations, v.Len(), v.mirroredCount()); err != nil {
		// The vault itself is safely written; the index is advisory
		s.log.Warnw("failed to update vault index", "error", err)
	}
	s.log.Debugw("vault saved", "path", s.path, "records", v.Len())
	return nil
}

// Save encrypts v under password and atomically writes it
func (s *Store) Save(ctx context.Context, v *Vault, password []byte) error {
	if len(password) == 0 {
		return ErrPasswordRequired
	}
	idx, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	return s.write(idx, v, password)
}

// Update runs fn on the vault while holding the lock and saves the result if
// fn changed anything. An error from fn discards the changes.
func (s *Store) Update(ctx context.Context, password []byte, fn func(*Vault) error) error {
	if len(password) == 0 {
		return ErrPasswordRequired
	}
	idx, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	v, err := s.Open(password)
	if err != nil {
		return err
	}

	if err := fn(v); err != nil {
		return err
	}
	if !v.Dirty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(idx, v, password)
}

// Put upserts a single record
func (s *Store) Put(ctx context.Context, password []byte, r Record) (UpsertResult, error) {
	var result UpsertResult
	err := s.Update(ctx, password, func(v *Vault) error {
		var err error
		result, err = v.Upsert(r)
		return err
	})
	return result, err
}

// Remove deletes a record and returns it. It returns ErrNoMatch if there
// is none.
func (s *Store) Remove(ctx context.Context, password []byte, service, username string) (Record, error) {
	var removed Record
	err := s.Update(ctx, password, func(v *Vault) error {
		i := v.find(service, username)
		if i < 0 {
			return ErrNoMatch
		}
		removed = v.payload.Records[i]
		v.Remove(service, username)
		return nil
	})
	return removed, err
}

// ChangeMasterPassword re-encrypts the vault under newPassword with a fresh
// salt. The old file stays intact until the atomic rename.
func (s *Store) ChangeMasterPassword(ctx context.Context, oldPassword, newPassword []byte) error {
	if len(oldPassword) == 0 || len(newPassword) == 0 {
		return ErrPasswordRequired
	}
	idx, err := s.lock(ctx)
	if err != nil {
		return err
	}
	defer idx.Close()

	v, err := s.Open(oldPassword)
	if err != nil {
		return err
	}

	kdf, err := crypto.NewKDF(s.iterations)
	if err != nil {
		return fmt.Errorf("failed to create KDF: %w", err)
	}
	v.kdf = kdf

	if err := s.write(idx, v, newPassword); err != nil {
		return err
	}
	s.log.Infow("master password changed", "path", s.path)
	return nil
}

// StatusInfo describes a vault without decrypting it
type StatusInfo struct {
	Path          string
	Exists        bool
	Size          int64
	VaultID       string
	Records       int
	Mirrored      int
	Created       time.Time
	LastModified  time.Time
	Algorithm     string
	KDF           string
	KDFIterations uint32
}

// Status returns the current status (no password required)
func (s *Store) Status(ctx context.Context) (*StatusInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	status := &StatusInfo{
		Path:      s.path,
		Algorithm: Algorithm,
		KDF:       KDFAlgorithm,
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return status, nil
		}
		return nil, err
	}
	status.Exists = true
	status.Size = info.Size()

	if _, err := os.Stat(s.lockPath); err != nil {
		return status, nil
	}

	idx, err := storage.OpenIndex(s.lockPath, s.lockTimeout, true)
	if err != nil {
		if errors.Is(err, storage.ErrLockTimeout) {
			return nil, ErrVaultBusy
		}
		return nil, err
	}
	defer idx.Close()

	summary, err := idx.Summary()
	if err != nil {
		// Not critical
		s.log.Warnw("failed to read vault index", "error", err)
		return status, nil
	}
	status.VaultID = summary.VaultID
	status.Records = summary.Records
	status.Mirrored = summary.Mirrored
	status.Created = summary.Created
	status.LastModified = summary.Modified
	status.KDFIterations = summary.Iterations
	return status, nil
}

package core

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/illarion/passlane/internal/crypto"
	"github.com/illarion/passlane/internal/storage"
	"golang.org/x/text/cases"
)

// Record is one stored credential
type Record = storage.Record

// UpsertResult tells what Upsert did with a record
type UpsertResult int

const (
	Inserted UpsertResult = iota
	Updated
	Unchanged
)

func (r UpsertResult) String() string {
	switch r {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Vault is the decrypted, ordered collection of credential records.
// It exists only in memory for the duration of one operation.
type Vault struct {
	payload *storage.Payload
	kdf     *crypto.KDF // nil until the vault has been written once
	now     func() time.Time
	dirty   bool
}

// NewVault creates an empty vault
func NewVault(now func() time.Time) *Vault {
	if now == nil {
		now = time.Now
	}
	return &Vault{
		payload: storage.NewPayload(now()),
		now:     now,
	}
}

// Len returns the number of records
func (v *Vault) Len() int {
	return len(v.payload.Records)
}

// Records returns a copy of all records in insertion order
func (v *Vault) Records() []Record {
	out := make([]Record, len(v.payload.Records))
	copy(out, v.payload.Records)
	return out
}

// Dirty reports whether the vault changed since it was opened
func (v *Vault) Dirty() bool {
	return v.dirty
}

// Upsert inserts r, or replaces the password of the record with the same
// service and username in place. Upserting an identical password is a no-op.
func (v *Vault) Upsert(r Record) (UpsertResult, error) {
	r.Service = strings.TrimSpace(r.Service)
	if r.Service == "" {
		return 0, fmt.Errorf("%w: service is empty", ErrInvalidRecord)
	}
	if r.Password == "" {
		return 0, fmt.Errorf("%w: password is empty", ErrInvalidRecord)
	}
	// The payload is JSON, which cannot carry invalid UTF-8 unchanged
	if !utf8.ValidString(r.Service) || !utf8.ValidString(r.Username) || !utf8.ValidString(r.Password) {
		return 0, fmt.Errorf("%w: not valid UTF-8", ErrInvalidRecord)
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = v.now()
	}

	if i := v.find(r.Service, r.Username); i >= 0 {
		existing := &v.payload.Records[i]
		if existing.Password == r.Password {
			return Unchanged, nil
		}
		existing.Password = r.Password
		existing.UpdatedAt = r.UpdatedAt
		if existing.Keychain == storage.SyncMirrored {
			existing.Keychain = storage.SyncStale
		}
		v.dirty = true
		return Updated, nil
	}

	r.Keychain = storage.SyncNone
	v.payload.Records = append(v.payload.Records, r)
	v.dirty = true
	return Inserted, nil
}

// Remove deletes the record identified by service and username
func (v *Vault) Remove(service, username string) bool {
	i := v.find(service, username)
	if i < 0 {
		return false
	}
	v.payload.Records = append(v.payload.Records[:i], v.payload.Records[i+1:]...)
	v.dirty = true
	return true
}

// find returns the index of the record with the given identity, or -1
func (v *Vault) find(service, username string) int {
	key := foldKey(service)
	for i := range v.payload.Records {
		r := &v.payload.Records[i]
		if r.Username == username && foldKey(r.Service) == key {
			return i
		}
	}
	return -1
}

// setSyncState updates the keychain state of the record at i
func (v *Vault) setSyncState(i int, state storage.SyncState) {
	if v.payload.Records[i].Keychain != state {
		v.payload.Records[i].Keychain = state
		v.dirty = true
	}
}

// mirroredCount returns the number of records in sync with the keychain
func (v *Vault) mirroredCount() int {
	n := 0
	for _, r := range v.payload.Records {
		if r.Keychain == storage.SyncMirrored {
			n++
		}
	}
	return n
}

// foldKey normalizes a service name for case-insensitive comparison
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	ConfigBucket = []byte("config") // Vault id, timestamps - unencrypted
	IndexBucket  = []byte("index")  // Non-secret summary for status
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigIters    = []byte("iterations")
	ConfigVaultID  = []byte("vault_id")
	IndexRecords   = []byte("records")
	IndexMirrored  = []byte("mirrored")
)

var ErrLockTimeout = errors.New("timed out waiting for vault lock")

// Index is the BBolt sidecar of a vault file. Opening it read-write takes an
// exclusive flock on the file, which serializes mutating operations across
// processes; it also keeps a password-less summary of the vault.
type Index struct {
	db *bolt.DB
}

// Summary is the unencrypted description of a vault kept in the index
type Summary struct {
	VaultID    string
	Created    time.Time
	Modified   time.Time
	Iterations uint32
	Records    int
	Mirrored   int
}

// OpenIndex opens or creates the index at path, waiting at most timeout for
// the file lock. readOnly opens take a shared lock.
func OpenIndex(path string, timeout time.Duration, readOnly bool) (*Index, error) {
	db, err := bolt.Open(path, FilePermSecure, &bolt.Options{Timeout: timeout, ReadOnly: readOnly})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	idx := &Index{db: db}
	if readOnly {
		return idx, nil
	}
	if err := idx.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

// Close releases the lock
func (i *Index) Close() error {
	return i.db.Close()
}

// initialize creates the bucket structure and vault id for a new index
func (i *Index) initialize() error {
	return i.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, IndexBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if config.Get(ConfigVersion) != nil {
			return nil
		}
		if err := config.Put(ConfigVersion, []byte("1")); err != nil {
			return err
		}
		if err := config.Put(ConfigVaultID, []byte(uuid.NewString())); err != nil {
			return err
		}
		created, _ := time.Now().MarshalBinary()
		return config.Put(ConfigCreated, created)
	})
}

// Record stores the summary of a freshly written vault
func (i *Index) Record(iterations uint32, records, mirrored int) error {
	return i.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		index := tx.Bucket(IndexBucket)

		modified, _ := time.Now().MarshalBinary()
		if err := config.Put(ConfigModified, modified); err != nil {
			return err
		}
		if err := config.Put(ConfigIters, uint32Bytes(iterations)); err != nil {
			return err
		}
		if err := index.Put(IndexRecords, uint32Bytes(uint32(records))); err != nil {
			return err
		}
		return index.Put(IndexMirrored, uint32Bytes(uint32(mirrored)))
	})
}

// Summary reads the stored summary. Missing values are left zero.
func (i *Index) Summary() (*Summary, error) {
	s := &Summary{}
	err := i.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return nil
		}
		s.VaultID = string(config.Get(ConfigVaultID))
		if data := config.Get(ConfigCreated); data != nil {
			if err := s.Created.UnmarshalBinary(data); err != nil {
				return err
			}
		}
		if data := config.Get(ConfigModified); data != nil {
			if err := s.Modified.UnmarshalBinary(data); err != nil {
				return err
			}
		}
		s.Iterations = readUint32(config.Get(ConfigIters))

		if index := tx.Bucket(IndexBucket); index != nil {
			s.Records = int(readUint32(index.Get(IndexRecords)))
			s.Mirrored = int(readUint32(index.Get(IndexMirrored)))
		}
		return nil
	})
	return s, err
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func readUint32(b []byte) uint32 {
	if len(b) != 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

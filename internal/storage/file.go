package storage

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/illarion/passlane/internal/crypto"
	"github.com/natefinch/atomic"
)

const (
	FormatVersion  uint16 = 1
	DirPermSecure         = 0700 // Directory: owner rwx only
	FilePermSecure        = 0600 // File: owner rw only

	versionSize = 2
	itersSize   = 4
	headerSize  = versionSize + itersSize + crypto.SaltSize
)

var (
	ErrUnsupportedVersion = errors.New("unsupported vault format version")
	ErrTruncated          = errors.New("vault file is truncated")
	ErrCorruptHeader      = errors.New("vault file header is corrupt")
)

// VaultFile is the on-disk layout of an encrypted vault:
//
//	[version u16 LE][iterations u32 BE][salt][nonce][ciphertext]
type VaultFile struct {
	Version    uint16
	Iterations uint32
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
}

// Header returns the unencrypted header bytes. They are authenticated as
// additional data of the ciphertext.
func (f *VaultFile) Header() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(buf[:versionSize], f.Version)
	binary.BigEndian.PutUint32(buf[versionSize:versionSize+itersSize], f.Iterations)
	copy(buf[versionSize+itersSize:], f.Salt)
	return buf
}

// MarshalBinary encodes the vault file
func (f *VaultFile) MarshalBinary() ([]byte, error) {
	if len(f.Salt) != crypto.SaltSize {
		return nil, fmt.Errorf("invalid salt length %d", len(f.Salt))
	}
	if len(f.Nonce) != crypto.NonceSize {
		return nil, fmt.Errorf("invalid nonce length %d", len(f.Nonce))
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + crypto.NonceSize + len(f.Ciphertext))
	buf.Write(f.Header())
	buf.Write(f.Nonce)
	buf.Write(f.Ciphertext)
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a vault file. Slices are copied out of data.
func (f *VaultFile) UnmarshalBinary(data []byte) error {
	if len(data) < versionSize {
		return ErrTruncated
	}
	version := binary.LittleEndian.Uint16(data[:versionSize])
	if version != FormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	if len(data) < headerSize+crypto.NonceSize+crypto.TagSize {
		return ErrTruncated
	}

	iterations := binary.BigEndian.Uint32(data[versionSize : versionSize+itersSize])
	if iterations == 0 || iterations > crypto.MaxIters {
		return fmt.Errorf("%w: iteration count %d", ErrCorruptHeader, iterations)
	}

	f.Version = version
	f.Iterations = iterations
	f.Salt = append([]byte(nil), data[versionSize+itersSize:headerSize]...)
	f.Nonce = append([]byte(nil), data[headerSize:headerSize+crypto.NonceSize]...)
	f.Ciphertext = append([]byte(nil), data[headerSize+crypto.NonceSize:]...)
	return nil
}

// ReadVaultFile reads and decodes the vault at path.
// A missing file yields an error wrapping os.ErrNotExist; an empty file
// yields (nil, nil).
func ReadVaultFile(path string) (*VaultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var f VaultFile
	if err := f.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &f, nil
}

// WriteVaultFile atomically replaces the vault at path: the data is written
// to a temporary file in the same directory and renamed over the original.
func WriteVaultFile(path string, f *VaultFile) error {
	data, err := f.MarshalBinary()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPermSecure); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}

	return os.Chmod(path, FilePermSecure)
}

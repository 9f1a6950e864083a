package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/illarion/passlane/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVaultFile() *VaultFile {
	return &VaultFile{
		Version:    FormatVersion,
		Iterations: 1000,
		Salt:       bytes.Repeat([]byte{1}, crypto.SaltSize),
		Nonce:      bytes.Repeat([]byte{2}, crypto.NonceSize),
		Ciphertext: bytes.Repeat([]byte{3}, 40),
	}
}

func TestVaultFileMarshalLayout(t *testing.T) {
	f := testVaultFile()
	data, err := f.MarshalBinary()
	require.NoError(t, err)

	require.Len(t, data, 2+4+crypto.SaltSize+crypto.NonceSize+40)
	assert.Equal(t, []byte{1, 0}, data[:2])
	assert.Equal(t, []byte{0, 0, 0x03, 0xe8}, data[2:6])
	assert.Equal(t, f.Header(), data[:headerSize])

	var decoded VaultFile
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, *f, decoded)
}

func TestVaultFileUnmarshalErrors(t *testing.T) {
	var f VaultFile
	assert.ErrorIs(t, f.UnmarshalBinary([]byte{1}), ErrTruncated)
	assert.ErrorIs(t, f.UnmarshalBinary([]byte{9, 0, 0, 0}), ErrUnsupportedVersion)

	data, err := testVaultFile().MarshalBinary()
	require.NoError(t, err)
	assert.ErrorIs(t, f.UnmarshalBinary(data[:headerSize+4]), ErrTruncated)
}

func TestVaultFileMarshalRejectsBadSizes(t *testing.T) {
	f := testVaultFile()
	f.Salt = []byte("short")
	_, err := f.MarshalBinary()
	assert.Error(t, err)
}

func TestReadVaultFileMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadVaultFile(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0600))
	f, err := ReadVaultFile(empty)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestWriteVaultFileAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "store.vault")

	first := testVaultFile()
	require.NoError(t, WriteVaultFile(path, first))

	second := testVaultFile()
	second.Ciphertext = bytes.Repeat([]byte{4}, 64)
	require.NoError(t, WriteVaultFile(path, second))

	got, err := ReadVaultFile(path)
	require.NoError(t, err)
	assert.Equal(t, second.Ciphertext, got.Ciphertext)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(FilePermSecure), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files should be left behind")
}

func TestVaultFileUnmarshalRejectsIterations(t *testing.T) {
	data, err := testVaultFile().MarshalBinary()
	require.NoError(t, err)

	for _, iters := range [][]byte{{0, 0, 0, 0}, {0xff, 0xff, 0xff, 0xff}} {
		corrupt := append([]byte(nil), data...)
		copy(corrupt[2:6], iters)

		var f VaultFile
		assert.ErrorIs(t, f.UnmarshalBinary(corrupt), ErrCorruptHeader)
	}
}

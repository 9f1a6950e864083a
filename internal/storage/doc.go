// Package storage provides the on-disk formats of a passlane vault.
//
// A vault is two files:
//   - the vault file: [version][iterations][salt][nonce][ciphertext], replaced
//     atomically (temp file + rename) on every write
//   - the index: a BBolt database next to it holding the vault id, timestamps
//     and record counts (unencrypted, for status)
//
// The index doubles as the vault lock. BBolt takes an flock on open, so a
// read-write OpenIndex grants exclusive access to the vault until Close.
package storage

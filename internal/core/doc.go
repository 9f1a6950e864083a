// Package core provides the passlane vault engine.
//
// Core operations include:
//   - Open/Save/Update: decrypt, mutate and atomically re-encrypt the vault
//     under an exclusive cross-process lock
//   - Upsert/Remove/Search: record management keyed by (service, username)
//   - ChangeMasterPassword: re-encrypt the vault under a new key and salt
//   - Sync/Reconcile: mirror records into the OS keychain and repair the
//     persisted sync state
//   - ImportCSV: merge credentials exported by other password managers
//
// Search results distinguish a single unambiguous match, which carries the
// password, from a multi-match whose views are masked unless verbose.
package core

// Package git checks whether the passlane home directory lives inside a git
// work tree, as happens with dotfile repositories.
//
// Checks performed:
//   - Whether plaintext files (.env, which may hold PASSLANE_PASSWORD) are
//     tracked by git (must not be) or missing from .gitignore (should not be)
//   - Whether the lock/index file is tracked (it changes on every write)
//   - Whether the encrypted vault is tracked (allowed, reported)
package git

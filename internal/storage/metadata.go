package storage

import (
	"time"
)

const PayloadVersion = 1

// SyncState records whether a credential has been mirrored to the OS keychain
type SyncState string

const (
	SyncNone     SyncState = ""         // Never mirrored
	SyncMirrored SyncState = "mirrored" // Keychain holds the current password
	SyncStale    SyncState = "stale"    // Mirrored once, keychain entry is out of date
)

// Payload is the decrypted content of a vault file
type Payload struct {
	Version  int       `json:"version"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
	Records  []Record  `json:"records"`
}

// Record is one stored credential
type Record struct {
	Service   string    `json:"service"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	UpdatedAt time.Time `json:"updatedAt"`
	Keychain  SyncState `json:"keychain,omitempty"`
}

// NewPayload creates an empty payload
func NewPayload(now time.Time) *Payload {
	return &Payload{
		Version:  PayloadVersion,
		Created:  now,
		Modified: now,
		Records:  make([]Record, 0),
	}
}

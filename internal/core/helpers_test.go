package core

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

const testIters = 1000

var testPassword = []byte("master-password")

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), VaultFileName)
	opts = append([]Option{WithIterations(testIters), WithLockTimeout(time.Second)}, opts...)
	return New(path, opts...)
}

// fixedClock returns a clock that advances one second per call
func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type entryKey struct{ service, username string }

// memSecretStore is an in-memory SecretStore
type memSecretStore struct {
	mu      sync.Mutex
	entries map[entryKey]string
	sets    int
	failFor map[string]error // service -> error returned by Set and Get
}

func newMemSecretStore() *memSecretStore {
	return &memSecretStore{
		entries: make(map[entryKey]string),
		failFor: make(map[string]error),
	}
}

func (m *memSecretStore) Set(_ context.Context, service, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[service]; err != nil {
		return err
	}
	m.sets++
	m.entries[entryKey{service, username}] = password
	return nil
}

func (m *memSecretStore) Get(_ context.Context, service, username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[service]; err != nil {
		return "", err
	}
	pw, ok := m.entries[entryKey{service, username}]
	if !ok {
		return "", ErrSecretNotFound
	}
	return pw, nil
}

func (m *memSecretStore) Delete(_ context.Context, service, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failFor[service]; err != nil {
		return err
	}
	key := entryKey{service, username}
	if _, ok := m.entries[key]; !ok {
		return ErrSecretNotFound
	}
	delete(m.entries, key)
	return nil
}

func (m *memSecretStore) get(service, username string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pw, ok := m.entries[entryKey{service, username}]
	return pw, ok
}

// hangingSecretStore never answers and ignores its context
type hangingSecretStore struct {
	release chan struct{}
}

func (h *hangingSecretStore) Set(context.Context, string, string, string) error {
	<-h.release
	return nil
}

func (h *hangingSecretStore) Get(context.Context, string, string) (string, error) {
	<-h.release
	return "", errors.New("released")
}

func (h *hangingSecretStore) Delete(context.Context, string, string) error {
	<-h.release
	return nil
}

// hookSecretStore runs onSet before every Set
type hookSecretStore struct {
	*memSecretStore
	onSet func()
}

func (h *hookSecretStore) Set(ctx context.Context, service, username, password string) error {
	h.onSet()
	return h.memSecretStore.Set(ctx, service, username, password)
}

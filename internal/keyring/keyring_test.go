package keyring

import (
	"context"
	"testing"

	"github.com/illarion/passlane/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestStoreSetGet(t *testing.T) {
	keyring.MockInit()
	s := New()
	ctx := context.Background()

	_, err := s.Get(ctx, "github.com", "alice")
	assert.ErrorIs(t, err, core.ErrSecretNotFound)

	require.NoError(t, s.Set(ctx, "github.com", "alice", "X1"))
	got, err := s.Get(ctx, "github.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, "X1", got)

	require.NoError(t, s.Delete(ctx, "github.com", "alice"))
	assert.ErrorIs(t, s.Delete(ctx, "github.com", "alice"), core.ErrSecretNotFound)
}

func TestStoreHonorsCancelledContext(t *testing.T) {
	keyring.MockInit()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, New().Set(ctx, "a", "b", "c"), context.Canceled)
}

func TestMasterPassword(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, SaveMasterPassword("vault-1", "master"))
	got, err := GetMasterPassword("vault-1")
	require.NoError(t, err)
	assert.Equal(t, "master", got)

	require.NoError(t, DeleteMasterPassword("vault-1"))
	_, err = GetMasterPassword("vault-1")
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

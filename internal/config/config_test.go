package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PASSLANE_HOME", home)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, DefaultKDFIterations, cfg.KDFIterations)
	assert.Equal(t, DefaultLockTimeout, cfg.LockTimeout)
	assert.Equal(t, DefaultKeyringTimeout, cfg.KeychainTimeout)
	assert.Equal(t, DefaultPasswordLength, cfg.PasswordLength)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.Warnings)
	assert.Nil(t, cfg.EnvPassword())

	assert.Equal(t, filepath.Join(home, "store.vault"), cfg.VaultPath())
	assert.Equal(t, filepath.Join(home, "store.lock"), cfg.LockPath())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PASSLANE_HOME", t.TempDir())
	t.Setenv("PASSLANE_PASSWORD", "master")
	t.Setenv("PASSLANE_KDF_ITERATIONS", "300000")
	t.Setenv("PASSLANE_LOCK_TIMEOUT", "2s")
	t.Setenv("PASSLANE_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []byte("master"), cfg.EnvPassword())
	assert.Equal(t, 300000, cfg.KDFIterations)
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDotEnvFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PASSLANE_HOME", home)
	t.Setenv("PASSLANE_PASSWORD_LENGTH", "32")
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"),
		[]byte("PASSLANE_KEYRING_TIMEOUT=3s\nPASSLANE_PASSWORD_LENGTH=12\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("PASSLANE_KEYRING_TIMEOUT") })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.KeychainTimeout)
	// Environment wins over .env
	assert.Equal(t, 32, cfg.PasswordLength)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("PASSLANE_HOME", t.TempDir())
	t.Setenv("PASSLANE_KDF_ITERATIONS", "10")
	t.Setenv("PASSLANE_LOG_LEVEL", "loud")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultKDFIterations, cfg.KDFIterations)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Len(t, cfg.Warnings, 2)

	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadIterationsAboveCeiling(t *testing.T) {
	t.Setenv("PASSLANE_HOME", t.TempDir())
	t.Setenv("PASSLANE_KDF_ITERATIONS", "999999999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultKDFIterations, cfg.KDFIterations)
	assert.Len(t, cfg.Warnings, 1)
}

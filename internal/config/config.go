// Package config loads passlane settings from the environment and an
// optional .env file in the passlane home directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/illarion/passlane/internal/core"
	"github.com/illarion/passlane/internal/crypto"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	HomeDirName           = ".passlane"
	DefaultKDFIterations  = 210000
	MinKDFIterations      = 10000
	DefaultLockTimeout    = 5 * time.Second
	DefaultKeyringTimeout = 10 * time.Second
	DefaultPasswordLength = 20
	DefaultLogLevel       = "warn"
)

type Config struct {
	Home            string        `env:"PASSLANE_HOME"`
	MasterPassword  string        `env:"PASSLANE_PASSWORD"`
	KDFIterations   int           `env:"PASSLANE_KDF_ITERATIONS" envDefault:"210000"`
	LockTimeout     time.Duration `env:"PASSLANE_LOCK_TIMEOUT" envDefault:"5s"`
	KeychainTimeout time.Duration `env:"PASSLANE_KEYRING_TIMEOUT" envDefault:"10s"`
	PasswordLength  int           `env:"PASSLANE_PASSWORD_LENGTH" envDefault:"20"`
	LogLevel        string        `env:"PASSLANE_LOG_LEVEL" envDefault:"warn"`

	// Warnings collects values that were replaced by defaults
	Warnings []string `env:"-"`
}

// Load reads the configuration. Variables already set in the environment
// take precedence over the .env file.
func Load() (*Config, error) {
	home := os.Getenv("PASSLANE_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		home = filepath.Join(userHome, HomeDirName)
	}

	if err := godotenv.Load(filepath.Join(home, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", filepath.Join(home, ".env"), err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.Home == "" {
		cfg.Home = home
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.KDFIterations < MinKDFIterations || c.KDFIterations > crypto.MaxIters {
		c.warn("PASSLANE_KDF_ITERATIONS=%d is outside %d..%d, using %d", c.KDFIterations, MinKDFIterations, crypto.MaxIters, DefaultKDFIterations)
		c.KDFIterations = DefaultKDFIterations
	}
	if c.LockTimeout <= 0 {
		c.warn("PASSLANE_LOCK_TIMEOUT must be positive, using %s", DefaultLockTimeout)
		c.LockTimeout = DefaultLockTimeout
	}
	if c.KeychainTimeout <= 0 {
		c.warn("PASSLANE_KEYRING_TIMEOUT must be positive, using %s", DefaultKeyringTimeout)
		c.KeychainTimeout = DefaultKeyringTimeout
	}
	if c.PasswordLength <= 0 {
		c.warn("PASSLANE_PASSWORD_LENGTH must be positive, using %d", DefaultPasswordLength)
		c.PasswordLength = DefaultPasswordLength
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		c.warn("PASSLANE_LOG_LEVEL=%q is unknown, using %s", c.LogLevel, DefaultLogLevel)
		c.LogLevel = DefaultLogLevel
	}
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// VaultPath returns the encrypted vault file location
func (c *Config) VaultPath() string {
	return filepath.Join(c.Home, core.VaultFileName)
}

// LockPath returns the lock/index file location
func (c *Config) LockPath() string {
	return filepath.Join(c.Home, core.LockFileName)
}

// EnvPassword returns a copy of the master password from the environment,
// or nil. The caller clears it.
func (c *Config) EnvPassword() []byte {
	if c.MasterPassword == "" {
		return nil
	}
	return []byte(c.MasterPassword)
}

// NewLogger builds the stderr logger at the configured level
func NewLogger(c *Config) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		level = zapcore.WarnLevel
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	sugar := logger.Sugar()
	for _, w := range c.Warnings {
		sugar.Warn(w)
	}
	return sugar, nil
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Transport: "stdio",
			HTTPPort:  8080,
		},
		Suite: SuiteConfig{
			Workers:           4,
			MaxDocuments:      50,
			DefaultTimeoutSec: 10,
		},
		Sandbox: SandboxConfig{
			OutputLimitBytes: 64 * 1024,
		},
		Store: StoreConfig{
			DocsRoot:    "./docs",
			HistoryPath: "./doctest-history.db",
		},
		Logging: LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		err := validConfig().validate()
		require.NoError(t, err)
	})

	t.Run("InvalidServerTransport", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Transport = "grpc" // Invalid transport

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server.transport")
	})

	t.Run("InvalidWorkers", func(t *testing.T) {
		cfg := validConfig()
		cfg.Suite.Workers = 0 // Invalid: must be positive

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "suite.workers must be positive")
	})

	t.Run("InvalidMaxDocuments", func(t *testing.T) {
		cfg := validConfig()
		cfg.Suite.MaxDocuments = -1

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "suite.max_documents must be positive")
	})

	t.Run("InvalidDefaultTimeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Suite.DefaultTimeoutSec = 0

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "suite.default_timeout_sec must be positive")
	})

	t.Run("InvalidOutputLimit", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.OutputLimitBytes = 0

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.output_limit_bytes must be positive")
	})

	t.Run("EmptyDocsRoot", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.DocsRoot = ""

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store.docs_root must not be empty")
	})

	t.Run("EmptyHistoryPath", func(t *testing.T) {
		cfg := validConfig()
		cfg.Store.HistoryPath = ""

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store.history_path must not be empty")
	})

	t.Run("HTTPTransportIsValid", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Transport = "http"

		err := cfg.validate()
		require.NoError(t, err)
	})
}

func TestDefaultTimeout(t *testing.T) {
	cfg := validConfig()
	cfg.Suite.DefaultTimeoutSec = 25

	assert.Equal(t, 25*time.Second, cfg.DefaultTimeout())
}

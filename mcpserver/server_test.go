package mcpserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/doctest/config"
	"github.com/isdmx/doctest/docstore"
	"github.com/isdmx/doctest/extractor"
	"github.com/isdmx/doctest/sandbox"
	"github.com/isdmx/doctest/suite"
)

// stubRunner implements suite.SandboxRunner without spawning anything
type stubRunner struct{}

func (stubRunner) Run(_ context.Context, example extractor.CodeExample, _ time.Duration) sandbox.ExecutionResult {
	return sandbox.ExecutionResult{
		ExampleID: example.ID,
		Language:  example.Language,
		Status:    sandbox.StatusPassed,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Transport: "stdio",
			HTTPPort:  8080,
		},
		Suite: config.SuiteConfig{
			Workers:           4,
			MaxDocuments:      50,
			DefaultTimeoutSec: 10,
		},
		Sandbox: config.SandboxConfig{
			OutputLimitBytes: 64 * 1024,
		},
		Store: config.StoreConfig{
			DocsRoot:    "./docs",
			HistoryPath: "./doctest-history.db",
		},
		Logging: config.LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
	}
}

func newTestEngine(t *testing.T) *suite.Engine {
	t.Helper()
	root := t.TempDir()
	return suite.NewEngine(zaptest.NewLogger(t),
		docstore.NewDirStore(root),
		docstore.NewYAMLConfigStore(root),
		stubRunner{})
}

func TestNewMCPServer(t *testing.T) {
	logger := zaptest.NewLogger(t)
	cfg := testConfig()
	engine := newTestEngine(t)

	server, err := New(cfg, logger, engine)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.Equal(t, cfg, server.config)
	assert.Equal(t, logger, server.logger)
	assert.Equal(t, engine, server.engine)
	assert.NotNil(t, server.mcpServer)
}

func TestGetMCPServer(t *testing.T) {
	server, err := New(testConfig(), zaptest.NewLogger(t), newTestEngine(t))
	require.NoError(t, err)

	assert.NotNil(t, server.GetMCPServer())
	assert.Equal(t, server.mcpServer, server.GetMCPServer())
}

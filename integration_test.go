package integration

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/doctest/config"
	"github.com/isdmx/doctest/docstore"
	"github.com/isdmx/doctest/history"
	"github.com/isdmx/doctest/logger"
	"github.com/isdmx/doctest/mcpserver"
	"github.com/isdmx/doctest/sandbox"
	"github.com/isdmx/doctest/suite"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Transport: "stdio",
			HTTPPort:  8080,
		},
		Suite: config.SuiteConfig{
			Workers:           2,
			MaxDocuments:      50,
			DefaultTimeoutSec: 10,
		},
		Sandbox: config.SandboxConfig{
			OutputLimitBytes: 64 * 1024,
		},
		Store: config.StoreConfig{
			DocsRoot:    "./docs",
			HistoryPath: ":memory:",
		},
		Logging: config.LoggingConfig{
			Mode:  "development",
			Level: "debug",
		},
	}
}

func writeDoc(t *testing.T, root, repo, rel, content string) {
	t.Helper()
	path := filepath.Join(root, repo, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// TestIntegrationConfigLoggerEngine verifies that the configuration, logger,
// stores, sandbox runner, and suite engine wire together the way main does.
func TestIntegrationConfigLoggerEngine(t *testing.T) {
	t.Run("ConfigAndLoggerIntegration", func(t *testing.T) {
		cfg := testConfig()

		testLogger, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
		require.NoError(t, err)
		require.NotNil(t, testLogger)

		testLogger.Info("Integration test started")
		_ = testLogger.Sync()
	})

	t.Run("EngineConstruction", func(t *testing.T) {
		cfg := testConfig()
		testLogger := zaptest.NewLogger(t)
		root := t.TempDir()

		runner := sandbox.NewRunner(testLogger,
			sandbox.WithOutputLimit(cfg.Sandbox.OutputLimitBytes))
		engine := suite.NewEngine(testLogger,
			docstore.NewDirStore(root),
			docstore.NewYAMLConfigStore(root),
			runner,
			suite.WithWorkers(cfg.Suite.Workers),
			suite.WithMaxDocuments(cfg.Suite.MaxDocuments))

		require.NotNil(t, engine)
	})

	t.Run("FullMCPIntegration", func(t *testing.T) {
		cfg := testConfig()
		mcpLogger, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
		require.NoError(t, err)

		root := t.TempDir()
		runner := sandbox.NewRunner(mcpLogger)
		engine := suite.NewEngine(mcpLogger,
			docstore.NewDirStore(root),
			docstore.NewYAMLConfigStore(root),
			runner)

		server, err := mcpserver.New(cfg, mcpLogger, engine)
		require.NoError(t, err)
		require.NotNil(t, server)
		require.NotNil(t, server.GetMCPServer())
	})
}

// TestIntegrationSuiteEndToEnd runs a real documentation suite against a
// real shell. Requires bash on PATH.
func TestIntegrationSuiteEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skipf("bash not available: %v", err)
	}

	testLogger := zaptest.NewLogger(t)
	root := t.TempDir()

	writeDoc(t, root, "repo", "guide.md", "# Guide\n\n"+
		"```bash\n"+
		"echo hello\n"+
		"# expected: hello\n"+
		"```\n\n"+
		"```bash\n"+
		"echo goodbye\n"+
		"# expected: not this\n"+
		"```\n\n"+
		"```python\n"+
		"print(1)\n"+
		"```\n")
	writeDoc(t, root, "repo", docstore.ConfigFileName, "enabled: true\nlanguages: [bash]\ntimeout: 10\n")

	hist, err := history.New(":memory:")
	require.NoError(t, err)
	defer hist.Close()

	runner := sandbox.NewRunner(testLogger, sandbox.WithTempRoot(t.TempDir()))
	engine := suite.NewEngine(testLogger,
		docstore.NewDirStore(root),
		docstore.NewYAMLConfigStore(root),
		runner,
		suite.WithHistory(hist),
		suite.WithWorkers(2))

	s, err := engine.Run(context.Background(), "repo", "")
	require.NoError(t, err)

	assert.Equal(t, 3, s.TotalExamples)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 0, s.Errors)
	assert.Equal(t, 1, s.Skipped)

	require.Len(t, s.Results, 3)
	assert.Equal(t, sandbox.StatusPassed, s.Results[0].Status)
	assert.Equal(t, "hello\n", s.Results[0].Output)
	assert.Equal(t, sandbox.StatusFailed, s.Results[1].Status)
	assert.Contains(t, s.Results[1].ErrorMessage, "expected output")
	assert.Equal(t, sandbox.StatusSkipped, s.Results[2].Status)

	summary := suite.GenerateCheckRunSummary(s)
	assert.Contains(t, summary, "Documentation Tests ❌")
	assert.Contains(t, summary, "### Failed Tests")

	runs, err := hist.Recent(context.Background(), "repo", 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].TotalExamples)
}

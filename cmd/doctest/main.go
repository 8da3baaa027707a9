// Package main is the entry point for the doctest MCP server.
//
// The doctest server extracts runnable code examples from markdown
// documentation, executes each one in an isolated, resource-bounded sandbox,
// and verifies observed behavior against expectations embedded in the
// documentation itself. The server supports both stdio and HTTP transports.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/isdmx/doctest/config"
	"github.com/isdmx/doctest/docstore"
	"github.com/isdmx/doctest/history"
	"github.com/isdmx/doctest/logger"
	"github.com/isdmx/doctest/mcpserver"
	"github.com/isdmx/doctest/sandbox"
	"github.com/isdmx/doctest/suite"
)

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			func(cfg *config.Config) *docstore.DirStore {
				return docstore.NewDirStore(cfg.Store.DocsRoot)
			},
			func(cfg *config.Config) *docstore.YAMLConfigStore {
				return docstore.NewYAMLConfigStore(cfg.Store.DocsRoot)
			},
			func(cfg *config.Config) (*history.Store, error) {
				return history.New(cfg.Store.HistoryPath)
			},

			func(cfg *config.Config, log *zap.Logger) *sandbox.Runner {
				opts := []sandbox.Option{
					sandbox.WithOutputLimit(cfg.Sandbox.OutputLimitBytes),
				}
				if cfg.Sandbox.TempRoot != "" {
					opts = append(opts, sandbox.WithTempRoot(cfg.Sandbox.TempRoot))
				}
				return sandbox.NewRunner(log, opts...)
			},

			func(cfg *config.Config, log *zap.Logger, docs *docstore.DirStore, cfgs *docstore.YAMLConfigStore, runner *sandbox.Runner, hist *history.Store) *suite.Engine {
				return suite.NewEngine(log, docs, cfgs, runner,
					suite.WithHistory(hist),
					suite.WithWorkers(cfg.Suite.Workers),
					suite.WithMaxDocuments(cfg.Suite.MaxDocuments))
			},

			// MCP Server
			mcpserver.New,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, server *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "stdio":
					go func() {
						if err := server.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				case "http":
					go func() {
						if err := server.ServeHTTP(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}

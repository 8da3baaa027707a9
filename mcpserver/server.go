package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/isdmx/doctest/config"
	"github.com/isdmx/doctest/suite"
)

// MCPServer represents the MCP server.
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	engine    *suite.Engine
	mcpServer *server.MCPServer
}

// New creates a new MCPServer around a suite engine.
func New(cfg *config.Config, logger *zap.Logger, engine *suite.Engine) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger,
		engine: engine,
	}

	logger.Info("configuration loaded",
		zap.String("server.transport", cfg.Server.Transport),
		zap.Int("server.http_port", cfg.Server.HTTPPort),
		zap.Int("suite.workers", cfg.Suite.Workers),
		zap.Int("suite.max_documents", cfg.Suite.MaxDocuments),
		zap.Int("suite.default_timeout_sec", cfg.Suite.DefaultTimeoutSec),
		zap.Int("sandbox.output_limit_bytes", cfg.Sandbox.OutputLimitBytes),
		zap.String("store.docs_root", cfg.Store.DocsRoot),
		zap.String("store.history_path", cfg.Store.HistoryPath))

	s.mcpServer = server.NewMCPServer("doctest-engine", "Documentation code-example verification engine")

	s.registerRunDocTestsTool()
	s.registerGetDocCoverageTool()

	return s, nil
}

// registerRunDocTestsTool registers the run_doc_tests tool.
func (s *MCPServer) registerRunDocTestsTool() {
	tool := mcp.Tool{
		Name:        "run_doc_tests",
		Description: "Extract and execute code examples from a repository's documentation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"repository_id": map[string]any{
					"type":        "string",
					"description": "Repository identifier",
				},
				"document_id": map[string]any{
					"type":        "string",
					"description": "Run only this document (optional; omit to run the whole repository)",
				},
			},
			Required: []string{"repository_id"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleRunDocTests)
}

// registerGetDocCoverageTool registers the get_doc_coverage tool.
func (s *MCPServer) registerGetDocCoverageTool() {
	tool := mcp.Tool{
		Name:        "get_doc_coverage",
		Description: "Report how many of a repository's documents contain executable examples",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"repository_id": map[string]any{
					"type":        "string",
					"description": "Repository identifier",
				},
			},
			Required: []string{"repository_id"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleGetDocCoverage)
}

// handleRunDocTests handles the run_doc_tests tool.
func (s *MCPServer) handleRunDocTests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repositoryID, err := request.RequireString("repository_id")
	if err != nil {
		return nil, fmt.Errorf("repository_id parameter is required: %w", err)
	}
	documentID := request.GetString("document_id", "")

	s.logger.Info("suite run requested",
		zap.String("repository_id", repositoryID),
		zap.String("document_id", documentID))

	result, err := s.engine.Run(ctx, repositoryID, documentID)
	if err != nil {
		s.logger.Error("suite run failed",
			zap.Error(err),
			zap.String("repository_id", repositoryID))
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Suite run failed: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	payload, err := json.Marshal(struct {
		Suite   *suite.DocTestSuite `json:"suite"`
		Summary string              `json:"summary"`
	}{
		Suite:   result,
		Summary: suite.GenerateCheckRunSummary(result),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize suite: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(payload),
			},
		},
	}, nil
}

// handleGetDocCoverage handles the get_doc_coverage tool.
func (s *MCPServer) handleGetDocCoverage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repositoryID, err := request.RequireString("repository_id")
	if err != nil {
		return nil, fmt.Errorf("repository_id parameter is required: %w", err)
	}

	stats, err := s.engine.CoverageStats(ctx, repositoryID)
	if err != nil {
		s.logger.Error("coverage stats failed",
			zap.Error(err),
			zap.String("repository_id", repositoryID))
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Coverage stats failed: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	payload, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize coverage stats: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(payload),
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP.
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx.
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

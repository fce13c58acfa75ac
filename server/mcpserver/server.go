// Package mcpserver exposes the mech wrapper as a Model Context Protocol tool over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/teranos/mechrelay/ai/tracker"
	"github.com/teranos/mechrelay/logger"
	"github.com/teranos/mechrelay/version"
)

// ToolName is the name of the single tool this server registers
const ToolName = "get_prompt"

// MCPServer wraps a Prompter and exposes it via Model Context Protocol
type MCPServer struct {
	prompter      tracker.Prompter
	defaultPrompt string
	logger        *zap.SugaredLogger
	server        *server.MCPServer
}

// New creates an MCP server whose get_prompt tool falls back to defaultPrompt
func New(prompter tracker.Prompter, defaultPrompt string, log *zap.SugaredLogger) *MCPServer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &MCPServer{
		prompter:      prompter,
		defaultPrompt: defaultPrompt,
		logger:        log.Named("mcp"),
	}

	s.server = server.NewMCPServer(
		"mechrelay",
		version.Get().Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	return s
}

func (s *MCPServer) registerTools() {
	cfg := s.prompter.Config()
	promptTool := mcp.NewTool(ToolName,
		mcp.WithDescription(fmt.Sprintf(
			"Send a prompt to mech agent %d (tool %s on %s) and return the delivered result",
			cfg.AgentID, cfg.Tool, cfg.ChainConfig)),
		mcp.WithString("prompt",
			mcp.Description(fmt.Sprintf("Prompt text (default: %q)", s.defaultPrompt)),
		),
	)
	s.server.AddTool(promptTool, s.handleGetPrompt)
}

// handleGetPrompt handles get_prompt tool calls
func (s *MCPServer) handleGetPrompt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := request.GetString("prompt", s.defaultPrompt)

	result, err := s.prompter.GetPrompt(logger.WithComponent(ctx, "mcp"), prompt)
	if err != nil {
		s.logger.Warnw("Tool call failed", logger.FieldError, err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	if text, ok := result.Value.(string); ok {
		return mcp.NewToolResultText(text), nil
	}
	data, err := json.Marshal(result.Value)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Serve runs the server on stdin/stdout until the input closes
func (s *MCPServer) Serve() error {
	return server.ServeStdio(s.server)
}

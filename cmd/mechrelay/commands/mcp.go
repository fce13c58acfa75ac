package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/mechrelay/ai/tracker"
	"github.com/teranos/mechrelay/logger"
	"github.com/teranos/mechrelay/server/mcpserver"
)

// McpCmd serves the get_prompt tool over the Model Context Protocol
var McpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the get_prompt tool over MCP (stdio)",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing one tool,
get_prompt, which sends a prompt to the configured mech agent.

Logs go to stderr so they never corrupt the protocol stream.`,
	RunE: runMcp,
}

func runMcp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	wrapper, _, err := newWrapper(cfg)
	if err != nil {
		return err
	}

	var prompter tracker.Prompter = wrapper
	database, history, err := openHistory(cfg)
	if err != nil {
		logger.Logger.Warnw("History unavailable, tool calls will not be recorded", logger.FieldError, err)
	} else if database != nil {
		defer database.Close()
		prompter = tracker.NewRecorder(wrapper, history, tracker.SourceMCP, logger.Logger)
	}

	logger.Logger.Infow("MCP server starting on stdio", logger.FieldTool, cfg.Mech.Tool)
	return mcpserver.New(prompter, cfg.DefaultPrompt(), logger.Logger).Serve()
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/mechrelay/am"
	"github.com/teranos/mechrelay/cmd/mechrelay/commands"
	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/logger"
)

var rootCmd = &cobra.Command{
	Use:   "mechrelay",
	Short: "mechrelay - HTTP relay for AI mech agents",
	Long: `mechrelay - HTTP relay for AI mech agents.

mechrelay turns GET /get-prompt?prompt=... into an on-chain request to a mech
agent and answers with the delivered result.

Available commands:
  server  - Start the HTTP relay
  prompt  - Send one prompt from the command line
  mcp     - Serve the get_prompt tool over MCP (stdio)
  doctor  - Check the mech client and key file
  history - Show recorded interactions
  am      - Manage configuration ("I am")

Examples:
  mechrelay server                 # Start on 127.0.0.1:5000
  mechrelay prompt "Hello"         # One-off prompt
  mechrelay am show                # Show current configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		am.SetConfigFile(configPath)

		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if !cmd.Flags().Changed("json-logs") {
			if cfg, err := am.Load(); err == nil {
				jsonLogs = cfg.Log.JSON
			}
		}
		// JSON logs go to stdout, which the MCP stdio transport owns
		if cmd.Name() == "mcp" {
			jsonLogs = false
		}

		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (replaces the am.toml search)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON (overrides log.json)")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DoctorCmd)
	rootCmd.AddCommand(commands.HistoryCmd)
	rootCmd.AddCommand(commands.McpCmd)
	rootCmd.AddCommand(commands.PromptCmd)
	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}

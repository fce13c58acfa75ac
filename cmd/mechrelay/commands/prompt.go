package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/mechrelay/ai/tracker"
	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/logger"
)

// PromptCmd sends one prompt without starting the server
var PromptCmd = &cobra.Command{
	Use:   "prompt [text...]",
	Short: "Send a prompt to the mech agent and print the result",
	Long: `Send a prompt to the configured mech agent and print the delivered result.

With no arguments the configured default prompt is used.

Examples:
  mechrelay prompt                              # Default prompt
  mechrelay prompt "Write a limerick about gas fees"
  mechrelay prompt --tool prediction-online "Will it rain?"
  mechrelay prompt --json "Hello"               # Print the server's response envelope`,
	RunE: runPrompt,
}

var (
	promptTool  string
	promptAgent int
	promptChain string
	promptJSON  bool
)

func init() {
	PromptCmd.Flags().StringVar(&promptTool, "tool", "", "Mech tool (overrides mech.tool)")
	PromptCmd.Flags().IntVar(&promptAgent, "agent", -1, "Mech agent ID (overrides mech.agent_id)")
	PromptCmd.Flags().StringVar(&promptChain, "chain", "", "Chain config (overrides mech.chain_config)")
	PromptCmd.Flags().BoolVarP(&promptJSON, "json", "j", false, "Print the {success, response} envelope")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if promptTool != "" {
		cfg.Mech.Tool = promptTool
	}
	if promptAgent >= 0 {
		cfg.Mech.AgentID = promptAgent
	}
	if promptChain != "" {
		cfg.Mech.ChainConfig = promptChain
	}

	prompt := cfg.DefaultPrompt()
	if len(args) > 0 {
		prompt = strings.Join(args, " ")
	}

	wrapper, _, err := newWrapper(cfg)
	if err != nil {
		return err
	}

	var prompter tracker.Prompter = wrapper
	database, history, err := openHistory(cfg)
	if err != nil {
		logger.Logger.Warnw("History unavailable, prompt will not be recorded", logger.FieldError, err)
	} else if database != nil {
		defer database.Close()
		prompter = tracker.NewRecorder(wrapper, history, tracker.SourceCLI, logger.Logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := prompter.GetPrompt(ctx, prompt)
	if promptJSON {
		var envelope any
		if err != nil {
			envelope = map[string]any{"success": false, "error": err.Error()}
		} else {
			envelope = map[string]any{"success": true, "response": result.Value}
		}
		data, mErr := json.MarshalIndent(envelope, "", "  ")
		if mErr != nil {
			return errors.Wrap(mErr, "failed to format result")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err != nil {
		return err
	}

	return printValue(cmd, result.Value)
}

// printValue prints strings verbatim and everything else as indented JSON
func printValue(cmd *cobra.Command, v any) error {
	if s, ok := v.(string); ok {
		fmt.Fprintln(cmd.OutOrStdout(), s)
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to format result")
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

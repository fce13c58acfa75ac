package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/mechrelay/am"
	"github.com/teranos/mechrelay/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage mechrelay configuration",
	Long: `am - Manage mechrelay configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (MECHRELAY_* prefix, plus PORT and MECH_PRIVATE_KEY_PATH)
3. Project config (./am.toml, searching up directories)
4. User config (~/.mechrelay/am.toml)
5. System config (/etc/mechrelay/am.toml)
6. Default values

--config replaces 3-5 with a single file.

Examples:
  mechrelay am show                    # Show current configuration
  mechrelay am show --format json      # Show configuration in JSON format
  mechrelay am get mech.tool           # Get specific config value
  mechrelay am validate                # Validate current configuration
  mechrelay am init                    # Write ./am.toml with the defaults`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current mechrelay configuration from all sources",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., mech.tool, server.port)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and which files were checked.

Lists all configuration sources in order of precedence, showing
which files exist and which are missing.`,
	RunE: runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the default settings",
	Long: `Write a config file containing every setting at its default value.
The path defaults to ./am.toml. An existing file is kept unless --force is
given, in which case it is rotated to .back1 first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAmInit,
}

var (
	configFormat string
	initForce    bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file (keeps a backup)")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Fprintf(out, "# mechrelay configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# mechrelay configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", configFormat)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	value, err := am.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), value)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	loaded := make(map[string]bool)
	for _, f := range am.LoadedFiles() {
		loaded[f] = true
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(cmd.OutOrStdout(), "  [DEFAULT]  Built-in defaults")

	if explicit := am.ExplicitConfigFile(); explicit != "" {
		status := "missing"
		if loaded[explicit] {
			status = "loaded"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  [CONFIG]   %s (%s, --config replaces the file search)\n", explicit, status)
		fmt.Fprintln(cmd.OutOrStdout(), "  [ENV]      MECHRELAY_* environment variables")
		return nil
	}

	for _, path := range am.ConfigPaths() {
		status := "missing"
		switch {
		case loaded[path]:
			status = "loaded"
		case fileExists(path):
			status = "present, not loaded (parse error?)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  [FILE]     %s (%s)\n", path, status)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "  [ENV]      MECHRELAY_* environment variables")
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := am.ProjectConfigName
	if len(args) == 1 {
		path = args[0]
	}

	if err := am.WriteConfig(path, am.DefaultConfig(), initForce); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote %s\n", path)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

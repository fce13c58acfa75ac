package am

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/teranos/mechrelay/errors"
)

// DefaultConfig returns the configuration produced by the defaults alone
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:                   DefaultServerHost,
			Port:                   DefaultServerPort,
			AllowedOrigins:         []string{"*"},
			MetricsEnabled:         true,
			RateLimitBurst:         5,
			ShutdownTimeoutSeconds: DefaultShutdownTimeoutSeconds,
		},
		Mech: MechConfig{
			AgentID:               DefaultAgentID,
			Tool:                  DefaultTool,
			ChainConfig:           DefaultChainConfig,
			ConfirmationType:      DefaultConfirmationType,
			PrivateKeyPath:        DefaultPrivateKeyPath,
			Command:               DefaultClientCommand,
			GatewayTimeoutSeconds: DefaultGatewayTimeoutSeconds,
			MinClientVersion:      DefaultMinClientVersion,
		},
		Prompt:  PromptConfig{Default: DefaultPromptText},
		History: HistoryConfig{Enabled: true, Path: DefaultHistoryPath},
	}
}

// WriteConfig encodes cfg as TOML to configPath. An existing file is kept
// only when force is set, in which case it is rotated into .back1..3 first.
func WriteConfig(configPath string, cfg *Config, force bool) error {
	if _, err := os.Stat(configPath); err == nil {
		if !force {
			return errors.WithHint(
				errors.Newf("%s already exists", configPath),
				"use --force to overwrite (the current file is kept as .back1)")
		}
		if err := createBackup(configPath); err != nil {
			return errors.Wrap(err, "failed to create backup")
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# mechrelay configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}

	if dir := filepath.Dir(configPath); dir != "" {
		if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
			return errors.Wrapf(err, "failed to create %s", dir)
		}
	}
	if err := os.WriteFile(configPath, buf.Bytes(), DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", configPath)
	}
	return nil
}

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil
	}

	// .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete old backup %s", back3)
	}

	for _, step := range [][2]string{{back2, back3}, {back1, back2}} {
		if _, err := os.Stat(step[0]); err != nil {
			continue
		}
		if err := os.Rename(step[0], step[1]); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", filepath.Base(step[0]))
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}
	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// Package am loads and validates mechrelay configuration ("I am").
package am

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/teranos/mechrelay/ai/mech"
)

// Config represents the mechrelay configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" toml:"server" yaml:"server" json:"server"`
	Mech    MechConfig    `mapstructure:"mech" toml:"mech" yaml:"mech" json:"mech"`
	Prompt  PromptConfig  `mapstructure:"prompt" toml:"prompt" yaml:"prompt" json:"prompt"`
	History HistoryConfig `mapstructure:"history" toml:"history" yaml:"history" json:"history"`
	Log     LogConfig     `mapstructure:"log" toml:"log" yaml:"log" json:"log"`
}

// ServerConfig configures the HTTP relay
type ServerConfig struct {
	Host                   string   `mapstructure:"host" toml:"host" yaml:"host" json:"host"`
	Port                   int      `mapstructure:"port" toml:"port" yaml:"port" json:"port"`
	AllowedOrigins         []string `mapstructure:"allowed_origins" toml:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"` // "*" = any origin
	MetricsEnabled         bool     `mapstructure:"metrics_enabled" toml:"metrics_enabled" yaml:"metrics_enabled" json:"metrics_enabled"`
	RateLimitRPS           float64  `mapstructure:"rate_limit_rps" toml:"rate_limit_rps" yaml:"rate_limit_rps" json:"rate_limit_rps"` // 0 = unlimited
	RateLimitBurst         int      `mapstructure:"rate_limit_burst" toml:"rate_limit_burst" yaml:"rate_limit_burst" json:"rate_limit_burst"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds" toml:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds" json:"shutdown_timeout_seconds"`
}

// MechConfig configures the interaction with the mech network
type MechConfig struct {
	AgentID               int    `mapstructure:"agent_id" toml:"agent_id" yaml:"agent_id" json:"agent_id"`
	Tool                  string `mapstructure:"tool" toml:"tool" yaml:"tool" json:"tool"`
	ChainConfig           string `mapstructure:"chain_config" toml:"chain_config" yaml:"chain_config" json:"chain_config"`
	ConfirmationType      string `mapstructure:"confirmation_type" toml:"confirmation_type" yaml:"confirmation_type" json:"confirmation_type"`
	PrivateKeyPath        string `mapstructure:"private_key_path" toml:"private_key_path" yaml:"private_key_path" json:"private_key_path"`
	Command               string `mapstructure:"command" toml:"command" yaml:"command" json:"command"`                                     // e.g. "mechx" or "poetry run mechx"
	TimeoutSeconds        int    `mapstructure:"timeout_seconds" toml:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds"` // 0 = wait indefinitely
	GatewayTimeoutSeconds int    `mapstructure:"gateway_timeout_seconds" toml:"gateway_timeout_seconds" yaml:"gateway_timeout_seconds" json:"gateway_timeout_seconds"`
	MinClientVersion      string `mapstructure:"min_client_version" toml:"min_client_version" yaml:"min_client_version" json:"min_client_version"` // semver constraint, "" = skip check
}

// PromptConfig configures prompt handling
type PromptConfig struct {
	Default string `mapstructure:"default" toml:"default" yaml:"default" json:"default"`
}

// HistoryConfig configures the interaction history database
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled" yaml:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" toml:"path" yaml:"path" json:"path"`
}

// LogConfig configures log output
type LogConfig struct {
	JSON bool `mapstructure:"json" toml:"json" yaml:"json" json:"json"`
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// Addr returns the host:port the server listens on
func (c *Config) Addr() string {
	host := c.Server.Host
	if host == "" {
		host = DefaultServerHost
	}
	port := c.Server.Port
	if port == 0 {
		port = DefaultServerPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// ShutdownTimeout returns the graceful shutdown budget
func (c *Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		return DefaultShutdownTimeoutSeconds * time.Second
	}
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// DefaultPrompt returns the prompt used when a caller supplies none
func (c *Config) DefaultPrompt() string {
	if c.Prompt.Default == "" {
		return DefaultPromptText
	}
	return c.Prompt.Default
}

// MechSettings converts the mech section into the wrapper's configuration.
func (c *Config) MechSettings() mech.Config {
	return mech.Config{
		AgentID:          c.Mech.AgentID,
		Tool:             c.Mech.Tool,
		ChainConfig:      c.Mech.ChainConfig,
		ConfirmationType: mech.ConfirmationType(c.Mech.ConfirmationType),
		PrivateKeyPath:   c.Mech.PrivateKeyPath,
	}
}

// MechTimeout returns the per-interaction timeout (0 = none)
func (c *Config) MechTimeout() time.Duration {
	if c.Mech.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Mech.TimeoutSeconds) * time.Second
}

// GatewayTimeout returns the timeout for fetching delivered results
func (c *Config) GatewayTimeout() time.Duration {
	if c.Mech.GatewayTimeoutSeconds <= 0 {
		return DefaultGatewayTimeoutSeconds * time.Second
	}
	return time.Duration(c.Mech.GatewayTimeoutSeconds) * time.Second
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Server: %s, Mech: {Agent: %d, Tool: %s, Chain: %s}, History: %t}",
		c.Addr(), c.Mech.AgentID, c.Mech.Tool, c.Mech.ChainConfig, c.History.Enabled)
}

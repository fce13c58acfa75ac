package am

import (
	"github.com/spf13/viper"
)

// Default values
const (
	DefaultServerHost             = "127.0.0.1"
	DefaultServerPort             = 5000 // the port the web frontend proxies /get-prompt to
	DefaultShutdownTimeoutSeconds = 10
	DefaultGatewayTimeoutSeconds  = 60

	DefaultPromptText = "Write a Haiku about web3 hackathons?"

	DefaultAgentID          = 2
	DefaultTool             = "openai-gpt-3.5-turbo"
	DefaultChainConfig      = "celo"
	DefaultConfirmationType = "on-chain"
	DefaultPrivateKeyPath   = "ethereum_private_key.txt"
	DefaultClientCommand    = "mechx"
	DefaultMinClientVersion = ">= 0.2.0"

	DefaultHistoryPath = "mechrelay.db"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", DefaultServerHost)
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.metrics_enabled", true)
	v.SetDefault("server.rate_limit_rps", 0.0) // Unlimited
	v.SetDefault("server.rate_limit_burst", 5)
	v.SetDefault("server.shutdown_timeout_seconds", DefaultShutdownTimeoutSeconds)

	// Mech defaults
	v.SetDefault("mech.agent_id", DefaultAgentID)
	v.SetDefault("mech.tool", DefaultTool)
	v.SetDefault("mech.chain_config", DefaultChainConfig)
	v.SetDefault("mech.confirmation_type", DefaultConfirmationType)
	v.SetDefault("mech.private_key_path", DefaultPrivateKeyPath)
	v.SetDefault("mech.command", DefaultClientCommand)
	v.SetDefault("mech.timeout_seconds", 0) // Block until the mech delivers
	v.SetDefault("mech.gateway_timeout_seconds", DefaultGatewayTimeoutSeconds)
	v.SetDefault("mech.min_client_version", DefaultMinClientVersion)

	v.SetDefault("prompt.default", DefaultPromptText)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", DefaultHistoryPath)

	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to environment variables
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("mech.private_key_path", "MECHRELAY_PRIVATE_KEY_PATH", "MECH_PRIVATE_KEY_PATH")
	v.BindEnv("history.path", "MECHRELAY_HISTORY_PATH")
	v.BindEnv("server.port", "MECHRELAY_PORT", "PORT")
}

package am

import (
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/mechrelay/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Server port: 0 falls back to the default, negative or out of range is invalid
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewConfigError("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	// Rate limiting: 0 = disabled, negative = invalid
	if c.Server.RateLimitRPS < 0 {
		return errors.NewConfigError("server.rate_limit_rps must be >= 0, got %f", c.Server.RateLimitRPS)
	}
	if c.Server.RateLimitRPS > 0 && c.Server.RateLimitBurst <= 0 {
		return errors.NewConfigError("server.rate_limit_burst must be > 0 when rate limiting is enabled, got %d", c.Server.RateLimitBurst)
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		return errors.NewConfigError("server.shutdown_timeout_seconds must be >= 0, got %d", c.Server.ShutdownTimeoutSeconds)
	}

	if err := c.MechSettings().Validate(); err != nil {
		return errors.Mark(err, errors.ErrInvalidConfig)
	}

	if c.Mech.Command == "" {
		return errors.NewConfigError("mech.command cannot be empty")
	}
	if c.Mech.TimeoutSeconds < 0 {
		return errors.NewConfigError("mech.timeout_seconds must be >= 0, got %d", c.Mech.TimeoutSeconds)
	}
	if c.Mech.GatewayTimeoutSeconds < 0 {
		return errors.NewConfigError("mech.gateway_timeout_seconds must be >= 0, got %d", c.Mech.GatewayTimeoutSeconds)
	}
	if c.Mech.MinClientVersion != "" {
		if _, err := semver.NewConstraint(c.Mech.MinClientVersion); err != nil {
			return errors.NewConfigError("mech.min_client_version %q is not a valid constraint: %v", c.Mech.MinClientVersion, err)
		}
	}

	if c.History.Enabled && c.History.Path == "" {
		return errors.NewConfigError("history.path cannot be empty when history is enabled")
	}

	return nil
}

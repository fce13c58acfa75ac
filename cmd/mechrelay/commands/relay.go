package commands

import (
	"github.com/teranos/mechrelay/ai/mech"
	"github.com/teranos/mechrelay/am"
	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/internal/httpclient"
	"github.com/teranos/mechrelay/logger"
)

// loadConfig loads and validates the configuration cascade
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// newClient builds the mech client runner from configuration
func newClient(cfg *am.Config) (*mech.CLIInteractor, error) {
	return mech.NewCLIInteractor(mech.CLIOptions{
		Command: cfg.Mech.Command,
		Timeout: cfg.MechTimeout(),
		Gateway: httpclient.NewSaferClient(cfg.GatewayTimeout()),
		Logger:  logger.Logger,
	})
}

// newWrapper builds the interaction wrapper every entry point relays through
func newWrapper(cfg *am.Config) (*mech.Wrapper, *mech.CLIInteractor, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return mech.NewWrapper(cfg.MechSettings(), client, logger.Logger), client, nil
}

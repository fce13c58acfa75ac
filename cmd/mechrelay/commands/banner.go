package commands

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/teranos/mechrelay/am"
	"github.com/teranos/mechrelay/logger"
	"github.com/teranos/mechrelay/version"
)

// printStartupBanner prints the user-friendly startup message
func printStartupBanner(verbosity int, cfg *am.Config) {
	versionInfo := version.Get()

	pterm.DefaultHeader.WithFullWidth(false).Println("mechrelay")

	history := "disabled"
	if cfg.History.Enabled {
		history = cfg.History.Path
	}
	metrics := "disabled"
	if cfg.Server.MetricsEnabled {
		metrics = "/metrics"
	}
	rateLimit := "unlimited"
	if cfg.Server.RateLimitRPS > 0 {
		rateLimit = fmt.Sprintf("%g req/s per client (burst %d)", cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	}

	pterm.DefaultTable.WithData(pterm.TableData{
		{"Version", fmt.Sprintf("%s (commit %s)", versionInfo.Version, versionInfo.Short())},
		{"Verbosity", logger.LevelName(verbosity)},
		{"Agent", fmt.Sprintf("%d", cfg.Mech.AgentID)},
		{"Tool", cfg.Mech.Tool},
		{"Chain", cfg.Mech.ChainConfig},
		{"Confirmation", cfg.Mech.ConfirmationType},
		{"Timeout", formatDuration(cfg.MechTimeout())},
		{"History", history},
		{"Metrics", metrics},
		{"Rate limit", rateLimit},
	}).Render()

	pterm.Info.Printf("Listening on http://%s/get-prompt\n", cfg.Addr())
	pterm.Info.Println("Press Ctrl+C to stop")
}

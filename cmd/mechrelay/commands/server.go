package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/mechrelay/ai/mech"
	"github.com/teranos/mechrelay/am"
	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/logger"
	"github.com/teranos/mechrelay/server"
)

// ServerCmd starts the HTTP relay
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   "Start the HTTP relay",
	Long: `Start the HTTP relay. GET /get-prompt?prompt=... sends the prompt to the
configured mech agent and answers with {"success": true, "response": ...}.

The server also serves /health, /api/interactions, /api/interactions/stats
and, when enabled, /metrics. Configuration file changes to the mech agent,
tool, chain, default prompt and CORS origins apply without a restart.`,
	RunE: runServer,
}

var (
	serverPort     int
	serverHost     string
	serverNoWatch  bool
	serverNoChecks bool
)

func init() {
	ServerCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Port to listen on (overrides server.port)")
	ServerCmd.Flags().StringVar(&serverHost, "host", "", "Interface to bind (overrides server.host)")
	ServerCmd.Flags().BoolVar(&serverNoWatch, "no-watch", false, "Do not reload configuration when the file changes")
	ServerCmd.Flags().BoolVar(&serverNoChecks, "skip-checks", false, "Skip startup checks of the mech client and key file")
}

func runServer(cmd *cobra.Command, args []string) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = 1
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServerFlags(cfg)

	wrapper, client, err := newWrapper(cfg)
	if err != nil {
		return err
	}

	if !serverNoChecks {
		// Failures are warnings: the server still answers, with 500s
		checks := mech.Preflight(cmd.Context(), mech.PreflightOptions{
			Client:           client,
			Config:           cfg.MechSettings(),
			MinClientVersion: cfg.Mech.MinClientVersion,
		})
		for _, c := range checks {
			if !c.OK() {
				pterm.Warning.Printf("%s: %v\n", c.Name, c.Err)
				for _, hint := range errors.GetAllHints(c.Err) {
					pterm.Println("  " + hint)
				}
			}
		}
	}

	database, history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	srv, err := server.NewRelayServer(server.Options{
		Prompter:       wrapper,
		History:        history,
		DefaultPrompt:  cfg.DefaultPrompt(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MetricsEnabled: cfg.Server.MetricsEnabled,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Logger:         logger.Logger,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	if !serverNoWatch {
		if watcher := watchConfig(cfg, wrapper, srv); watcher != nil {
			defer watcher.Stop()
		}
	}

	printStartupBanner(verbosity, cfg)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe(cfg.Addr())
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return errors.Wrap(err, "server stopped unexpectedly")
	case <-sigChan:
		pterm.Info.Println("Shutting down gracefully (press Ctrl+C again to force)...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Shutdown(ctx)
		}()

		select {
		case err := <-shutdownDone:
			if err != nil {
				return errors.Wrap(err, "shutdown error")
			}
			<-errChan
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			pterm.Warning.Println("Force shutdown - exiting immediately")
			os.Exit(1)
			return nil
		}
	}
}

// applyServerFlags lets command line flags win over every config source
func applyServerFlags(cfg *am.Config) {
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
}

// watchConfig reloads settings that can change at runtime from the highest
// precedence config file. Returns nil when there is no file to watch.
func watchConfig(initial *am.Config, wrapper *mech.Wrapper, srv *server.RelayServer) *am.ConfigWatcher {
	files := am.LoadedFiles()
	if len(files) == 0 {
		logger.Logger.Debugw("No config file loaded, hot reload disabled")
		return nil
	}
	path := files[len(files)-1]

	watcher, err := am.NewConfigWatcher(path, nil, logger.Logger.Named("config"))
	if err != nil {
		logger.Logger.Warnw("Config hot reload unavailable", logger.FieldFile, path, logger.FieldError, err)
		return nil
	}

	watcher.OnReload(func(cfg *am.Config) error {
		applyServerFlags(cfg)
		wrapper.SetConfig(cfg.MechSettings())
		srv.SetDefaultPrompt(cfg.DefaultPrompt())
		srv.SetAllowedOrigins(cfg.Server.AllowedOrigins)

		if restart := restartRequired(initial, cfg); len(restart) > 0 {
			logger.Logger.Warnw("Some changed settings apply only after a restart", "settings", restart)
		}
		return nil
	})
	watcher.Start()
	logger.Logger.Infow("Watching config for changes", logger.FieldFile, path)
	return watcher
}

// restartRequired names the settings that differ but are fixed for the process lifetime
func restartRequired(old, cfg *am.Config) []string {
	var keys []string
	if old.Addr() != cfg.Addr() {
		keys = append(keys, "server.host/port")
	}
	if old.Server.MetricsEnabled != cfg.Server.MetricsEnabled {
		keys = append(keys, "server.metrics_enabled")
	}
	if old.Server.RateLimitRPS != cfg.Server.RateLimitRPS || old.Server.RateLimitBurst != cfg.Server.RateLimitBurst {
		keys = append(keys, "server.rate_limit_*")
	}
	if old.Mech.Command != cfg.Mech.Command || old.Mech.TimeoutSeconds != cfg.Mech.TimeoutSeconds {
		keys = append(keys, "mech.command/timeout_seconds")
	}
	if old.History != cfg.History {
		keys = append(keys, "history")
	}
	return keys
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "none"
	}
	return fmt.Sprint(d)
}

package commands

import (
	"database/sql"

	"github.com/teranos/mechrelay/am"
	"github.com/teranos/mechrelay/ai/tracker"
	"github.com/teranos/mechrelay/db"
	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/logger"
)

// openHistory opens and migrates the interaction history database.
// It returns nil, nil, nil when history is disabled.
func openHistory(cfg *am.Config) (*sql.DB, *tracker.InteractionTracker, error) {
	if !cfg.History.Enabled {
		return nil, nil, nil
	}

	dbPath := cfg.History.Path
	if dbPath == "" {
		dbPath = am.DefaultHistoryPath
	}

	database, err := db.OpenWithMigrations(dbPath, logger.Logger)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open history database at %s", dbPath)
	}

	return database, tracker.NewInteractionTracker(database), nil
}

// requireHistory is openHistory for commands that are meaningless without it
func requireHistory(cfg *am.Config) (*sql.DB, *tracker.InteractionTracker, error) {
	if !cfg.History.Enabled {
		return nil, nil, errors.WithHint(
			errors.New("interaction history is disabled"),
			"set history.enabled = true in am.toml")
	}
	return openHistory(cfg)
}

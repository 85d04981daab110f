package main

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/janekbaraniewski/tokentrack/internal/config"
	"github.com/janekbaraniewski/tokentrack/internal/providers"
	"github.com/janekbaraniewski/tokentrack/internal/store"
	"github.com/janekbaraniewski/tokentrack/internal/tracker"
)

// newTracker builds the tracker over the configured stores. The sqlite
// close function is non-nil only for the sqlite history backend.
func newTracker(cfg config.Config, logger zerolog.Logger) (*tracker.Tracker, func(), error) {
	dataDir := store.DataDir()
	snapshots := store.NewSnapshotFile(filepath.Join(dataDir, "snapshots.json"), logger)

	var history store.HistoryStore
	cleanup := func() {}
	if cfg.HistoryBackend == "sqlite" {
		db, err := store.OpenSQLiteHistory(filepath.Join(dataDir, "history.db"), logger)
		if err != nil {
			return nil, nil, err
		}
		history = db
		cleanup = func() { _ = db.Close() }
	} else {
		history = store.NewHistoryFile(filepath.Join(dataDir, "history.json"), logger)
	}

	retention := tracker.DefaultRetention
	if cfg.RetentionDays > 0 {
		retention = time.Duration(cfg.RetentionDays) * 24 * time.Hour
	}

	t := tracker.New(providers.NewRegistry(logger), snapshots, history, retention, logger)
	return t, cleanup, nil
}

package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/janekbaraniewski/tokentrack/internal/config"
	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/janekbaraniewski/tokentrack/internal/tui"
)

func runDashboard(cfg config.Config, logger zerolog.Logger) error {
	t, cleanup, err := newTracker(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	// Credential or settings edits take effect on the next refresh; the
	// watcher only logs so that debug runs show the reload happening.
	watcher, err := config.Watch(config.ConfigDir(), func() {
		logger.Info().Msg("configuration changed, next refresh picks it up")
	}, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("config watcher unavailable")
	} else {
		defer watcher.Close()
	}

	interval := time.Duration(cfg.UI.RefreshIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	// The tracker's ticker owns the refresh cadence; completed cycles are
	// pushed into the program. The model only triggers refreshes for the
	// manual `r` key.
	program := tea.NewProgram(tui.NewModel(t, 0), tea.WithAltScreen())

	t.OnUpdate(func(snapshots map[core.ProviderID]core.UsageSnapshot) {
		program.Send(tui.SnapshotsMsg(snapshots))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t.Start(ctx, interval)
	defer t.Stop()

	_, err = program.Run()
	return err
}

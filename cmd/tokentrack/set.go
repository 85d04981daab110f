package main

import (
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokentrack/internal/config"
	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/janekbaraniewski/tokentrack/internal/tui"
)

func newSetCommand(logger zerolog.Logger) *cobra.Command {
	var limit float64

	cmd := &cobra.Command{
		Use:   "set <provider> <remaining>",
		Short: "Manually override a provider's remaining amount.",
		Long: `Manually override a provider's remaining amount, for providers whose
balance is read off a console rather than an API. The override flows through
the same cache, history and persistence path as a fetched snapshot.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := core.ParseProviderID(args[0])
			if !ok {
				return fmt.Errorf("unknown provider %q", args[0])
			}
			remaining, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("remaining must be a number: %q", args[1])
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			t, cleanup, err := newTracker(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			snap := t.SetManual(id, remaining, limit)
			fmt.Printf("%s: %s of %s remaining\n",
				core.DisplayName(id),
				tui.FormatAmount(snap.Remaining, snap.Unit),
				tui.FormatAmount(snap.Limit, snap.Unit),
			)
			return nil
		},
	}

	cmd.Flags().Float64Var(&limit, "limit", 0, "known limit, 0 when unknown")
	return cmd
}

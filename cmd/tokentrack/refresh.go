package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokentrack/internal/config"
	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/janekbaraniewski/tokentrack/internal/tui"
)

func newRefreshCommand(logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh cycle and print the resulting snapshots.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			t, cleanup, err := newTracker(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			snapshots := t.RefreshAll(cmd.Context())
			printSnapshotTable(snapshots, t.LastErrors(), time.Now())
			return nil
		},
	}
}

func printSnapshotTable(snapshots map[core.ProviderID]core.UsageSnapshot, errs map[core.ProviderID]error, now time.Time) {
	if len(snapshots) == 0 {
		fmt.Println("No providers configured. Add an API key with `tokentrack key <provider> <value>`.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tREMAINING\tLIMIT\tBURN/MIN\tDEPLETES\tUPDATED\tSTATUS")
	for _, id := range core.AllProviderIDs() {
		snap, ok := snapshots[id]
		if !ok {
			continue
		}
		status := "ok"
		if err := errs[id]; err != nil {
			status = "stale: " + err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			core.DisplayName(id),
			tui.FormatAmount(snap.Remaining, snap.Unit),
			tui.FormatAmount(snap.Limit, snap.Unit),
			tui.FormatBurnRate(snap.BurnRatePerMinute, snap.Unit),
			tui.FormatETA(snap, now),
			tui.FormatAge(snap.UpdatedAt, now),
			status,
		)
	}
	w.Flush()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/janekbaraniewski/tokentrack/internal/providers"
	"github.com/janekbaraniewski/tokentrack/internal/tui"
)

func newCheckCommand(logger zerolog.Logger) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check <provider>",
		Short: "Validate a provider's credentials with one live fetch.",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := core.ParseProviderID(args[0])
			if !ok {
				return fmt.Errorf("unknown provider %q", args[0])
			}
			outcome := checkProvider(cmd.Context(), providers.NewRegistry(logger), id, timeout)
			fmt.Println(outcome)
			return nil
		},
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "how long to wait for the provider")
	return cmd
}

type clientDirectory interface {
	Client(id core.ProviderID) (core.UsageClient, bool)
}

// checkProvider runs one live fetch with a bounded wait and reduces it to a
// single human-readable outcome line.
func checkProvider(ctx context.Context, dir clientDirectory, id core.ProviderID, timeout time.Duration) string {
	name := core.DisplayName(id)

	client, ok := dir.Client(id)
	if !ok {
		return fmt.Sprintf("%s: no credentials configured", name)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		snap core.UsageSnapshot
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		snap, err := client.Fetch(ctx, nil)
		ch <- result{snap, err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Sprintf("%s: timed out after %s", name, timeout)
	case r := <-ch:
		if errors.Is(r.err, context.DeadlineExceeded) {
			return fmt.Sprintf("%s: timed out after %s", name, timeout)
		}
		if r.err != nil {
			var fetchErr *core.FetchError
			if errors.As(r.err, &fetchErr) {
				return fmt.Sprintf("%s: credentials rejected (%s)", name, fetchErr.Error())
			}
			return fmt.Sprintf("%s: fetch failed (%v)", name, r.err)
		}
		return fmt.Sprintf("%s: ok, %s remaining", name, tui.FormatAmount(r.snap.Remaining, r.snap.Unit))
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokentrack/internal/config"
)

func newLogger() zerolog.Logger {
	if os.Getenv("TOKENTRACK_DEBUG") != "" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(io.Discard)
}

func main() {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Config path: %s\n", config.ConfigPath())
		os.Exit(1)
	}

	root := cobra.Command{
		Use:   "tokentrack",
		Short: "tokentrack is a terminal dashboard for tracking AI provider token usage and balances.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runDashboard(cfg, logger)
		},
	}

	root.AddCommand(
		newRefreshCommand(logger),
		newSetCommand(logger),
		newKeyCommand(),
		newCheckCommand(logger),
		newProvidersCommand(),
		newVersionCommand(),
		newUpdateCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

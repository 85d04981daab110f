package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokentrack/internal/appupdate"
	"github.com/janekbaraniewski/tokentrack/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tokentrack version.",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("tokentrack " + version.String())
		},
	}
}

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check whether a newer release is available.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{
				CurrentVersion: version.Version,
			})
			if err != nil {
				return err
			}

			if result.CurrentVersion == "" {
				fmt.Println("Running a development build, skipping the release check.")
				return nil
			}
			if !result.UpdateAvailable {
				fmt.Printf("tokentrack %s is up to date.\n", result.CurrentVersion)
				return nil
			}

			fmt.Printf("tokentrack %s is available (you have %s).\n", result.LatestVersion, result.CurrentVersion)
			fmt.Fprintf(os.Stdout, "Upgrade with:\n  %s\n", result.UpgradeHint)
			return nil
		},
	}
}

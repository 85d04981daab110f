package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokentrack/internal/config"
	"github.com/janekbaraniewski/tokentrack/internal/core"
)

func newProvidersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and their configuration state.",
		RunE: func(_ *cobra.Command, _ []string) error {
			creds, err := config.LoadCredentials()
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tID\tUNIT\tMODEL\tCONFIGURED")
			for _, id := range core.AllProviderIDs() {
				configured := "no"
				if creds.HasCredentials(id) {
					configured = "yes"
				}
				model := cfg.Provider(id).Model
				if model == "" {
					model = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					core.DisplayName(id), id, core.DefaultUnit(id).Label(), model, configured)
			}
			return w.Flush()
		},
	}
}

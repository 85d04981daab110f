package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/tokentrack/internal/config"
	"github.com/janekbaraniewski/tokentrack/internal/core"
)

func newKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "key <slot> <value>",
		Short: "Store a credential. An empty value removes it.",
		Long: `Store a credential in ` + config.CredentialsPath() + `.

Slots are provider IDs (openai, deepseek, zhipu) for API keys, plus
qwen.access_key and qwen.access_secret for the qwen monitoring pair.
Passing an empty value removes the slot.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			slot, value := args[0], args[1]
			if _, ok := core.ParseProviderID(slot); !ok &&
				slot != "qwen.access_key" && slot != "qwen.access_secret" {
				return fmt.Errorf("unknown credential slot %q", slot)
			}

			if err := config.SaveCredential(slot, value); err != nil {
				return err
			}
			if value == "" {
				fmt.Printf("Removed credential %s\n", slot)
			} else {
				fmt.Printf("Stored credential %s\n", slot)
			}
			return nil
		},
	}
}

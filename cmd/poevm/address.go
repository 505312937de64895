package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/poevm/genesis"
)

func newAddressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address <name>...",
		Short: "Prints the dev address derived from each name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, genesis.DevAddress(name)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/poevm/genesis"
)

func newGenesisCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genesis",
		Short: "Prints the default genesis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(genesis.Default())
		},
	}
}

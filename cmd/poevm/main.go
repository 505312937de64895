package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/poevm/cmd/poevm/version"
)

func init() {
	cobra.EnablePrefixMatching = true
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "poevm",
		Short:        "Proof-of-existence runtime",
		SuggestFor:   []string{"poevm"},
		SilenceUsage: true,
	}
	cmd.AddCommand(
		version.NewCommand(),
		newAddressCommand(),
		newGenesisCommand(),
		newRunCommand(),
	)
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "poevm failed %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}

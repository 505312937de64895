package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thesecretlab-dev/poevm/consts"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Prints out the version",
		Args:  cobra.NoArgs,
		RunE:  versionFunc,
	}
	return cmd
}

func versionFunc(cmd *cobra.Command, _ []string) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s@%s (%s)\n", consts.Name, consts.Version, consts.ID)
	return err
}

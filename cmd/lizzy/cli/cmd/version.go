package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balaji-balu/lizzy-client/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		// no configuration needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Lizzy Client", version.Version)
		},
	}
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newScaleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scale STACK_NAME STACK_VERSION NEW_SCALE",
		Short: "Rescale a stack",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid value for NEW_SCALE: %q is not a valid integer", args[2])
			}

			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			return a.orchestrator(cmd, client).Scale(cmd.Context(), args[0], args[1], count, a.cfg.Region)
		},
	}

	cmd.Flags().String("region", "", "AWS region ID, e.g. eu-west-1")
	cmd.Flags().StringP("remote", "r", "", "URL for the Lizzy agent")
	return cmd
}

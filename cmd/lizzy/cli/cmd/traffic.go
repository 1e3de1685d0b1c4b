package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/balaji-balu/lizzy-client/internal/console"
)

func newTrafficCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "traffic STACK_NAME [STACK_VERSION] [PERCENTAGE]",
		Short: "Manage stack traffic",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var percent *int
			if len(args) == 3 {
				p, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("invalid value for PERCENTAGE: %q is not a valid integer", args[2])
				}
				percent = &p
			}

			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			o := a.orchestrator(cmd, client)

			if percent == nil {
				return o.TrafficInfo(cmd.Context(), args[0], a.cfg.Region, output)
			}
			return o.SetTraffic(cmd.Context(), args[0], args[1], *percent, a.cfg.Region)
		},
	}

	flags := cmd.Flags()
	flags.String("region", "", "AWS region ID, e.g. eu-west-1")
	flags.StringP("remote", "r", "", "URL for the Lizzy agent")
	flags.StringVarP(&output, "output", "o", console.FormatText, "use alternative output format (text, json, tsv)")
	return cmd
}

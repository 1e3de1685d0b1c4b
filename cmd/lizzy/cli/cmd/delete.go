package cmd

import (
	"github.com/spf13/cobra"

	"github.com/balaji-balu/lizzy-client/internal/orchestrator"
	"github.com/balaji-balu/lizzy-client/internal/stackref"
)

func newDeleteCmd(a *app) *cobra.Command {
	var opts orchestrator.DeleteOptions

	cmd := &cobra.Command{
		Use:   "delete STACK_REF...",
		Short: "Delete Cloud Formation stacks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := stackref.Resolve(args)
			if err != nil {
				return err
			}

			client, err := a.client(cmd)
			if err != nil {
				return err
			}
			opts.Region = a.cfg.Region
			return a.orchestrator(cmd, client).Delete(cmd.Context(), refs, opts)
		},
	}

	flags := cmd.Flags()
	flags.String("region", "", "AWS region ID, e.g. eu-west-1")
	flags.StringP("remote", "r", "", "URL for the Lizzy agent")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "no-op mode: show what would be deleted")
	flags.BoolVarP(&opts.Force, "force", "f", false, "allow deleting multiple stacks")
	return cmd
}

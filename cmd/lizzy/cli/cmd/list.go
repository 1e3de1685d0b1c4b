package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/balaji-balu/lizzy-client/internal/console"
	"github.com/balaji-balu/lizzy-client/internal/orchestrator"
	"github.com/balaji-balu/lizzy-client/internal/stackref"
)

func newListCmd(a *app) *cobra.Command {
	var (
		opts  orchestrator.ListOptions
		watch int
	)

	cmd := &cobra.Command{
		Use:   "list [STACK_REF...]",
		Short: "List Lizzy stacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("watch") && (watch < 1 || watch > 300) {
				return fmt.Errorf("invalid value for --watch: %d is not in the valid range of 1 to 300", watch)
			}
			refs, err := stackref.ResolveNames(args)
			if err != nil {
				return err
			}

			client, err := a.client(cmd)
			if err != nil {
				return err
			}

			opts.References = refs
			opts.Region = a.cfg.Region
			opts.Watch = time.Duration(watch) * time.Second
			return a.orchestrator(cmd, client).List(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.All, "all", false, "show all stacks, including deleted ones")
	flags.String("region", "", "AWS region ID, e.g. eu-west-1")
	flags.StringP("remote", "r", "", "URL for the Lizzy agent")
	flags.IntVarP(&watch, "watch", "w", 0, "auto update the screen every X seconds")
	flags.StringVarP(&opts.Output, "output", "o", console.FormatText, "use alternative output format (text, json, tsv)")
	return cmd
}

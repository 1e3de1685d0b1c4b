package cmd

import (
	"fmt"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/balaji-balu/lizzy-client/internal/orchestrator"
	"github.com/balaji-balu/lizzy-client/pkg/senza"
)

var versionPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

func validateVersion(version string) error {
	if !versionPattern.MatchString(version) {
		return fmt.Errorf("invalid value for VERSION: version should only contain letters and numbers, got %q", version)
	}
	return nil
}

func newCreateCmd(a *app) *cobra.Command {
	var (
		opts          orchestrator.CreateOptions
		keepStacks    int
		traffic       int
		timeout       int
		parameterFile string
	)

	cmd := &cobra.Command{
		Use:   "create DEFINITION VERSION [PARAMETER...]",
		Short: "Create a new Cloud Formation stack from the given Senza definition file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			definition, version, parameters := args[0], args[1], args[2:]
			if err := validateVersion(version); err != nil {
				return err
			}

			def, err := senza.Load(cmd.Context(), definition)
			if err != nil {
				return fmt.Errorf("invalid value for DEFINITION: %w", err)
			}

			if parameterFile != "" {
				fromFile, err := senza.ReadParameterFile(parameterFile)
				if err != nil {
					return err
				}
				parameters = append(parameters, fromFile...)
			}

			client, err := a.client(cmd)
			if err != nil {
				return err
			}

			opts.SenzaYAML = def.Raw
			opts.Version = version
			opts.Parameters = parameters
			opts.Region = a.cfg.Region
			opts.CleanupTimeout = time.Duration(timeout) * time.Second
			if cmd.Flags().Changed("keep-stacks") {
				opts.KeepStacks = &keepStacks
			}
			if cmd.Flags().Changed("traffic") {
				opts.Traffic = &traffic
			}
			return a.orchestrator(cmd, client).Create(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.String("region", "", "AWS region ID, e.g. eu-west-1")
	flags.StringP("remote", "r", "", "URL for the Lizzy agent")
	flags.BoolVar(&opts.DisableRollback, "disable-rollback", false, "disable Cloud Formation rollback on failure")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "no-op mode: show what would be created")
	flags.BoolVarP(&opts.Force, "force", "f", false, "ignore failing validation checks")
	flags.StringArrayVarP(&opts.Tags, "tag", "t", nil, "tags to associate with the stack")
	flags.IntVar(&timeout, "timeout", 120, "total seconds to wait for related stacks to be ready")
	flags.IntVar(&keepStacks, "keep-stacks", 0, "number of old stacks to keep")
	flags.IntVar(&traffic, "traffic", 0, "percentage of traffic for the new stack")
	flags.StringVar(&parameterFile, "parameter-file", "", "YAML file with stack parameters")
	flags.DurationVar(&opts.MaxWait, "max-wait", 0, "give up waiting for the deployment after this long (0 waits forever)")
	return cmd
}

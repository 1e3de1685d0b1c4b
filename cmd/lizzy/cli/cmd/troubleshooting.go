package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	mark  = "✓"
	cross = "✕"
)

func newTroubleshootingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "troubleshooting",
		Short: "Check the metric reporting setup",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if !a.metrics.Available() {
				fmt.Fprintln(out, "Metrics Available:", cross)
				return
			}
			fmt.Fprintln(out, "Metrics Available:", mark)

			tokenURL := a.cfg.TokenURL
			if tokenURL == "" {
				tokenURL = cross
			}
			fmt.Fprintln(out, "  Oauth2 Access Token URL:", tokenURL)
			fmt.Fprintln(out, "  Credentials Dir:", a.cfg.CredentialsDir)
			fmt.Fprintln(out, "  Pushgateway URL:", a.cfg.Metrics.PushgatewayURL)

			a.metrics.TestMetric.Inc()
			if err := a.metrics.Push(cmd.Context()); err != nil {
				fmt.Fprintf(out, "  Reporting successful: %s\n", cross)
				for _, line := range strings.Split(err.Error(), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				return
			}
			fmt.Fprintln(out, "  Reporting successful:", mark)
		},
	}
}

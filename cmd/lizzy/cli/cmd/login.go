package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balaji-balu/lizzy-client/internal/token"
)

func newLoginCmd(a *app) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login --username NAME",
		Short: "Store the application password in the OS keyring",
		Long: `Reads the password of the OAuth2 application user from standard input and stores it
in the OS keyring, where it is used when user.json carries no password.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return errors.New("--username is required")
			}

			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			scanner := bufio.NewScanner(cmd.InOrStdin())
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				return errors.New("no password given")
			}
			password := strings.TrimRight(scanner.Text(), "\r")
			if password == "" {
				return errors.New("no password given")
			}

			if err := token.StorePassword(username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password for %s stored\n", username)
			a.log.Debug("password stored in keyring")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "application username from user.json")
	return cmd
}

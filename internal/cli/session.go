package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a session token",
		Long: `Store the platform session token used for every API call.

The token is read from --token, or from the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no token given; pass --token or pipe it on stdin")
				}
				token = strings.TrimSpace(line)
			}

			e, err := opts.newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			p, err := e.session.Login(token)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Signed in as %s (%s).\n", displayName(p.Name, p.ID), p.Role)
			if !p.Role.CanUseTasks() {
				fmt.Fprintln(out, "Note: the task board is only available to students and teachers.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Session token (JWT)")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			p, err := e.session.Principal()
			if errors.Is(err, credential.ErrNoToken) {
				fmt.Fprintln(out, "Not signed in.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "ID:     %s\n", p.ID)
			if p.Name != "" {
				fmt.Fprintf(out, "Name:   %s\n", p.Name)
			}
			if p.Email != "" {
				fmt.Fprintf(out, "Email:  %s\n", p.Email)
			}
			fmt.Fprintf(out, "Role:   %s\n", p.Role)
			access := "available"
			if !p.Role.CanUseTasks() {
				access = "not available"
			}
			fmt.Fprintf(out, "Board:  %s\n", access)
			return nil
		},
	}
}

func displayName(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

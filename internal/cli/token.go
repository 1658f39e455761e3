package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		secret string
		p      model.Principal
		role   string
		ttl    time.Duration
		login  bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development token for the local task API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.ID == "" {
				return errors.New("--sub is required")
			}
			p.Role = model.Role(role)

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if secret == "" {
				secret = cfg.Server.JWTSecret
			}

			token, err := credential.IssueToken([]byte(secret), p, ttl)
			if err != nil {
				return err
			}

			if !login {
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}

			e, err := opts.newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			if _, err := e.session.Login(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s).\n", displayName(p.Name, p.ID), p.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (default server.jwt_secret)")
	cmd.Flags().StringVar(&p.ID, "sub", "", "User id (token subject)")
	cmd.Flags().StringVar(&p.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&p.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&role, "role", string(model.RoleStudent), "Role: student, teacher or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().BoolVar(&login, "login", false, "Store the token as the current session instead of printing it")
	return cmd
}

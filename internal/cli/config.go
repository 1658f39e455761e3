package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/model"
	settings "github.com/nhle/taskboard/internal/ui/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit settings",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), opts.resolvedConfigPath())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}
				printConfig(cmd, cfg)
				return nil
			},
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Edit settings interactively",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := opts.loadConfig()
				if err != nil {
					return err
				}

				fields := settings.FieldsFrom(cfg)
				form := settings.NewForm(&fields).
					WithInput(cmd.InOrStdin()).
					WithOutput(cmd.OutOrStdout())
				if err := form.RunWithContext(cmd.Context()); err != nil {
					return err
				}
				if err := fields.Apply(cfg); err != nil {
					return err
				}

				path := opts.resolvedConfigPath()
				if err := model.SaveConfig(path, cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s.\n", path)
				return nil
			},
		},
	)
	return cmd
}

func printConfig(cmd *cobra.Command, cfg *model.AppConfig) {
	secret := "(unset)"
	if cfg.Server.JWTSecret != "" {
		secret = "(set)"
	}
	backend := cfg.Session.KeyringBackend
	if backend == "" {
		backend = "auto"
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"api.base_url", cfg.API.BaseURL},
		{"api.timeout_sec", fmt.Sprint(cfg.API.TimeoutSec)},
		{"api.max_retries", fmt.Sprint(cfg.API.MaxRetries)},
		{"session.poll_interval_ms", fmt.Sprint(cfg.Session.PollIntervalMS)},
		{"session.keyring_service", cfg.Session.KeyringService},
		{"session.keyring_backend", backend},
		{"session.keyring_dir", cfg.Session.KeyringDir},
		{"log.level", cfg.Log.Level},
		{"log.format", cfg.Log.Format},
		{"log.file", cfg.Log.File},
		{"server.addr", cfg.Server.Addr},
		{"server.db_path", cfg.Server.DBPath},
		{"server.jwt_secret", secret},
		{"display.sort", cfg.Display.Sort},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	tw.Flush()
}

package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/server"
	"github.com/nhle/taskboard/internal/store"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr, dbPath, secret string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local task API for development",
		Long: `Run a self-contained implementation of the platform task API backed by
SQLite. Point api.base_url at it and mint tokens with "taskboard token".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if dbPath == "" {
				dbPath = cfg.Server.DBPath
			}
			if secret == "" {
				secret = cfg.Server.JWTSecret
			}
			if secret == "" {
				return errors.New("a signing secret is required: set server.jwt_secret, TASKBOARD_SERVER_JWT_SECRET or --secret")
			}

			log, closeLog, err := opts.newLogger(cmd, cfg, false)
			if err != nil {
				return err
			}
			defer closeLog.Close()

			tasks, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer tasks.Close()

			srv, err := server.New(tasks, []byte(secret), logrus.NewEntry(log))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.WithField("db", dbPath).Info("task API starting")
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (default from config)")
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 signing secret (default from config)")
	return cmd
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/remote"
	"github.com/nhle/taskboard/internal/taskstore"
)

var (
	errNotSignedIn = errors.New("not signed in; run `taskboard login`")
	errNoAccess    = errors.New("the task board is not available for this account")
)

// env is the object graph a command runs against.
type env struct {
	cfg      *model.AppConfig
	log      *logrus.Logger
	closeLog io.Closer
	session  *credential.Session
	client   *remote.Client
	store    *taskstore.Store
}

func (o *rootOptions) resolvedConfigPath() string {
	if o.configPath == "" {
		return model.DefaultConfigPath()
	}
	return o.configPath
}

func (o *rootOptions) loadConfig() (*model.AppConfig, error) {
	return model.LoadConfig(o.resolvedConfigPath())
}

// newLogger builds the logger. The board owns the terminal, so without a
// log file its output is discarded.
func (o *rootOptions) newLogger(cmd *cobra.Command, cfg *model.AppConfig, tui bool) (*logrus.Logger, io.Closer, error) {
	fallback := cmd.ErrOrStderr()
	if tui {
		fallback = io.Discard
	}
	logCfg := cfg.Log
	if o.verbose {
		logCfg.Level = "debug"
	}
	return logging.New(logCfg, fallback)
}

func (o *rootOptions) newEnv(cmd *cobra.Command, tui bool) (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	log, closeLog, err := o.newLogger(cmd, cfg, tui)
	if err != nil {
		return nil, err
	}
	entry := logrus.NewEntry(log)

	vault, err := credential.OpenVault(cfg.Session)
	if err != nil {
		closeLog.Close()
		return nil, err
	}
	session := credential.NewSession(vault)

	client := remote.NewClient(cfg.API.BaseURL, session,
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		remote.WithMaxRetries(cfg.API.MaxRetries),
		remote.WithLogger(entry),
	)

	return &env{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		session:  session,
		client:   client,
		store:    taskstore.New(client, session, entry),
	}, nil
}

func (e *env) Close() {
	e.closeLog.Close()
}

// load refreshes the store and turns its session flags into errors.
func (e *env) load(ctx context.Context) error {
	e.store.Refresh(ctx)
	if !e.store.Authenticated() {
		return errNotSignedIn
	}
	if !e.store.AccessGranted() {
		return errNoAccess
	}
	if err := e.store.Err(); err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	return nil
}

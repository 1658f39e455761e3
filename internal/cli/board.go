package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/app"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/ui/board"
)

// runBoard opens the interactive board. The session watcher loads the
// tasks once a token is present and clears them on logout.
func runBoard(cmd *cobra.Command, opts *rootOptions) error {
	e, err := opts.newEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	entry := logrus.NewEntry(e.log)
	watcher := appsync.New(e.store, e.session, e.cfg.PollInterval(), entry)
	defer watcher.Stop()

	m := app.New(e.store, watcher, e.session, board.ParseSortMode(e.cfg.Display.Sort), entry)

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	return err
}

// Package cli wires configuration, logging, the session, and the task
// store into the taskboard command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the taskboard command tree. With no subcommand it
// opens the interactive board.
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "taskboard",
		Short: "Personal kanban board for the learning platform",
		Long: `taskboard keeps your platform to-do list on a three-lane board
(To Do, In Progress, Done) and in sync with the platform's task API.

Run without arguments for the interactive board, or use the subcommands
for scripting.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ~/.config/taskboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newMoveCmd(opts),
		newStatusCmd(opts),
		newRmCmd(opts),
		newClearCompletedCmd(opts),
		newServeCmd(opts),
		newTokenCmd(opts),
		newConfigCmd(opts),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskstore"
	"github.com/nhle/taskboard/internal/ui/board"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var sortBy, lane string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks by lane",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lanes := model.Lanes
			if lane != "" {
				l, err := model.ParseLane(lane)
				if err != nil {
					return err
				}
				lanes = []model.Lane{l}
			}

			e, err := opts.newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.load(cmd.Context()); err != nil {
				return err
			}

			if sortBy == "" {
				sortBy = e.cfg.Display.Sort
			}
			printLanes(cmd.OutOrStdout(), e.store, lanes, board.ParseSortMode(sortBy))
			return nil
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort", "", "Order lanes by \"updated\" or \"created\" (default from config)")
	cmd.Flags().StringVar(&lane, "lane", "", "Only show one lane")
	return cmd
}

func printLanes(out io.Writer, s *taskstore.Store, lanes []model.Lane, sortBy board.SortMode) {
	for i, lane := range lanes {
		tasks := s.ByStatus(lane)
		if sortBy == board.SortCreated {
			tasks = s.ByStatusCreatedOrder(lane)
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s (%d)\n", lane.Label(), len(tasks))

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, t := range tasks {
			stamp := t.UpdatedAt
			if sortBy == board.SortCreated {
				stamp = t.CreatedAt
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", shortID(t.ID), t.Title, humanize.Time(stamp))
		}
		tw.Flush()
	}

	if unlaned := s.Unlaned(); len(unlaned) > 0 {
		fmt.Fprintf(out, "\nUnrecognized status (%d)\n", len(unlaned))
		for _, t := range unlaned {
			fmt.Fprintf(out, "  %s  %s  [%s]\n", shortID(t.ID), t.Title, t.Status)
		}
	}
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var lane string

	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if err := taskform.ValidateTitle(title); err != nil {
				return err
			}
			l, err := model.ParseLane(lane)
			if err != nil {
				return err
			}

			e, err := opts.newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			err = e.store.Create(cmd.Context(), title, l)
			if errors.Is(err, credential.ErrNoToken) {
				return fmt.Errorf("%w: %w", errNotSignedIn, err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %s.\n", title, l.Label())
			return nil
		},
	}

	cmd.Flags().StringVar(&lane, "lane", string(model.LaneBacklog), "Lane for the new task")
	return cmd
}

func newMoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <forward|back>",
		Short: "Move a task one lane forward or back",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := parseDirection(args[1])
			if err != nil {
				return err
			}
			return withTask(cmd, opts, args[0], func(e *env, t model.Task) error {
				if err := e.store.Move(cmd.Context(), t.ID, dir); err != nil {
					return err
				}
				return reportLane(cmd.OutOrStdout(), e.store, t)
			})
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <lane>",
		Short: "Put a task in a lane",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lane, err := model.ParseLane(args[1])
			if err != nil {
				return err
			}
			return withTask(cmd, opts, args[0], func(e *env, t model.Task) error {
				if err := e.store.SetStatus(cmd.Context(), t.ID, lane); err != nil {
					return err
				}
				return reportLane(cmd.OutOrStdout(), e.store, t)
			})
		},
	}
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTask(cmd, opts, args[0], func(e *env, t model.Task) error {
				if err := e.store.Delete(cmd.Context(), t.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", t.Title)
				return nil
			})
		},
	}
}

func newClearCompletedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-completed",
		Short: "Delete every task in Done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.newEnv(cmd, false)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.load(cmd.Context()); err != nil {
				return err
			}

			before := len(e.store.ByStatus(model.LaneComplete))
			clearErr := e.store.ClearCompleted(cmd.Context())
			removed := before - len(e.store.ByStatus(model.LaneComplete))

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d completed task(s).\n", removed)
			return clearErr
		},
	}
}

// withTask loads the board, resolves idOrPrefix, and runs fn.
func withTask(cmd *cobra.Command, opts *rootOptions, idOrPrefix string, fn func(*env, model.Task) error) error {
	e, err := opts.newEnv(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.load(cmd.Context()); err != nil {
		return err
	}

	t, err := resolveTask(e.store.Tasks(), idOrPrefix)
	if err != nil {
		return err
	}
	return fn(e, t)
}

// resolveTask finds a task by exact id or unique id prefix.
func resolveTask(tasks []model.Task, idOrPrefix string) (model.Task, error) {
	var matches []model.Task
	for _, t := range tasks {
		if t.ID == idOrPrefix {
			return t, nil
		}
		if strings.HasPrefix(t.ID, idOrPrefix) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", taskstore.ErrTaskNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return model.Task{}, fmt.Errorf("id prefix %q matches %d tasks", idOrPrefix, len(matches))
	}
}

func reportLane(out io.Writer, s *taskstore.Store, before model.Task) error {
	after, ok := s.Task(before.ID)
	if !ok {
		return fmt.Errorf("%w: %s", taskstore.ErrTaskNotFound, before.ID)
	}
	if after.Status == before.Status {
		fmt.Fprintf(out, "%q stays in %s.\n", after.Title, after.Status.Label())
		return nil
	}
	fmt.Fprintf(out, "Moved %q to %s.\n", after.Title, after.Status.Label())
	return nil
}

func parseDirection(s string) (model.Direction, error) {
	switch strings.ToLower(s) {
	case "forward", "fwd", "next", "right", "+":
		return model.Forward, nil
	case "back", "backward", "prev", "left", "-":
		return model.Backward, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (want forward or back)", s)
	}
}

// shortID abbreviates server ids for display; any unique prefix is
// accepted back by the commands.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/taskstore"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui"
	"github.com/nhle/taskboard/internal/ui/board"
	"github.com/nhle/taskboard/internal/ui/command"
	"github.com/nhle/taskboard/internal/ui/detail"
	helpview "github.com/nhle/taskboard/internal/ui/help"
	"github.com/nhle/taskboard/internal/ui/taskform"
)

// opTimeout bounds a single board action, including its reconciling refresh.
const opTimeout = 30 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewBoard ViewState = iota
	ViewForm
	ViewHelp
	ViewCommand
	ViewConfirmClear
	ViewDetail
)

// Principals resolves the signed-in user for the header.
type Principals interface {
	Principal() (model.Principal, error)
}

// storeUpdatedMsg signals that the task store changed.
type storeUpdatedMsg struct{}

// opDoneMsg reports the outcome of a board action.
type opDoneMsg struct {
	op  string
	err error
}

// Model is the root Bubble Tea model that routes between the board and
// its overlays and runs task actions against the store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        *taskstore.Store
	watcher      *appsync.Watcher
	principals   Principals
	keys         *keys.KeyMap
	log          *logrus.Entry
	board        board.Model
	form         taskform.Model
	helpView     helpview.Model
	commandView  command.Model
	detailView   detail.Model
	spinner      spinner.Model
	pending      int
	flash        string
	flashErr     bool
	ready        bool
}

// New creates the root model. sort is the initial lane ordering.
func New(
	s *taskstore.Store,
	w *appsync.Watcher,
	principals Principals,
	sort board.SortMode,
	log *logrus.Entry,
) Model {
	k := keys.DefaultKeyMap()
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	b := board.New(s, k, 80, 24)
	b.SetSort(sort)

	return Model{
		currentView: ViewBoard,
		layout:      ui.NewLayout(80, 24),
		store:       s,
		watcher:     w,
		principals:  principals,
		keys:        k,
		log:         log.WithField("component", "app"),
		board:       b,
		form:        taskform.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		detailView:  detail.New(k, 80, 24),
		spinner:     sp,
	}
}

// Init starts the session watcher and subscribes to store changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.watcher.Start(),
		m.waitForUpdate(),
		m.spinner.Tick,
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.board.SetSize(w, h)
		m.form.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.detailView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case storeUpdatedMsg:
		m.board.Reload()
		m.syncDetail()
		return m, m.waitForUpdate()

	case appsync.SyncResultMsg:
		m.board.Reload()
		if msg.Error != nil {
			m.setFlash(fmt.Sprintf("refresh failed: %v", msg.Error), true)
		}
		return m, m.watcher.WaitForNextResult()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		m.pending--
		m.board.Reload()
		m.syncDetail()
		if msg.err != nil {
			m.log.WithError(msg.err).WithField("op", msg.op).Warn("board action failed")
			m.setFlash(fmt.Sprintf("%s failed: %v", msg.op, msg.err), true)
		} else {
			m.setFlash(msg.op+" done", false)
		}
		return m, nil

	case board.NewTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m, m.form.Start(msg.Lane)

	case taskform.SubmitMsg:
		m.currentView = ViewBoard
		title, lane := msg.Title, msg.Lane
		return m, m.run("create", func(ctx context.Context) error {
			return m.store.Create(ctx, title, lane)
		})

	case taskform.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case board.MoveMsg:
		id, dir := msg.TaskID, msg.Dir
		return m, m.run("move", func(ctx context.Context) error {
			return m.store.Move(ctx, id, dir)
		})

	case board.DragEndMsg:
		result := msg.Result
		return m, m.run("move", func(ctx context.Context) error {
			return m.store.DragEnd(ctx, result)
		})

	case detail.BackMsg:
		m.currentView = ViewBoard
		return m, nil

	case board.DeleteMsg:
		if m.currentView == ViewDetail {
			m.currentView = ViewBoard
		}
		id := msg.TaskID
		return m, m.run("delete", func(ctx context.Context) error {
			return m.store.Delete(ctx, id)
		})

	case board.ClearCompletedMsg:
		if len(m.store.ByStatus(model.LaneComplete)) == 0 {
			m.setFlash("nothing to clear", false)
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewConfirmClear
		return m, nil

	case command.CommandMsg:
		m.currentView = ViewBoard
		return m, m.executeCommand(msg)

	case command.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg); handled {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey processes keys that are not owned by the active view.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return m.quit(), true
	}

	switch m.currentView {
	case ViewConfirmClear:
		m.currentView = ViewBoard
		if msg.String() == "y" || msg.String() == "Y" {
			return m.run("clear completed", m.store.ClearCompleted), true
		}
		return nil, true

	case ViewHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Cancel) {
			m.currentView = m.previousView
		}
		return nil, true

	case ViewBoard:
		m.flash = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit(), true
		case key.Matches(msg, m.keys.Help):
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return nil, true
		case key.Matches(msg, m.keys.Command):
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m.commandView.Focus(), true
		case key.Matches(msg, m.keys.Refresh):
			m.setFlash("refreshing", false)
			return m.watcher.RefreshNow(), true
		case key.Matches(msg, m.keys.Detail):
			if t, ok := m.board.Selected(); ok {
				m.detailView.SetTask(&t)
				m.currentView = ViewDetail
			}
			return nil, true
		}
	}

	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewBoard:
		m.board, cmd = m.board.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Taskboard", m.sessionSummary())
	statusBar := m.layout.RenderStatusBar(m.hints(), m.syncSummary())

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewForm:
		return m.form.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewDetail:
		return m.detailView.View()
	default:
		return m.board.View()
	}
}

// sessionSummary describes who is signed in.
func (m Model) sessionSummary() string {
	if !m.store.Authenticated() {
		return "not signed in · run `taskboard login`"
	}
	p, err := m.principals.Principal()
	if err != nil {
		return "signed in"
	}
	name := p.Name
	if name == "" {
		name = p.ID
	}
	if !m.store.AccessGranted() {
		return fmt.Sprintf("%s (%s) · task board unavailable", name, p.Role)
	}
	return fmt.Sprintf("%s (%s)", name, p.Role)
}

// syncSummary returns a short string describing the sync state.
func (m Model) syncSummary() string {
	if m.pending > 0 {
		return m.spinner.View() + " saving"
	}

	status := m.watcher.Status()
	switch status.State {
	case appsync.SyncRunning:
		return m.spinner.View() + " syncing"
	case appsync.SyncError:
		return "⚠ offline, showing cached tasks"
	}
	if status.LastSync.IsZero() {
		return m.board.Sort().String()
	}
	return fmt.Sprintf("%s · synced %s", m.board.Sort(), humanize.Time(status.LastSync))
}

// hints returns the left side of the status bar.
func (m Model) hints() string {
	switch m.currentView {
	case ViewConfirmClear:
		n := len(m.store.ByStatus(model.LaneComplete))
		return fmt.Sprintf("Delete %d completed task(s)? y/N", n)
	case ViewHelp:
		return "? close help"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewForm:
		return "enter submit | esc cancel"
	case ViewDetail:
		if m.flash != "" {
			break
		}
		return "[ ] move | d delete | esc back"
	}

	if m.flash != "" {
		if m.flashErr {
			return theme.ErrorStyle.Render(m.flash)
		}
		return m.flash
	}
	if m.board.Dragging() {
		return "h/l choose lane | enter drop | esc cancel"
	}
	return m.helpView.Short()
}

// syncDetail re-reads the task on display from the store, returning to the
// board when it no longer exists.
func (m *Model) syncDetail() {
	if m.currentView != ViewDetail {
		return
	}
	shown, ok := m.detailView.Task()
	if !ok {
		return
	}
	t, ok := m.store.Task(shown.ID)
	if !ok {
		m.detailView.SetTask(nil)
		m.currentView = ViewBoard
		return
	}
	m.detailView.SetTask(&t)
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

// run executes a store action off the UI goroutine.
func (m *Model) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	m.pending++
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

// waitForUpdate returns a command that blocks until the store changes.
func (m Model) waitForUpdate() tea.Cmd {
	updates := m.store.Updates()
	return func() tea.Msg {
		<-updates
		return storeUpdatedMsg{}
	}
}

func (m *Model) quit() tea.Cmd {
	m.watcher.Stop()
	return tea.Quit
}

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case "refresh", "sync":
		return m.watcher.RefreshNow()
	case "new", "add":
		if c.Args == "" {
			m.previousView = ViewBoard
			m.currentView = ViewForm
			return m.form.Start(m.board.Lane())
		}
		if err := taskform.ValidateTitle(c.Args); err != nil {
			m.setFlash(err.Error(), true)
			return nil
		}
		title, lane := c.Args, m.board.Lane()
		return m.run("create", func(ctx context.Context) error {
			return m.store.Create(ctx, title, lane)
		})
	case "clear-completed", "clear":
		return func() tea.Msg { return board.ClearCompletedMsg{} }
	case "sort":
		m.board.SetSort(board.ParseSortMode(c.Args))
		return nil
	case "help":
		m.previousView = ViewBoard
		m.currentView = ViewHelp
		return nil
	case "quit", "q":
		return m.quit()
	default:
		m.setFlash("unknown command: "+c.Name, true)
		return nil
	}
}

package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
	"github.com/nhle/taskboard/internal/ui/board"
)

// BackMsg signals the parent to navigate back to the board.
type BackMsg struct{}

// Model is the task detail panel.
type Model struct {
	task     *model.Task
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	now      func() time.Time
}

// New creates a new detail view model.
func New(keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     keys,
		width:    width,
		height:   height,
		now:      time.Now,
	}
}

// Update handles messages for the detail view. Lane moves and deletion are
// emitted as board messages so the parent runs them the same way.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Detail):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.MoveBack):
			return m, m.emit(func(t model.Task) tea.Msg {
				return board.MoveMsg{TaskID: t.ID, Dir: model.Backward}
			})

		case key.Matches(msg, m.keys.MoveForward):
			return m, m.emit(func(t model.Task) tea.Msg {
				return board.MoveMsg{TaskID: t.ID, Dir: model.Forward}
			})

		case key.Matches(msg, m.keys.Delete):
			return m, m.emit(func(t model.Task) tea.Msg {
				return board.DeleteMsg{TaskID: t.ID, Title: t.Title}
			})
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) emit(fn func(model.Task) tea.Msg) tea.Cmd {
	if m.task == nil {
		return nil
	}
	t := *m.task
	return func() tea.Msg { return fn(t) }
}

// View renders the detail view.
func (m Model) View() string {
	if m.task == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No task selected")
	}
	return m.viewport.View()
}

func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}
	t := m.task
	now := m.now()

	var sections []string
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(t.Title))

	badge := theme.LaneHeaderStyle(t.Status).MarginBottom(0).Render(t.Status.Label())
	if !t.Status.Valid() {
		badge = theme.DimmedStyle.Render(fmt.Sprintf("unrecognized status %q", string(t.Status)))
	}
	sections = append(sections, badge, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) string {
		return fmt.Sprintf("%s %s", metaStyle.Render(fmt.Sprintf("%-9s", label+":")), valStyle.Render(value))
	}

	sections = append(sections, row("ID", t.ID))
	if !t.CreatedAt.IsZero() {
		sections = append(sections, row("Created", stamp(t.CreatedAt, now)))
	}
	if !t.UpdatedAt.IsZero() {
		sections = append(sections, row("Updated", stamp(t.UpdatedAt, now)))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	sections = append(sections, "", sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0))), "")
	sections = append(sections, theme.HelpStyle.Render("[ / ] move lane   d delete   esc back"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func stamp(t, now time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Local().Format("2006-01-02 15:04"), humanize.RelTime(t, now, "ago", "from now"))
}

// SetTask updates the task being displayed and re-renders the content.
// A nil task shows the empty state.
func (m *Model) SetTask(t *model.Task) {
	m.task = t
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Task returns the task on display.
func (m Model) Task() (model.Task, bool) {
	if m.task == nil {
		return model.Task{}, false
	}
	return *m.task, true
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}

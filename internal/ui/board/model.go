// Package board renders the three-lane task board and turns key presses
// into task actions for the root model to carry out.
package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/taskstore"
	"github.com/nhle/taskboard/internal/theme"
)

// SortMode selects the timestamp lanes are ordered by.
type SortMode int

const (
	SortUpdated SortMode = iota
	SortCreated
)

func (s SortMode) String() string {
	if s == SortCreated {
		return "created"
	}
	return "updated"
}

// ParseSortMode maps a config or palette value to a SortMode. Unknown
// values fall back to SortUpdated.
func ParseSortMode(s string) SortMode {
	if strings.EqualFold(strings.TrimSpace(s), "created") {
		return SortCreated
	}
	return SortUpdated
}

// Source is the read side of the task store.
type Source interface {
	ByStatus(lane model.Lane) []model.Task
	ByStatusCreatedOrder(lane model.Lane) []model.Task
	Unlaned() []model.Task
}

// MoveMsg asks for the task to step one lane in Dir.
type MoveMsg struct {
	TaskID string
	Dir    model.Direction
}

// DragEndMsg reports a card dropped at a new position.
type DragEndMsg struct {
	Result taskstore.DragResult
}

// DeleteMsg asks for the task to be deleted.
type DeleteMsg struct {
	TaskID string
	Title  string
}

// NewTaskMsg asks for the new-task form, preselecting Lane.
type NewTaskMsg struct {
	Lane model.Lane
}

// ClearCompletedMsg asks for every completed task to be deleted.
type ClearCompletedMsg struct{}

// pickup is a card lifted for keyboard drag and drop.
type pickup struct {
	taskID string
	from   taskstore.Position
}

// Model is the board view component.
type Model struct {
	src     Source
	keys    *keys.KeyMap
	lanes   [][]model.Task
	unlaned int
	col     int
	rows    []int
	sort    SortMode
	picked  *pickup
	width   int
	height  int
	now     func() time.Time
}

// New creates a board over src.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	return Model{
		src:    src,
		keys:   k,
		lanes:  make([][]model.Task, len(model.Lanes)),
		rows:   make([]int, len(model.Lanes)),
		width:  width,
		height: height,
		now:    time.Now,
	}
}

// Reload re-reads the lanes from the source. The cursor follows the
// selected task when it is still on the board.
func (m *Model) Reload() {
	selected, hadSelection := m.Selected()

	for i, lane := range model.Lanes {
		if m.sort == SortCreated {
			m.lanes[i] = m.src.ByStatusCreatedOrder(lane)
		} else {
			m.lanes[i] = m.src.ByStatus(lane)
		}
	}
	m.unlaned = len(m.src.Unlaned())

	if m.picked != nil && !m.contains(m.picked.taskID) {
		m.picked = nil
	}

	if hadSelection {
		for i, tasks := range m.lanes {
			for j, t := range tasks {
				if t.ID == selected.ID {
					m.col, m.rows[i] = i, j
					m.clamp()
					return
				}
			}
		}
	}
	m.clamp()
}

// Selected returns the task under the cursor.
func (m Model) Selected() (model.Task, bool) {
	tasks := m.lanes[m.col]
	row := m.rows[m.col]
	if row < 0 || row >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[row], true
}

// Lane returns the lane the cursor is on.
func (m Model) Lane() model.Lane {
	return model.Lanes[m.col]
}

// Sort returns the current ordering.
func (m Model) Sort() SortMode {
	return m.sort
}

// SetSort changes the ordering and reloads.
func (m *Model) SetSort(s SortMode) {
	m.sort = s
	m.Reload()
}

// Dragging reports whether a card is picked up.
func (m Model) Dragging() bool {
	return m.picked != nil
}

// Update handles key presses.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Left):
		if m.col > 0 {
			m.col--
		}
		m.clamp()

	case key.Matches(keyMsg, m.keys.Right):
		if m.col < len(m.lanes)-1 {
			m.col++
		}
		m.clamp()

	case key.Matches(keyMsg, m.keys.Up):
		if m.rows[m.col] > 0 {
			m.rows[m.col]--
		}

	case key.Matches(keyMsg, m.keys.Down):
		m.rows[m.col]++
		m.clamp()

	case key.Matches(keyMsg, m.keys.Cancel):
		m.picked = nil

	case key.Matches(keyMsg, m.keys.Pick):
		task, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.picked = &pickup{
			taskID: task.ID,
			from:   taskstore.Position{Lane: m.Lane(), Index: m.rows[m.col]},
		}

	case key.Matches(keyMsg, m.keys.Drop):
		if m.picked == nil {
			return m, nil
		}
		result := taskstore.DragResult{
			TaskID: m.picked.taskID,
			Source: m.picked.from,
			Target: taskstore.Position{Lane: m.Lane(), Index: m.rows[m.col]},
		}
		m.picked = nil
		return m, func() tea.Msg { return DragEndMsg{Result: result} }

	case key.Matches(keyMsg, m.keys.MoveBack):
		return m, m.move(model.Backward)

	case key.Matches(keyMsg, m.keys.MoveForward):
		return m, m.move(model.Forward)

	case key.Matches(keyMsg, m.keys.New):
		lane := m.Lane()
		return m, func() tea.Msg { return NewTaskMsg{Lane: lane} }

	case key.Matches(keyMsg, m.keys.Delete):
		task, ok := m.Selected()
		if !ok || m.picked != nil {
			return m, nil
		}
		return m, func() tea.Msg { return DeleteMsg{TaskID: task.ID, Title: task.Title} }

	case key.Matches(keyMsg, m.keys.ClearCompleted):
		return m, func() tea.Msg { return ClearCompletedMsg{} }

	case key.Matches(keyMsg, m.keys.Sort):
		if m.sort == SortUpdated {
			m.SetSort(SortCreated)
		} else {
			m.SetSort(SortUpdated)
		}
	}

	return m, nil
}

func (m Model) move(d model.Direction) tea.Cmd {
	task, ok := m.Selected()
	if !ok || m.picked != nil {
		return nil
	}
	return func() tea.Msg { return MoveMsg{TaskID: task.ID, Dir: d} }
}

// View renders the lanes side by side.
func (m Model) View() string {
	laneWidth := m.laneWidth()
	cols := make([]string, len(m.lanes))
	for i, lane := range model.Lanes {
		cols[i] = m.renderLane(i, lane, laneWidth)
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if m.unlaned > 0 {
		note := theme.DimmedStyle.Render(fmt.Sprintf(
			"%d task(s) have a status this board does not recognize", m.unlaned))
		board = lipgloss.JoinVertical(lipgloss.Left, board, note)
	}
	return board
}

func (m Model) renderLane(i int, lane model.Lane, width int) string {
	tasks := m.lanes[i]
	focused := i == m.col

	header := theme.LaneHeaderStyle(lane).
		Render(fmt.Sprintf("%s (%d)", lane.Label(), len(tasks)))

	lines := []string{header}
	visible := m.visibleCards()
	start := windowStart(m.rows[i], len(tasks), visible)
	end := min(start+visible, len(tasks))

	if len(tasks) == 0 {
		lines = append(lines, theme.DimmedStyle.Render("  (empty)"))
	}
	for j := start; j < end; j++ {
		lines = append(lines, m.renderCard(tasks[j], focused && j == m.rows[i], width))
	}
	if end < len(tasks) {
		lines = append(lines, theme.DimmedStyle.Render(fmt.Sprintf("  … %d more", len(tasks)-end)))
	}

	return theme.LaneStyle(lane, focused).
		Width(width).
		Height(max(m.height-2, 1)).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderCard(t model.Task, selected bool, width int) string {
	stamp := t.UpdatedAt
	if m.sort == SortCreated {
		stamp = t.CreatedAt
	}
	when := ""
	if !stamp.IsZero() {
		when = humanize.RelTime(stamp, m.now(), "ago", "from now")
	}

	title := truncate(t.Title, width-4)
	line := title + "\n" + theme.DimmedStyle.Render(when)

	switch {
	case m.picked != nil && m.picked.taskID == t.ID:
		return theme.PickedCardStyle.Render(line)
	case selected:
		return theme.SelectedCardStyle.Render(line)
	default:
		return theme.CardStyle.Render(line)
	}
}

// SetSize updates the board dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) laneWidth() int {
	w := m.width/len(model.Lanes) - 4
	return max(w, 16)
}

// visibleCards is how many two-line cards fit in a lane.
func (m Model) visibleCards() int {
	return max((m.height-5)/2, 1)
}

func (m *Model) clamp() {
	n := len(m.lanes[m.col])
	if m.rows[m.col] >= n {
		m.rows[m.col] = n - 1
	}
	if m.rows[m.col] < 0 {
		m.rows[m.col] = 0
	}
}

func (m Model) contains(id string) bool {
	for _, tasks := range m.lanes {
		for _, t := range tasks {
			if t.ID == id {
				return true
			}
		}
	}
	return false
}

// windowStart scrolls so the cursor row stays visible.
func windowStart(cursor, total, visible int) int {
	if total <= visible || cursor < visible {
		return 0
	}
	start := cursor - visible + 1
	return min(start, total-visible)
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}

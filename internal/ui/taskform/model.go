package taskform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/theme"
)

// maxTitleLength bounds the card title.
const maxTitleLength = 200

// SubmitMsg is dispatched when the user submits a new task.
type SubmitMsg struct {
	Title string
	Lane  model.Lane
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title string
	lane  model.Lane
}

// Model is the Bubble Tea model for the new-task form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{lane: model.LaneBacklog},
		width:  width,
		height: height,
	}
}

// Start resets the form. lane preselects the lane the cursor is on.
func (m *Model) Start(lane model.Lane) tea.Cmd {
	if !lane.Valid() {
		lane = model.LaneBacklog
	}
	m.fb.title = ""
	m.fb.lane = lane
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		return m, m.handleSubmit()
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	content := theme.TitleStyle.Render("New Task") + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	laneOpts := make([]huh.Option[model.Lane], len(model.Lanes))
	for i, l := range model.Lanes {
		laneOpts[i] = huh.NewOption(l.Label(), l)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				CharLimit(maxTitleLength).
				Value(&m.fb.title).
				Validate(ValidateTitle),
			huh.NewSelect[model.Lane]().
				Title("Lane").
				Options(laneOpts...).
				Value(&m.fb.lane),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	msg := SubmitMsg{
		Title: strings.TrimSpace(m.fb.title),
		Lane:  m.fb.lane,
	}
	return func() tea.Msg { return msg }
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

// ValidateTitle rejects blank and overlong titles. The CLI shares it.
func ValidateTitle(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(s) > maxTitleLength {
		return fmt.Errorf("title must be at most %d characters", maxTitleLength)
	}
	return nil
}

package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Args string
}

// CancelMsg is emitted when the palette is dismissed.
type CancelMsg struct{}

// Commands lists the palette verbs shown as suggestions.
var Commands = []string{
	"refresh",
	"new",
	"clear-completed",
	"sort updated",
	"sort created",
	"help",
	"quit",
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions(Commands)
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Parse splits a palette line into a command name and its arguments.
// "new Read chapter 3" yields {Name: "new", Args: "Read chapter 3"}.
func Parse(line string) CommandMsg {
	line = strings.TrimSpace(line)
	name, args, _ := strings.Cut(line, " ")
	return CommandMsg{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			line := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(line) == "" {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			cmd := Parse(line)
			return m, func() tea.Msg { return cmd }
		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		theme.TitleStyle.Render("Command Palette"),
		m.input.View(),
		theme.HelpStyle.Render(strings.Join(Commands, " · ")),
	)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps overlays such as help and the command palette.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle is the heading inside overlays.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// CardStyle is the base style for a card in a lane.
var CardStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedCardStyle highlights the card under the cursor.
var SelectedCardStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// PickedCardStyle marks a card that has been picked up for dragging.
var PickedCardStyle = SelectedCardStyle.
	Foreground(ColorMagenta).
	BorderForeground(ColorMagenta)

// DimmedStyle is used for timestamps and empty-lane hints.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle renders errors in the status bar.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// LaneColor returns the accent color for a lane.
func LaneColor(l model.Lane) lipgloss.AdaptiveColor {
	switch l {
	case model.LaneBacklog:
		return ColorBlue
	case model.LaneInProgress:
		return ColorYellow
	case model.LaneComplete:
		return ColorGreen
	default:
		return ColorGray
	}
}

// LaneStyle returns the column frame for a lane. The focused lane gets a
// thick border in its accent color.
func LaneStyle(l model.Lane, focused bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 1)
	if focused {
		return s.Border(lipgloss.ThickBorder()).BorderForeground(LaneColor(l))
	}
	return s.Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder)
}

// LaneHeaderStyle returns the color-coded heading for a lane.
func LaneHeaderStyle(l model.Lane) lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(LaneColor(l)).
		MarginBottom(1)
}

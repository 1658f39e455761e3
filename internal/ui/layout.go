package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/theme"
)

// Layout manages the board's terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the board, accounting
// for the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top bar with a title on the left and session
// details on the right.
func (l Layout) RenderHeader(title, right string) string {
	return l.spread(theme.HeaderStyle, title, right)
}

// RenderStatusBar renders the bottom bar with hints on the left and sync
// status on the right.
func (l Layout) RenderStatusBar(hints, status string) string {
	return l.spread(theme.StatusBarStyle, hints, status)
}

func (l Layout) spread(style lipgloss.Style, left, right string) string {
	leftRendered := style.Render(left)
	rightRendered := style.Align(lipgloss.Right).Render(right)

	gap := l.Width -
		lipgloss.Width(leftRendered) -
		lipgloss.Width(rightRendered)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftRendered,
		filler,
		rightRendered,
	)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		lipgloss.NewStyle().Height(l.ContentHeight()).Render(content),
		statusBar,
	)
}

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/theme"
)

// Layout manages the terminal layout dimensions.
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

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top header bar with a title on the left and
// the unread badge on the right.
func (l Layout) RenderHeader(title string, badge string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	right := theme.HeaderStyle.Render("🔔")
	if badge != "" {
		right = lipgloss.JoinHorizontal(lipgloss.Top, right, theme.BadgeStyle.Render(badge))
	}

	gap := l.Width -
		lipgloss.Width(titleRendered) -
		lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		filler,
		right,
	)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := l.Width - lipgloss.Width(rendered)
	if gap < 0 {
		gap = 0
	}

	filler := theme.StatusBarStyle.Render(
		lipgloss.NewStyle().
			Width(gap).
			Background(theme.StatusBarStyle.GetBackground()).
			Render(""),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// RenderToasts stacks the active toasts, newest last. It returns an empty
// string when there is nothing to show.
func (l Layout) RenderToasts(toasts []model.Notification) string {
	if len(toasts) == 0 {
		return ""
	}

	width := l.Width / 2
	if width < 30 {
		width = l.Width
	}

	rows := make([]string, 0, len(toasts))
	for _, n := range toasts {
		rows = append(rows, theme.ToastStyle.
			Width(width-2).
			Render(n.Icon+" "+n.Message))
	}
	return lipgloss.PlaceHorizontal(
		l.Width,
		lipgloss.Right,
		lipgloss.JoinVertical(lipgloss.Right, rows...),
	)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, optional toasts, and status bar.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	toasts string,
	statusBar string,
) string {
	parts := []string{header, content}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

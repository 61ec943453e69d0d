package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorRose    = lipgloss.AdaptiveColor{Dark: "#F783AC", Light: "#C2255C"}
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

// accent is the header and highlight color. Apply swaps it.
var accent lipgloss.TerminalColor = ColorRose

// Styles derived from the accent color. They are rebuilt by Apply.
var (
	// HeaderStyle is used for the application title bar.
	HeaderStyle lipgloss.Style

	// SelectedItemStyle highlights the focused row in a list.
	SelectedItemStyle lipgloss.Style

	// BadgeStyle renders the unread counter.
	BadgeStyle lipgloss.Style

	// TitleStyle is used for panel headings.
	TitleStyle lipgloss.Style
)

func init() {
	Apply("default")
}

// Palettes lists the palette names Apply understands.
func Palettes() []string {
	return []string{"default", "ocean", "lavender"}
}

// Apply selects a named palette. Unknown names use the default.
func Apply(name string) {
	switch name {
	case "ocean":
		accent = ColorBlue
	case "lavender":
		accent = ColorMagenta
	default:
		accent = ColorRose
	}

	HeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWhite).
		Background(accent).
		Padding(0, 1)

	SelectedItemStyle = lipgloss.NewStyle().
		PaddingLeft(1).
		Bold(true).
		Foreground(accent).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(accent)

	BadgeStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorWhite).
		Background(ColorRed).
		Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(accent).
		MarginBottom(1)
}

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps a bordered content panel.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle renders read notifications and secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// ErrorStyle renders inline errors such as a failed login.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(ColorRed).
	Bold(true)

// ToastStyle renders a transient pop-up notification.
var ToastStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorYellow).
	Foreground(ColorWhite)

// StatStyle renders the big number on the dashboard.
var StatStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorGreen)

// CategoryStyle returns a color-coded style for a notification category.
func CategoryStyle(category string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch category {
	case "journal", "letters":
		return base.Foreground(ColorRose)
	case "mood", "affirmations":
		return base.Foreground(ColorYellow)
	case "checkin", "goals":
		return base.Foreground(ColorGreen)
	case "voice":
		return base.Foreground(ColorBlue)
	case "emergency":
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// CancelMsg is emitted when the user leaves the palette without running
// anything.
type CancelMsg struct{}

// builtins are the non-sharing commands offered as suggestions.
var builtins = []string{
	"refresh", "feed", "home", "read all",
	"notifications on", "notifications off", "notifications toggle",
	"logout", "quit",
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
	ti.Placeholder = "journal -- wrote about our trip"
	ti.Prompt = ": "
	ti.Width = width - 6
	ti.ShowSuggestions = true
	ti.SetSuggestions(suggestions())

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

func suggestions() []string {
	out := make([]string, 0, len(builtins)+len(model.Categories()))
	for _, c := range model.Categories() {
		out = append(out, string(c))
	}
	return append(out, builtins...)
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if cmd != "" {
				return m, func() tea.Msg {
					return CommandMsg(cmd)
				}
			}
			return m, nil
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
	title := theme.TitleStyle.Render("Share something")
	hint := theme.HelpStyle.Render("<category> [action] [-- details], or a command such as 'read all'")

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View(), "", hint)

	return theme.PanelStyle.
		Width(m.width - 4).
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

// Blur removes keyboard focus from the text input.
func (m *Model) Blur() {
	m.input.Blur()
}

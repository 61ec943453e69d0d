package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ourspace/internal/theme"
)

// SubmitMsg is dispatched when the user submits the login form.
type SubmitMsg struct {
	Name     string
	Password string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	name     string
	password string
}

// Model is the login screen.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	err    string
	width  int
	height int
}

// New creates a login screen.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start resets the form and returns its init command. A non-empty
// message is shown above the form, e.g. after a failed attempt.
func (m *Model) Start(message string) tea.Cmd {
	m.err = message
	m.fb.password = ""
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("victor or mimi").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validateRequired("Password")),
		),
	).WithWidth(m.formWidth()).WithShowHelp(false)
	return m.form.Init()
}

// Update handles messages for the login form.
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
		submit := SubmitMsg{Name: strings.TrimSpace(m.fb.name), Password: m.fb.password}
		m.form = nil
		return m, func() tea.Msg { return submit }
	case huh.StateAborted:
		return m, tea.Quit
	}

	return m, cmd
}

// View renders the login screen.
func (m Model) View() string {
	title := theme.TitleStyle.Render("💕 Welcome to our space")

	parts := []string{title}
	if m.err != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.err))
	}
	if m.form != nil {
		parts = append(parts, m.form.View())
	}

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)),
	)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width / 2
	if w < 30 {
		w = 30
	}
	if w > 60 {
		w = 60
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

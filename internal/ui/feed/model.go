package feed

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ourspace/internal/keys"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/theme"
)

// MarkReadMsg asks for one notification to be marked read.
type MarkReadMsg struct {
	ID string
}

// MarkAllReadMsg asks for every notification in the feed to be marked read.
type MarkAllReadMsg struct{}

// DeleteMsg asks for one notification to be deleted.
type DeleteMsg struct {
	ID string
}

// ToggleNotificationsMsg asks for the viewer's preference to be flipped.
type ToggleNotificationsMsg struct{}

// Model is the notification feed view.
type Model struct {
	list    list.Model
	keys    *keys.KeyMap
	enabled bool
	width   int
	height  int
}

// New creates a feed view. A nil clock uses time.Now.
func New(k *keys.KeyMap, now func() time.Time, width, height int) Model {
	if now == nil {
		now = time.Now
	}
	l := list.New([]list.Item{}, Delegate{now: now}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle
	l.SetStatusBarItemName("notification", "notifications")

	return Model{
		list:    l,
		keys:    k,
		enabled: true,
		width:   width,
		height:  height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetNotifications replaces the list contents, keeping the cursor in range.
func (m *Model) SetNotifications(view []model.Notification, enabled bool) tea.Cmd {
	m.enabled = enabled
	items := make([]list.Item, len(view))
	for i, n := range view {
		items[i] = Item{Notification: n}
	}
	cmd := m.list.SetItems(items)
	if idx := m.list.Index(); idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	return cmd
}

// Selected returns the highlighted notification.
func (m Model) Selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.MarkRead):
			n, ok := m.Selected()
			if !ok || n.Read {
				return m, nil
			}
			return m, func() tea.Msg { return MarkReadMsg{ID: n.ID} }

		case key.Matches(msg, m.keys.Delete):
			n, ok := m.Selected()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg { return DeleteMsg{ID: n.ID} }

		case key.Matches(msg, m.keys.MarkAllRead):
			return m, func() tea.Msg { return MarkAllReadMsg{} }

		case key.Matches(msg, m.keys.ToggleNotify):
			return m, func() tea.Msg { return ToggleNotificationsMsg{} }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the feed.
func (m Model) View() string {
	status := "🔔 notifications on"
	if !m.enabled {
		status = "🔕 notifications off"
	}
	header := theme.HelpStyle.Render(status)

	if len(m.list.Items()) == 0 {
		empty := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height - 1).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notifications yet.\nThey will show up here when your partner shares something.")
		return lipgloss.JoinVertical(lipgloss.Left, header, empty)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View())
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

package dashboard

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/notify"
	"github.com/nhle/ourspace/internal/theme"
)

// recentLimit is how many notifications the dashboard previews.
const recentLimit = 3

// Snapshot is everything the dashboard shows.
type Snapshot struct {
	Viewer          model.Participant
	Counter         model.StreakCounter
	PartnerToday    bool
	Unread          int
	NotificationsOn bool
	Recent          []model.Notification
}

// Greeting returns the salutation for name at the given hour of day.
func Greeting(name string, hour int) string {
	switch {
	case hour < 12:
		return fmt.Sprintf("Good morning, %s! ☀️", name)
	case hour < 17:
		return fmt.Sprintf("Good afternoon, %s! 🌤️", name)
	default:
		return fmt.Sprintf("Good evening, %s! 🌙", name)
	}
}

// Model is the home screen.
type Model struct {
	snap   Snapshot
	now    func() time.Time
	width  int
	height int
}

// New creates a dashboard. A nil clock uses time.Now.
func New(now func() time.Time, width, height int) Model {
	if now == nil {
		now = time.Now
	}
	return Model{now: now, width: width, height: height}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetSnapshot replaces what the dashboard shows.
func (m *Model) SetSnapshot(s Snapshot) {
	m.snap = s
}

// SetFeed refreshes the notification part of the snapshot.
func (m *Model) SetFeed(view []model.Notification, unread int, enabled bool) {
	m.snap.Unread = unread
	m.snap.NotificationsOn = enabled
	if len(view) > recentLimit {
		view = view[:recentLimit]
	}
	m.snap.Recent = view
}

// Snapshot returns what the dashboard currently shows.
func (m Model) Snapshot() Snapshot {
	return m.snap
}

// View renders the dashboard.
func (m Model) View() string {
	now := m.now()
	s := m.snap

	greeting := theme.TitleStyle.Render(Greeting(s.Viewer.String(), now.Hour()))

	days := theme.StatStyle.Render(fmt.Sprintf("%d", s.Counter.Count))
	together := lipgloss.JoinVertical(lipgloss.Left,
		days+" days together 💑",
		theme.DimmedStyle.Render(since(s.Counter)),
	)

	partner := s.Viewer.Partner().String()
	presence := theme.DimmedStyle.Render(fmt.Sprintf("%s hasn't visited yet today", partner))
	if s.PartnerToday {
		presence = fmt.Sprintf("💚 %s was here today", partner)
	}

	inbox := "No new notifications"
	if s.Unread > 0 {
		inbox = fmt.Sprintf("%s new notification(s)  %s",
			theme.BadgeStyle.Render(notify.BadgeText(s.Unread)),
			theme.HelpStyle.Render("press n to read"),
		)
	}
	if !s.NotificationsOn {
		inbox += theme.DimmedStyle.Render("  (muted)")
	}

	rows := []string{greeting, together, "", presence, "", inbox}
	for _, n := range s.Recent {
		line := fmt.Sprintf("  %s %s  %s", n.Icon, n.Message,
			theme.DimmedStyle.Render(notify.FormatAge(now, n.Timestamp)))
		if n.Read {
			line = theme.DimmedStyle.Render(line)
		}
		rows = append(rows, line)
	}

	return theme.PanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func since(c model.StreakCounter) string {
	if !c.Started() {
		return "Counting starts on your first visit"
	}
	return "since " + *c.StartDate
}

// SetSize updates the dashboard dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

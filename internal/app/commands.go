package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/ourspace/internal/model"
)

// errUnknownCommand is reported for palette input that matches nothing.
var errUnknownCommand = errors.New("unknown command")

// feedChangedMsg carries the feed after a mark-read or delete.
type feedChangedMsg struct {
	session int
	view    []model.Notification
	unread  int
}

// prefsChangedMsg reports the viewer's new notification preference.
type prefsChangedMsg struct {
	enabled bool
	err     error
}

// dispatchedMsg reports the outcome of sharing an activity.
type dispatchedMsg struct {
	category string
	err      error
}

// activity is a parsed "<category> [action] [-- details]" command.
type activity struct {
	category model.Category
	action   string
	details  string
}

// parseActivity reads palette input of the form
// "<category> [action] [-- details]". Only known categories are accepted.
func parseActivity(input string) (activity, error) {
	head, details, _ := strings.Cut(input, "--")
	fields := strings.Fields(head)
	if len(fields) == 0 || len(fields) > 2 {
		return activity{}, errUnknownCommand
	}

	cat := model.Category(strings.ToLower(fields[0]))
	known := false
	for _, c := range model.Categories() {
		if c == cat {
			known = true
			break
		}
	}
	if !known {
		return activity{}, errUnknownCommand
	}

	a := activity{
		category: cat,
		action:   cat.DefaultAction(),
		details:  strings.TrimSpace(details),
	}
	if len(fields) == 2 {
		a.action = strings.ToLower(fields[1])
	}
	return a, nil
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(input string) tea.Cmd {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "refresh", "sync":
		if m.poller != nil {
			m.poller.Refresh()
		}
		return m.loadDashboard()
	case "quit", "q":
		m.Close()
		return tea.Quit
	case "logout":
		return m.logout()
	case "feed", "notifications":
		m.currentView = ViewFeed
		return nil
	case "home", "dashboard":
		m.currentView = ViewDashboard
		return m.loadDashboard()
	case "read all", "mark all read":
		return m.markAllRead()
	case "notifications on":
		return m.setPrefs(true)
	case "notifications off":
		return m.setPrefs(false)
	case "notifications toggle", "mute":
		return m.togglePrefs()
	}

	a, err := parseActivity(input)
	if err != nil {
		m.statusMessage = fmt.Sprintf("Unknown command %q", input)
		return nil
	}
	return m.dispatch(a)
}

// dispatch shares an activity with the partner.
func (m Model) dispatch(a activity) tea.Cmd {
	d := m.dispatcher
	from := m.user.Key()
	return func() tea.Msg {
		err := d.Dispatch(context.Background(), string(a.category), from, a.action, a.details)
		return dispatchedMsg{category: string(a.category), err: err}
	}
}

func (m Model) markRead(id string) tea.Cmd {
	f := m.feed
	session := m.session
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		view := f.MarkRead(context.Background(), id)
		return feedChangedMsg{session: session, view: view, unread: f.UnreadCount()}
	}
}

func (m Model) markAllRead() tea.Cmd {
	f := m.feed
	session := m.session
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		view := f.MarkAllRead(context.Background())
		return feedChangedMsg{session: session, view: view, unread: f.UnreadCount()}
	}
}

func (m Model) deleteNotification(id string) tea.Cmd {
	f := m.feed
	session := m.session
	if f == nil {
		return nil
	}
	return func() tea.Msg {
		view := f.Delete(context.Background(), id)
		return feedChangedMsg{session: session, view: view, unread: f.UnreadCount()}
	}
}

func (m Model) togglePrefs() tea.Cmd {
	prefs := m.prefs
	user := m.user
	return func() tea.Msg {
		enabled, err := prefs.Toggle(context.Background(), user)
		return prefsChangedMsg{enabled: enabled, err: err}
	}
}

func (m Model) setPrefs(enabled bool) tea.Cmd {
	prefs := m.prefs
	user := m.user
	return func() tea.Msg {
		err := prefs.SetEnabled(context.Background(), user, enabled)
		return prefsChangedMsg{enabled: enabled, err: err}
	}
}

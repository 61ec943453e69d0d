package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/credential"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/notify"
	appsync "github.com/nhle/ourspace/internal/sync"
	"github.com/nhle/ourspace/internal/ui/dashboard"
)

// noSessionMsg is sent when there is no saved session to restore.
type noSessionMsg struct{}

// loggedInMsg is sent once a login has been recorded.
type loggedInMsg struct {
	user     model.Participant
	restored bool
}

// loggedOutMsg is sent after the saved session has been cleared.
type loggedOutMsg struct{}

// dashboardLoadedMsg carries the counter and partner presence.
type dashboardLoadedMsg struct {
	session      int
	counter      model.StreakCounter
	partnerToday bool
}

// polledMsg tags a poll result with the session whose poller produced it.
type polledMsg struct {
	session int
	result  appsync.FeedResultMsg
}

// toastTickMsg re-renders the toast strip.
type toastTickMsg struct {
	session int
}

// configChangedMsg carries a configuration re-read from disk.
type configChangedMsg struct {
	cfg *model.AppConfig
}

// restoreSession looks for a remembered participant. Restoring a session
// counts as a login for the days-together counter.
func (m Model) restoreSession() tea.Cmd {
	sessions := m.sessions
	logger := m.logger
	if sessions == nil {
		return func() tea.Msg { return noSessionMsg{} }
	}
	record := m.completeLogin
	return func() tea.Msg {
		user, err := sessions.Current()
		if err != nil {
			if !errors.Is(err, credential.ErrNoSession) {
				logger.Warn("could not restore session", zap.Error(err))
			}
			return noSessionMsg{}
		}
		return record(user, true)()
	}
}

// completeLogin records the daily login and remembers the session.
func (m Model) completeLogin(user model.Participant, restored bool) tea.Cmd {
	tracker := m.tracker
	sessions := m.sessions
	logger := m.logger
	return func() tea.Msg {
		if err := tracker.RecordLogin(context.Background(), user.Key()); err != nil {
			logger.Warn("recording login failed", zap.Error(err))
		}
		if sessions != nil && !restored {
			if err := sessions.Save(user); err != nil {
				logger.Warn("could not remember session", zap.Error(err))
			}
		}
		return loggedInMsg{user: user, restored: restored}
	}
}

// beginSession starts polling the feed of user and shows the dashboard.
func (m *Model) beginSession(user model.Participant, restored bool) tea.Cmd {
	m.endSession()

	feed, err := notify.NewFeed(m.store, user, m.logger)
	if err != nil {
		m.logger.Error("cannot open feed", zap.Error(err))
		return m.loginView.Start("Unknown participant")
	}

	m.session++
	m.user = user
	m.feed = feed
	m.poller = appsync.New(
		feed,
		m.prefs,
		notify.NewToaster(m.cfg.Notifications.ToastWindow(), m.cfg.Notifications.ToastTTL(), m.now),
		m.logger,
		m.cfg.Notifications.PollInterval(),
	)
	m.dashboardView.SetSnapshot(dashboard.Snapshot{Viewer: user, NotificationsOn: true})
	m.currentView = ViewDashboard
	m.previousView = ViewDashboard

	m.statusMessage = "Welcome, " + user.String()
	if restored {
		m.statusMessage = "Welcome back, " + user.String()
	}
	m.logger.Info("session started", zap.String("user", user.Key()), zap.Bool("restored", restored))

	return tea.Batch(m.waitForFeed(m.poller.Start()), m.loadDashboard(), m.toastTick())
}

// waitForFeed wraps a poller command so results from an earlier session
// can be told apart and dropped.
func (m Model) waitForFeed(wait tea.Cmd) tea.Cmd {
	if wait == nil {
		return nil
	}
	session := m.session
	return func() tea.Msg {
		res, ok := wait().(appsync.FeedResultMsg)
		if !ok {
			return nil
		}
		return polledMsg{session: session, result: res}
	}
}

// endSession stops polling and forgets the current participant.
func (m *Model) endSession() {
	if m.poller != nil {
		m.poller.Stop()
	}
	m.poller = nil
	m.feed = nil
	m.user = 0
	m.unread = 0
	m.toasts = nil
	m.feedView.SetNotifications(nil, true)
	m.dashboardView.SetSnapshot(dashboard.Snapshot{})
	m.currentView = ViewLogin
}

// logout clears the remembered session.
func (m Model) logout() tea.Cmd {
	sessions := m.sessions
	logger := m.logger
	return func() tea.Msg {
		if sessions != nil {
			if err := sessions.Clear(); err != nil {
				logger.Warn("could not forget session", zap.Error(err))
			}
		}
		return loggedOutMsg{}
	}
}

// loadDashboard reads the days-together counter and partner presence.
func (m Model) loadDashboard() tea.Cmd {
	if !m.user.Valid() {
		return nil
	}
	tracker := m.tracker
	user := m.user
	session := m.session
	return func() tea.Msg {
		ctx := context.Background()
		return dashboardLoadedMsg{
			session:      session,
			counter:      tracker.Counter(ctx),
			partnerToday: tracker.PartnerLoggedInToday(ctx, user),
		}
	}
}

func (m Model) toastTick() tea.Cmd {
	session := m.session
	return tea.Tick(toastRefresh, func(_ time.Time) tea.Msg {
		return toastTickMsg{session: session}
	})
}

// watchConfig forwards configuration changes into the Bubble Tea loop.
func (m Model) watchConfig(path string) {
	ch := m.configCh
	logger := m.logger
	model.WatchConfig(path, func(cfg *model.AppConfig) {
		// Keep only the newest configuration.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- cfg:
		default:
		}
	}, func(err error) {
		logger.Warn("ignoring unreadable configuration", zap.Error(err))
	})
}

func (m Model) waitForConfig() tea.Cmd {
	ch := m.configCh
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return configChangedMsg{cfg: <-ch}
	}
}

package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/auth"
	"github.com/nhle/ourspace/internal/credential"
	"github.com/nhle/ourspace/internal/logging"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/notify"
	"github.com/nhle/ourspace/internal/store"
	"github.com/nhle/ourspace/internal/streak"
	appsync "github.com/nhle/ourspace/internal/sync"
	"github.com/nhle/ourspace/internal/theme"
	"github.com/nhle/ourspace/internal/ui"
	"github.com/nhle/ourspace/internal/ui/command"
	"github.com/nhle/ourspace/internal/ui/dashboard"
	feedview "github.com/nhle/ourspace/internal/ui/feed"
	helpview "github.com/nhle/ourspace/internal/ui/help"
	"github.com/nhle/ourspace/internal/ui/login"
)

// toastRefresh is how often the toast strip is re-rendered so expired
// toasts disappear on time.
const toastRefresh = time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewFeed
	ViewHelp
	ViewCommand
)

// Options wires the application to its collaborators.
type Options struct {
	Store  store.Store
	Config *model.AppConfig
	// ConfigPath enables live reload of notification timings when set.
	ConfigPath string
	// Sessions remembers the logged in participant. Nil disables it.
	Sessions *credential.Sessions
	Logger   *zap.Logger
	Now      func() time.Time
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and the logged in participant's session.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *KeyMap

	store      store.Store
	cfg        *model.AppConfig
	sessions   *credential.Sessions
	logger     *zap.Logger
	now        func() time.Time
	auth       *auth.Authenticator
	tracker    *streak.Tracker
	dispatcher *notify.Dispatcher
	prefs      *notify.Preferences
	configCh   chan *model.AppConfig

	// Set while somebody is logged in.
	user    model.Participant
	session int
	feed    *notify.Feed
	poller  *appsync.Poller

	loginView     login.Model
	dashboardView dashboard.Model
	feedView      feedview.Model
	helpView      helpview.Model
	commandView   command.Model

	unread        int
	toasts        []model.Notification
	statusMessage string
	ready         bool
}

// New creates the root application model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = model.DefaultAppConfig()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := logging.OrNop(opts.Logger).Named("app")
	keys := DefaultKeyMap()
	theme.Apply(cfg.Display.Theme)

	m := Model{
		currentView: ViewLogin,
		keys:        keys,
		store:       opts.Store,
		cfg:         cfg,
		sessions:    opts.Sessions,
		logger:      logger,
		now:         now,
		auth:        auth.FromConfig(cfg),
		tracker:     streak.NewTracker(opts.Store, opts.Logger, streak.WithClock(now)),
		dispatcher:  notify.NewDispatcher(opts.Store, opts.Logger, notify.WithDispatchClock(now)),
		prefs:       notify.NewPreferences(opts.Store, opts.Logger),

		loginView:     login.New(80, 24),
		dashboardView: dashboard.New(now, 80, 24),
		feedView:      feedview.New(keys, now, 80, 24),
		helpView:      helpview.New(keys, 80, 24),
		commandView:   command.New(80, 24),
	}

	if opts.ConfigPath != "" {
		m.configCh = make(chan *model.AppConfig, 1)
		m.watchConfig(opts.ConfigPath)
	}

	return m
}

// Init restores a saved session if there is one and otherwise shows the
// login form.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.restoreSession()}
	if m.configCh != nil {
		cmds = append(cmds, m.waitForConfig())
	}
	return tea.Batch(cmds...)
}

// Close stops background polling. It is safe to call more than once.
func (m Model) Close() {
	if m.poller != nil {
		m.poller.Stop()
	}
}

// User returns the logged in participant, or the zero value.
func (m Model) User() model.Participant {
	return m.user
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.loginView.SetSize(contentWidth, contentHeight)
		m.dashboardView.SetSize(contentWidth, contentHeight)
		m.feedView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case noSessionMsg:
		m.currentView = ViewLogin
		cmd := m.loginView.Start("")
		return m, cmd

	case login.SubmitMsg:
		user, err := m.auth.Login(msg.Name, msg.Password)
		if err != nil {
			m.logger.Info("login rejected", zap.String("name", msg.Name))
			cmd := m.loginView.Start("Invalid username or password")
			return m, cmd
		}
		return m, m.completeLogin(user, false)

	case loggedInMsg:
		cmd := m.beginSession(msg.user, msg.restored)
		return m, cmd

	case dashboardLoadedMsg:
		if msg.session != m.session {
			return m, nil
		}
		snap := m.dashboardView.Snapshot()
		snap.Viewer = m.user
		snap.Counter = msg.counter
		snap.PartnerToday = msg.partnerToday
		m.dashboardView.SetSnapshot(snap)
		return m, nil

	case polledMsg:
		if msg.session != m.session || m.poller == nil {
			return m, nil
		}
		res := msg.result
		m.applyFeed(res.Notifications, res.Unread, res.Enabled)
		if res.Enabled {
			m.toasts = m.poller.Toaster().Active()
		}
		return m, tea.Batch(m.waitForFeed(m.poller.WaitForNextResult()), m.loadDashboard())

	case feedChangedMsg:
		if msg.session != m.session {
			return m, nil
		}
		m.applyFeed(msg.view, msg.unread, m.dashboardView.Snapshot().NotificationsOn)
		return m, nil

	case prefsChangedMsg:
		if msg.err != nil {
			m.statusMessage = "Could not save notification setting"
			return m, nil
		}
		m.statusMessage = "Notifications off"
		if msg.enabled {
			m.statusMessage = "Notifications on"
		}
		if m.feed != nil {
			m.applyFeed(m.feed.Notifications(), m.unread, msg.enabled)
		}
		return m, nil

	case dispatchedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Could not share %s: %v", msg.category, msg.err)
			return m, nil
		}
		m.statusMessage = fmt.Sprintf("Shared %s with %s", msg.category, m.user.Partner())
		return m, nil

	case toastTickMsg:
		if msg.session != m.session || m.poller == nil {
			return m, nil
		}
		if m.dashboardView.Snapshot().NotificationsOn {
			m.toasts = m.poller.Toaster().Active()
		}
		return m, m.toastTick()

	case configChangedMsg:
		m.applyConfig(msg.cfg)
		return m, m.waitForConfig()

	case loggedOutMsg:
		m.endSession()
		m.statusMessage = "Logged out"
		cmd := m.loginView.Start("")
		return m, cmd

	case command.CommandMsg:
		m.currentView = m.previousView
		m.commandView.Blur()
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case command.CancelMsg:
		m.currentView = m.previousView
		m.commandView.Blur()
		return m, nil

	case feedview.MarkReadMsg:
		return m, m.markRead(msg.ID)

	case feedview.DeleteMsg:
		return m, m.deleteNotification(msg.ID)

	case feedview.MarkAllReadMsg:
		return m, m.markAllRead()

	case feedview.ToggleNotificationsMsg:
		return m, m.togglePrefs()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Close()
			return m, tea.Quit
		}

		// The login form and the palette own every other key.
		if m.currentView == ViewLogin || m.currentView == ViewCommand {
			break
		}

		m.statusMessage = ""
		switch msg.String() {
		case "q":
			m.Close()
			return m, tea.Quit

		case "?":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case ":":
			m.previousView = m.currentView
			m.currentView = ViewCommand
			cmd := m.commandView.Focus()
			return m, cmd

		case "esc":
			if m.currentView != ViewDashboard {
				m.currentView = ViewDashboard
				return m, nil
			}

		case "n":
			m.currentView = ViewFeed
			return m, nil

		case "h":
			m.currentView = ViewDashboard
			return m, m.loadDashboard()

		case "r":
			if m.poller != nil {
				m.poller.Refresh()
			}
			return m, m.loadDashboard()

		case "x":
			if m.poller != nil {
				for _, t := range m.toasts {
					m.poller.Toaster().Dismiss(t.ID)
				}
			}
			m.toasts = nil
			return m, nil

		case "L":
			return m, m.logout()
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewDashboard:
		m.dashboardView, cmd = m.dashboardView.Update(msg)
	case ViewFeed:
		m.feedView, cmd = m.feedView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// applyFeed pushes a refreshed feed into every view that shows it.
func (m *Model) applyFeed(view []model.Notification, unread int, enabled bool) {
	m.unread = unread
	m.feedView.SetNotifications(view, enabled)
	m.dashboardView.SetFeed(view, unread, enabled)
	if !enabled {
		m.toasts = nil
	}
}

// applyConfig takes over settings that can change while running.
func (m *Model) applyConfig(cfg *model.AppConfig) {
	m.cfg = cfg
	m.auth = auth.FromConfig(cfg)
	theme.Apply(cfg.Display.Theme)
	if m.poller != nil {
		m.poller.SetInterval(cfg.Notifications.PollInterval())
		m.poller.SetToastTimings(cfg.Notifications.ToastWindow(), cfg.Notifications.ToastTTL())
	}
	m.logger.Info("configuration reloaded",
		zap.Duration("poll_interval", cfg.Notifications.PollInterval()),
	)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	title := "Our Space 💕"
	if m.user.Valid() {
		title = fmt.Sprintf("Our Space 💕 %s", m.user)
	}
	header := m.layout.RenderHeader(title, notify.BadgeText(m.unread))
	toasts := m.layout.RenderToasts(m.toasts)
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.renderContent(), toasts, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewFeed:
		return m.feedView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusMessage != "" {
		return m.statusMessage
	}

	switch m.currentView {
	case ViewLogin:
		return "enter next | ctrl+c quit"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter run | esc back"
	case ViewFeed:
		return "enter read | d delete | A read all | m mute | esc back"
	default:
		return "q quit | ? help | n notifications | : share | r refresh | L log out"
	}
}

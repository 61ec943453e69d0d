package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/auth"
	"github.com/nhle/ourspace/internal/credential"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/notify"
	"github.com/nhle/ourspace/internal/store"
	"github.com/nhle/ourspace/tests/testutil"
)

var evening = time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)

type cliEnv struct {
	store    *store.MemoryStore
	sessions *credential.Sessions
	clock    *testutil.Clock
	cfg      string
}

// setupCLI points the commands at an in-memory store, an in-memory keyring
// and a fixed clock for the duration of the test.
func setupCLI(t *testing.T) *cliEnv {
	t.Helper()

	env := &cliEnv{
		store:    store.NewMemoryStore(),
		sessions: credential.NewSessions(keyring.NewArrayKeyring(nil)),
		clock:    testutil.NewClock(evening),
		cfg:      filepath.Join(t.TempDir(), "config.yaml"),
	}

	prevStore, prevSessions, prevNow := openStore, openSessions, now
	openStore = func() (store.Store, error) { return env.store, nil }
	openSessions = func() (*credential.Sessions, error) { return env.sessions, nil }
	now = env.clock.Now
	t.Cleanup(func() {
		openStore, openSessions, now = prevStore, prevSessions, prevNow
	})
	resetFlags()

	return env
}

// resetFlags restores flag defaults. cobra keeps parsed values on the
// package-level commands between Execute calls.
func resetFlags() {
	configPath = ""
	verbose = false
	memoryStore = false
	loginPassword = ""
	streakOutput = outputText
	feedOutput = outputText
	feedWatch = false
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", e.cfg}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func (e *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, "ourspace %v", args)
	return out
}

func (e *cliEnv) feed(t *testing.T) []model.Notification {
	t.Helper()
	out := e.mustRun(t, "feed", "-o", "json")
	var view []model.Notification
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	return view
}

func TestLoginRecordsVisit(t *testing.T) {
	env := setupCLI(t)

	out := env.mustRun(t, "login", "victor", "-p", "love2024")
	assert.Equal(t, "Logged in as Victor. Days together: 1\n", out)

	assert.Equal(t, "Victor\n", env.mustRun(t, "whoami"))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := setupCLI(t)

	_, err := env.run(t, "login", "mimi", "-p", "love2024")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	assert.Equal(t, "Not logged in\n", env.mustRun(t, "whoami"))
}

func TestLogout(t *testing.T) {
	env := setupCLI(t)

	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")
	assert.Equal(t, "Logged out\n", env.mustRun(t, "logout"))
	assert.Equal(t, "Not logged in\n", env.mustRun(t, "whoami"))

	_, err := env.run(t, "feed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestStreakReport(t *testing.T) {
	env := setupCLI(t)

	env.mustRun(t, "login", "victor", "-p", "love2024")
	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")

	// Both on day one counts once.
	out := env.mustRun(t, "streak")
	assert.Contains(t, out, "Days together: 1\n")
	assert.Contains(t, out, "Partner visited today: yes\n")

	env.clock.Advance(24 * time.Hour)
	env.mustRun(t, "login", "victor", "-p", "love2024")
	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")

	var report streakReport
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "streak", "-o", "json")), &report))
	assert.Equal(t, 2, report.Counter.Count)
	assert.Equal(t, "Mimi", report.User)
	assert.Equal(t, model.Day(env.clock.Now()), report.LastLogin)
	require.NotNil(t, report.PartnerToday)
	assert.True(t, *report.PartnerToday)
}

func TestStreakWithoutSession(t *testing.T) {
	env := setupCLI(t)

	out := env.mustRun(t, "streak")
	assert.Equal(t, "Days together: 0\n", out)
}

func TestNotifyReachesPartnerFeed(t *testing.T) {
	env := setupCLI(t)

	env.mustRun(t, "login", "victor", "-p", "love2024")
	out := env.mustRun(t, "notify", "letters", "sent")
	assert.Equal(t, "💌 Sent to Mimi\n", out)

	// The sender does not see their own event.
	assert.Empty(t, env.feed(t))

	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")
	view := env.feed(t)
	require.Len(t, view, 1)
	assert.Equal(t, "Victor sent a love letter", view[0].Message)
	assert.Equal(t, "Victor", view[0].From)
	assert.Equal(t, "Mimi", view[0].To)
	assert.False(t, view[0].Read)

	text := env.mustRun(t, "feed")
	assert.Contains(t, text, "1 notification(s), 1 unread")
	assert.Contains(t, text, "Just now")
}

func TestNotifyDetailsReplaceMessage(t *testing.T) {
	env := setupCLI(t)

	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")
	env.mustRun(t, "notify", "mood", "updated", "Mood:", "😊", "(Happy)")

	env.mustRun(t, "login", "victor", "-p", "love2024")
	view := env.feed(t)
	require.Len(t, view, 1)
	assert.Equal(t, "Mood: 😊 (Happy)", view[0].Message)
	assert.Equal(t, "😊", view[0].Icon)
}

func TestFeedReadAndDelete(t *testing.T) {
	env := setupCLI(t)

	env.mustRun(t, "login", "victor", "-p", "love2024")
	env.mustRun(t, "notify", "journal", "created")
	env.clock.Advance(time.Minute)
	env.mustRun(t, "notify", "goals", "completed")

	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")
	view := env.feed(t)
	require.Len(t, view, 2)
	newest, oldest := view[0], view[1]
	assert.Equal(t, "Victor completed a goal", newest.Message)

	env.mustRun(t, "feed", "read", oldest.ID)
	view = env.feed(t)
	assert.False(t, view[0].Read)
	assert.True(t, view[1].Read)

	env.mustRun(t, "feed", "delete", newest.ID)
	view = env.feed(t)
	require.Len(t, view, 1)
	assert.Equal(t, oldest.ID, view[0].ID)

	env.mustRun(t, "notify", "checkin", "completed")
	env.mustRun(t, "login", "victor", "-p", "love2024")
	require.Len(t, env.feed(t), 1)
	env.mustRun(t, "feed", "read-all")
	assert.Contains(t, env.mustRun(t, "feed"), "1 notification(s), 0 unread")
}

func TestPrefsNotificationsOff(t *testing.T) {
	env := setupCLI(t)

	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")
	assert.Equal(t, "Notifications off for Mimi\n", env.mustRun(t, "prefs", "notifications", "off"))

	env.mustRun(t, "login", "victor", "-p", "love2024")
	env.mustRun(t, "notify", "journal", "created")

	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")
	assert.Equal(t, "No notifications\n", env.mustRun(t, "feed"))

	assert.Equal(t, "Notifications on for Mimi\n", env.mustRun(t, "prefs", "notifications", "toggle"))
}

func TestPrefsRejectsUnknownState(t *testing.T) {
	env := setupCLI(t)

	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")
	_, err := env.run(t, "prefs", "notifications", "maybe")
	require.Error(t, err)
}

func TestRestoredSessionCountsAsVisit(t *testing.T) {
	env := setupCLI(t)

	env.mustRun(t, "login", "victor", "-p", "love2024")
	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")

	// Next day Victor logs in, then Mimi comes back through her saved
	// session without typing a password.
	env.clock.Advance(24 * time.Hour)
	env.mustRun(t, "login", "victor", "-p", "love2024")
	require.NoError(t, env.sessions.Save(model.Mimi))

	env.mustRun(t, "notify", "journal", "created")

	var report streakReport
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "streak", "-o", "json")), &report))
	assert.Equal(t, 2, report.Counter.Count)
	assert.Equal(t, "Mimi", report.User)
	assert.Equal(t, model.Day(env.clock.Now()), report.LastLogin)
	require.NotNil(t, report.PartnerToday)
	assert.True(t, *report.PartnerToday)

	out := env.mustRun(t, "streak")
	assert.Contains(t, out, "Days together: 2\n")
	assert.Contains(t, out, "Partner visited today: yes\n")
}

func TestEachCommandOnNewDayCountsOnce(t *testing.T) {
	env := setupCLI(t)

	env.mustRun(t, "login", "victor", "-p", "love2024")
	env.mustRun(t, "login", "mimi", "-p", "sweetheart2024")
	env.clock.Advance(24 * time.Hour)

	// Only Mimi visits on day two, through several commands.
	env.mustRun(t, "feed")
	env.mustRun(t, "feed", "read-all")
	env.mustRun(t, "prefs", "notifications", "on")

	var report streakReport
	require.NoError(t, json.Unmarshal([]byte(env.mustRun(t, "streak", "-o", "json")), &report))
	assert.Equal(t, 1, report.Counter.Count)
	assert.Equal(t, model.Day(env.clock.Now()), report.LastLogin)
	require.NotNil(t, report.PartnerToday)
	assert.False(t, *report.PartnerToday)
}

func TestPrefsThemeSavesConfig(t *testing.T) {
	env := setupCLI(t)

	assert.Equal(t, "Theme set to ocean\n", env.mustRun(t, "prefs", "theme", "ocean"))

	saved, err := model.LoadConfig(env.cfg)
	require.NoError(t, err)
	assert.Equal(t, "ocean", saved.Display.Theme)
	assert.Equal(t, 5*time.Second, saved.Notifications.PollInterval())

	_, err = env.run(t, "prefs", "theme", "neon")
	require.Error(t, err)
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	err := render(io.Discard, "xml", nil, func(io.Writer) error { return nil })
	require.Error(t, err)
}

func TestRenderYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, render(&out, outputYAML, streakReport{User: "Mimi"}, nil))
	assert.Contains(t, out.String(), "user: Mimi")
	assert.NotContains(t, out.String(), "partner_today")
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchFeedAnnouncesNewEvents(t *testing.T) {
	env := setupCLI(t)
	cfg = model.DefaultAppConfig()
	logger = zap.NewNop()

	d := notify.NewDispatcher(env.store, logger, notify.WithDispatchClock(env.clock.Now))
	require.NoError(t, d.Dispatch(context.Background(), "voice", "victor", "sent", ""))

	feed, err := notify.NewFeed(env.store, model.Mimi, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	out := &lockedBuffer{}
	go func() { done <- watchFeed(ctx, out, env.store, feed) }()

	assert.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("🔔 🎤 Victor sent a voice message"))
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watchFeed did not stop")
	}
	assert.Contains(t, out.String(), "1 notification(s), 1 unread")
}

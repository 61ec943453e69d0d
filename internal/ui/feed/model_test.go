package feed

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/ourspace/internal/keys"
	"github.com/nhle/ourspace/internal/model"
)

func keyMsg(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newModel(view []model.Notification) Model {
	m := New(keys.DefaultKeyMap(), nil, 80, 24)
	m.SetNotifications(view, true)
	return m
}

func TestUpdate_EmitsActions(t *testing.T) {
	m := newModel([]model.Notification{
		{ID: "a", Message: "first", Timestamp: time.Now()},
		{ID: "b", Message: "second", Timestamp: time.Now(), Read: true},
	})

	_, cmd := m.Update(keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, MarkReadMsg{ID: "a"}, cmd())

	_, cmd = m.Update(keyMsg("d"))
	require.NotNil(t, cmd)
	assert.Equal(t, DeleteMsg{ID: "a"}, cmd())

	_, cmd = m.Update(keyMsg("A"))
	require.NotNil(t, cmd)
	assert.Equal(t, MarkAllReadMsg{}, cmd())

	_, cmd = m.Update(keyMsg("m"))
	require.NotNil(t, cmd)
	assert.Equal(t, ToggleNotificationsMsg{}, cmd())
}

func TestUpdate_MarkReadSkipsReadItems(t *testing.T) {
	m := newModel([]model.Notification{{ID: "a", Read: true}})
	_, cmd := m.Update(keyMsg("enter"))
	assert.Nil(t, cmd)
}

func TestUpdate_EmptyFeed(t *testing.T) {
	m := newModel(nil)

	_, cmd := m.Update(keyMsg("d"))
	assert.Nil(t, cmd)

	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "No notifications yet.")
}

func TestView_ShowsPreferenceState(t *testing.T) {
	m := New(keys.DefaultKeyMap(), nil, 80, 24)
	m.SetNotifications([]model.Notification{{ID: "a", Message: "hello", Icon: "💌"}}, false)

	out := m.View()
	assert.Contains(t, out, "notifications off")
	assert.Contains(t, out, "hello")
}

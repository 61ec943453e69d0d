package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/store"
	"github.com/nhle/ourspace/tests/testutil"
)

func newFeed(t *testing.T, s store.Store, viewer model.Participant) *Feed {
	t.Helper()
	f, err := NewFeed(s, viewer, nil)
	require.NoError(t, err)
	return f
}

func ids(list []model.Notification) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestNewFeed_RejectsUnknownViewer(t *testing.T) {
	_, err := NewFeed(store.NewMemoryStore(), model.Participant(0), nil)
	assert.ErrorIs(t, err, model.ErrUnknownParticipant)
}

func TestFeed_Scenario(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	clock := testutil.NewClock(base)
	d := NewDispatcher(s, nil, WithDispatchClock(clock.Now))

	for _, cat := range []string{"journal", "mood", "goals"} {
		require.NoError(t, d.Dispatch(ctx, cat, "Victor", "created", ""))
		clock.Advance(time.Second)
	}

	feed := newFeed(t, s, model.Mimi)
	view := feed.Poll(ctx)
	require.Len(t, view, 3)
	assert.Equal(t, 3, feed.UnreadCount())

	feed.MarkRead(ctx, view[0].ID)
	assert.Equal(t, 2, feed.UnreadCount())

	view = feed.Delete(ctx, view[1].ID)
	assert.Len(t, view, 2)
	assert.Equal(t, 1, feed.UnreadCount())
}

func TestFeed_PollFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	// Stored out of order and with mixed-case recipients.
	seed := []model.Notification{
		{ID: "a", To: "mimi", Timestamp: base.Add(1 * time.Minute)},
		{ID: "b", To: "Victor", Timestamp: base.Add(5 * time.Minute)},
		{ID: "c", To: "MIMI", Timestamp: base.Add(3 * time.Minute)},
		{ID: "d", To: "Mimi", Timestamp: base},
	}
	require.NoError(t, store.Save(ctx, s, store.CollectionNotifications, store.SharedKey, seed))

	got := ids(newFeed(t, s, model.Mimi).Poll(ctx))
	if diff := cmp.Diff([]string{"c", "a", "d"}, got); diff != "" {
		t.Errorf("mimi feed mismatch (-want +got):\n%s", diff)
	}

	got = ids(newFeed(t, s, model.Victor).Poll(ctx))
	if diff := cmp.Diff([]string{"b"}, got); diff != "" {
		t.Errorf("victor feed mismatch (-want +got):\n%s", diff)
	}
}

func TestFeed_MarkAllReadOnlyTouchesViewer(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	d := NewDispatcher(s, nil)

	require.NoError(t, d.Dispatch(ctx, "journal", "Victor", "wrote", ""))
	require.NoError(t, d.Dispatch(ctx, "mood", "Victor", "updated", ""))
	require.NoError(t, d.Dispatch(ctx, "journal", "Mimi", "wrote", ""))

	mimi := newFeed(t, s, model.Mimi)
	victor := newFeed(t, s, model.Victor)

	mimi.MarkAllRead(ctx)
	assert.Equal(t, 0, mimi.UnreadCount())

	victor.Poll(ctx)
	assert.Equal(t, 1, victor.UnreadCount())
}

func TestFeed_MarkReadIsOneWay(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	d := NewDispatcher(s, nil)
	require.NoError(t, d.Dispatch(ctx, "journal", "Victor", "wrote", ""))

	feed := newFeed(t, s, model.Mimi)
	id := feed.Poll(ctx)[0].ID

	feed.MarkRead(ctx, id)
	view := feed.MarkRead(ctx, id)
	require.Len(t, view, 1)
	assert.True(t, view[0].Read)
	assert.Equal(t, 0, feed.UnreadCount())
}

func TestFeed_DeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	flaky := testutil.NewFlakyStore(store.NewMemoryStore())
	d := NewDispatcher(flaky, nil)
	require.NoError(t, d.Dispatch(ctx, "journal", "Victor", "wrote", ""))
	require.NoError(t, d.Dispatch(ctx, "journal", "Victor", "wrote", ""))

	feed := newFeed(t, flaky, model.Mimi)
	before := flaky.SetCalls()

	view := feed.Delete(ctx, "does-not-exist")
	assert.Len(t, view, 2)
	assert.Equal(t, before, flaky.SetCalls(), "nothing changed so nothing is written")
}

func TestFeed_DeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	d := NewDispatcher(s, nil)
	for i := 0; i < 3; i++ {
		require.NoError(t, d.Dispatch(ctx, "journal", "Mimi", "wrote", ""))
	}

	feed := newFeed(t, s, model.Victor)
	view := feed.Poll(ctx)
	target := view[1].ID

	view = feed.Delete(ctx, target)
	assert.Len(t, view, 2)
	assert.NotContains(t, ids(view), target)
	assert.Len(t, sharedNotifications(t, s), 2)
}

func TestFeed_SeesPartnerWritesOnNextPoll(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	d := NewDispatcher(s, nil)

	feed := newFeed(t, s, model.Mimi)
	assert.Empty(t, feed.Poll(ctx))

	require.NoError(t, d.Dispatch(ctx, "letters", "Victor", "sent", ""))
	assert.Empty(t, feed.Notifications(), "working view only changes on poll")
	assert.Len(t, feed.Poll(ctx), 1)
}

func TestFeed_UnreadableStorageIsEmpty(t *testing.T) {
	ctx := context.Background()
	flaky := testutil.NewFlakyStore(store.NewMemoryStore())
	flaky.FailReads(true)

	feed := newFeed(t, flaky, model.Mimi)
	assert.Empty(t, feed.Poll(ctx))
	assert.Equal(t, 0, feed.UnreadCount())
}

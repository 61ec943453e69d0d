package streak

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/store"
	"github.com/nhle/ourspace/tests/testutil"
)

var dayOne = time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)

func newTracker(t *testing.T) (*Tracker, *testutil.Clock, store.Store) {
	t.Helper()
	s := testutil.NewTestStore(t)
	clock := testutil.NewClock(dayOne)
	return NewTracker(s, nil, WithClock(clock.Now)), clock, s
}

func TestRecordLogin_FirstLoginEver(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := newTracker(t)

	require.NoError(t, tracker.RecordLogin(ctx, "Victor"))

	counter := tracker.Counter(ctx)
	assert.Equal(t, 1, counter.Count)
	require.NotNil(t, counter.StartDate)
	assert.Equal(t, "2026-10-19", *counter.StartDate)

	day, ok := tracker.LastLogin(ctx, model.Victor)
	assert.True(t, ok)
	assert.Equal(t, "2026-10-19", day)

	_, ok = tracker.LastLogin(ctx, model.Mimi)
	assert.False(t, ok)
}

func TestRecordLogin_SameDayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tracker, clock, _ := newTracker(t)

	// Day one starts the counter; move on so the pair logic applies.
	require.NoError(t, tracker.RecordLogin(ctx, "victor"))
	clock.Advance(24 * time.Hour)

	for _, user := range []string{"Victor", "VICTOR", "victor"} {
		require.NoError(t, tracker.RecordLogin(ctx, user))
		assert.Equal(t, 1, tracker.Counter(ctx).Count, "login as %q", user)
	}
}

func TestRecordLogin_BothParticipantsSameDay(t *testing.T) {
	ctx := context.Background()
	tracker, clock, _ := newTracker(t)

	require.NoError(t, tracker.RecordLogin(ctx, "Victor"))
	require.Equal(t, 1, tracker.Counter(ctx).Count)

	clock.Advance(24 * time.Hour)
	require.NoError(t, tracker.RecordLogin(ctx, "Victor"))
	assert.Equal(t, 1, tracker.Counter(ctx).Count, "one participant alone does not count")

	clock.Advance(3 * time.Hour)
	require.NoError(t, tracker.RecordLogin(ctx, "Mimi"))
	counter := tracker.Counter(ctx)
	assert.Equal(t, 2, counter.Count)
	require.NotNil(t, counter.LastUpdate)
	assert.Equal(t, "2026-10-20", *counter.LastUpdate)

	// A second pair of logins on the same day changes nothing.
	require.NoError(t, tracker.RecordLogin(ctx, "Victor"))
	require.NoError(t, tracker.RecordLogin(ctx, "Mimi"))
	assert.Equal(t, 2, tracker.Counter(ctx).Count)
}

func TestRecordLogin_FirstDayCountsOnce(t *testing.T) {
	ctx := context.Background()
	tracker, _, _ := newTracker(t)

	require.NoError(t, tracker.RecordLogin(ctx, "Victor"))
	require.NoError(t, tracker.RecordLogin(ctx, "Mimi"))
	require.NoError(t, tracker.RecordLogin(ctx, "Victor"))

	assert.Equal(t, 1, tracker.Counter(ctx).Count)
}

func TestRecordLogin_StartDateNeverChanges(t *testing.T) {
	ctx := context.Background()
	tracker, clock, _ := newTracker(t)

	require.NoError(t, tracker.RecordLogin(ctx, "Mimi"))
	for i := 0; i < 5; i++ {
		clock.Advance(24 * time.Hour)
		require.NoError(t, tracker.RecordLogin(ctx, "Victor"))
		require.NoError(t, tracker.RecordLogin(ctx, "Mimi"))
	}

	counter := tracker.Counter(ctx)
	require.NotNil(t, counter.StartDate)
	assert.Equal(t, "2026-10-19", *counter.StartDate)
	assert.Equal(t, 6, counter.Count)
}

func TestRecordLogin_SkippedDaysDoNotCount(t *testing.T) {
	ctx := context.Background()
	tracker, clock, _ := newTracker(t)

	require.NoError(t, tracker.RecordLogin(ctx, "Mimi"))

	// Victor on day two, Mimi on day three: never together.
	clock.Advance(24 * time.Hour)
	require.NoError(t, tracker.RecordLogin(ctx, "Victor"))
	clock.Advance(24 * time.Hour)
	require.NoError(t, tracker.RecordLogin(ctx, "Mimi"))

	assert.Equal(t, 1, tracker.Counter(ctx).Count)
}

func TestRecordLogin_UnknownParticipant(t *testing.T) {
	ctx := context.Background()
	tracker, _, s := newTracker(t)

	err := tracker.RecordLogin(ctx, "mallory")
	assert.ErrorIs(t, err, model.ErrUnknownParticipant)

	_, err = s.Get(ctx, store.CollectionDaysTogether, store.SharedKey)
	assert.ErrorIs(t, err, store.ErrNotFound, "rejected logins must not touch storage")
}

func TestRecordLogin_WriteFailureIsDropped(t *testing.T) {
	ctx := context.Background()
	flaky := testutil.NewFlakyStore(store.NewMemoryStore())
	tracker := NewTracker(flaky, nil, WithClock(func() time.Time { return dayOne }))

	flaky.FailWrites(true)
	require.NoError(t, tracker.RecordLogin(ctx, "Victor"))
	assert.Equal(t, model.StreakCounter{}, tracker.Counter(ctx))

	flaky.FailWrites(false)
	require.NoError(t, tracker.RecordLogin(ctx, "Victor"))
	assert.Equal(t, 1, tracker.Counter(ctx).Count)
}

func TestCounter_MalformedRecordIsEmpty(t *testing.T) {
	ctx := context.Background()
	tracker, _, s := newTracker(t)

	require.NoError(t, s.Set(ctx, store.CollectionDaysTogether, store.SharedKey, []byte("garbage")))
	assert.Equal(t, model.StreakCounter{}, tracker.Counter(ctx))
}

func TestPartnerLoggedInToday(t *testing.T) {
	ctx := context.Background()
	tracker, clock, _ := newTracker(t)

	assert.False(t, tracker.PartnerLoggedInToday(ctx, model.Victor))

	require.NoError(t, tracker.RecordLogin(ctx, "Mimi"))
	assert.True(t, tracker.PartnerLoggedInToday(ctx, model.Victor))
	assert.False(t, tracker.PartnerLoggedInToday(ctx, model.Mimi))

	clock.Advance(24 * time.Hour)
	assert.False(t, tracker.PartnerLoggedInToday(ctx, model.Victor))
}

// Each caller computes "today" from its own local clock. Two participants
// on either side of midnight in different zones do not share a day, so the
// pair is not counted. This is a known limitation.
func TestRecordLogin_DifferentTimeZonesDisagreeOnToday(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	tokyo := time.FixedZone("JST", 9*60*60)
	newYork := time.FixedZone("EDT", -4*60*60)

	// Same instant: 2026-10-20 01:00 in Tokyo, 2026-10-19 12:00 in New York.
	instant := time.Date(2026, 10, 19, 16, 0, 0, 0, time.UTC)

	setup := NewTracker(s, nil, WithClock(func() time.Time { return instant.Add(-48 * time.Hour) }))
	require.NoError(t, setup.RecordLogin(ctx, "Victor"))

	victor := NewTracker(s, nil, WithClock(func() time.Time { return instant.In(tokyo) }))
	mimi := NewTracker(s, nil, WithClock(func() time.Time { return instant.In(newYork) }))

	require.NoError(t, victor.RecordLogin(ctx, "Victor"))
	require.NoError(t, mimi.RecordLogin(ctx, "Mimi"))

	vDay, _ := victor.LastLogin(ctx, model.Victor)
	mDay, _ := mimi.LastLogin(ctx, model.Mimi)
	assert.Equal(t, "2026-10-20", vDay)
	assert.Equal(t, "2026-10-19", mDay)
	assert.Equal(t, 1, victor.Counter(ctx).Count)
}

// Package streak records daily logins and counts the days on which both
// participants showed up.
package streak

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/logging"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/store"
)

// Tracker maintains the per-participant login markers and the shared
// days-together counter.
type Tracker struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source. "Today" is taken from the local
// date of whatever the clock returns.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a Tracker over s. A nil logger disables logging.
func NewTracker(s store.Store, logger *zap.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		logger: logging.OrNop(logger).Named("streak"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordLogin notes a successful login by user. It is idempotent within a
// calendar day. The only error it returns is model.ErrUnknownParticipant;
// storage failures are logged and the update is dropped.
func (t *Tracker) RecordLogin(ctx context.Context, user string) error {
	p, err := model.ParseParticipant(user)
	if err != nil {
		return err
	}
	t.recordLogin(ctx, p)
	return nil
}

func (t *Tracker) recordLogin(ctx context.Context, p model.Participant) {
	today := model.Day(t.now())

	if last, ok := t.LastLogin(ctx, p); ok && last == today {
		return
	}

	if err := store.Save(ctx, t.store, store.CollectionLastLogin, p.Key(), today); err != nil {
		t.logger.Warn("dropping login marker",
			zap.String("participant", p.Key()),
			zap.Error(err),
		)
		return
	}

	counter := t.Counter(ctx)
	switch {
	case !counter.Started():
		// The very first login ever. Marking the day as counted keeps the
		// partner's first login from bumping the count a second time.
		counter.StartDate = &today
		counter.LastUpdate = &today
		counter.Count = 1
	case t.bothLoggedInOn(ctx, today) && !counter.CountedOn(today):
		counter.Count++
		counter.LastUpdate = &today
	default:
		return
	}

	if err := store.Save(ctx, t.store, store.CollectionDaysTogether, store.SharedKey, counter); err != nil {
		t.logger.Warn("dropping days-together update", zap.Error(err))
		return
	}

	t.logger.Info("days together updated",
		zap.Int("count", counter.Count),
		zap.String("day", today),
		zap.String("participant", p.Key()),
	)
}

func (t *Tracker) bothLoggedInOn(ctx context.Context, day string) bool {
	for _, p := range model.Participants() {
		last, ok := t.LastLogin(ctx, p)
		if !ok || last != day {
			return false
		}
	}
	return true
}

// LastLogin returns the day of p's most recent login.
func (t *Tracker) LastLogin(ctx context.Context, p model.Participant) (string, bool) {
	var day string
	if err := store.Load(ctx, t.store, store.CollectionLastLogin, p.Key(), &day); err != nil {
		t.logStorageRead("last login", err)
		return "", false
	}
	return day, day != ""
}

// Counter returns the days-together counter, or its zero state when none
// has been recorded or the stored record is unreadable.
func (t *Tracker) Counter(ctx context.Context) model.StreakCounter {
	var counter model.StreakCounter
	if err := store.Load(ctx, t.store, store.CollectionDaysTogether, store.SharedKey, &counter); err != nil {
		t.logStorageRead("days together", err)
		return model.StreakCounter{}
	}
	return counter
}

// PartnerLoggedInToday reports whether p's partner has logged in on p's
// current day.
func (t *Tracker) PartnerLoggedInToday(ctx context.Context, p model.Participant) bool {
	partner, err := model.PartnerOf(p)
	if err != nil {
		return false
	}
	last, ok := t.LastLogin(ctx, partner)
	return ok && last == model.Day(t.now())
}

func (t *Tracker) logStorageRead(what string, err error) {
	if errors.Is(err, store.ErrMalformed) {
		t.logger.Warn("ignoring unreadable record", zap.String("record", what), zap.Error(err))
		return
	}
	t.logger.Debug("storage read failed", zap.String("record", what), zap.Error(err))
}

package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nhle/ourspace/internal/store"
)

// ErrInjected is returned by FlakyStore when a failure is switched on.
var ErrInjected = errors.New("injected storage failure")

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(store.MemoryDSN)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// FlakyStore wraps a Store and fails reads or writes on demand, the way a
// full disk or a locked database would.
type FlakyStore struct {
	store.Store

	mu       sync.Mutex
	failGets bool
	failSets bool
	setCalls int
}

// NewFlakyStore wraps s.
func NewFlakyStore(s store.Store) *FlakyStore {
	return &FlakyStore{Store: s}
}

// FailReads toggles read failures.
func (f *FlakyStore) FailReads(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGets = fail
}

// FailWrites toggles write failures for Set and Remove.
func (f *FlakyStore) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSets = fail
}

// SetCalls reports how many Set calls were attempted.
func (f *FlakyStore) SetCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

func (f *FlakyStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGets
	f.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return f.Store.Get(ctx, collection, key)
}

func (f *FlakyStore) Set(ctx context.Context, collection, key string, value []byte) error {
	f.mu.Lock()
	f.setCalls++
	fail := f.failSets
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Store.Set(ctx, collection, key, value)
}

func (f *FlakyStore) Remove(ctx context.Context, collection, key string) error {
	f.mu.Lock()
	fail := f.failSets
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Store.Remove(ctx, collection, key)
}

// Clock is a settable time source for tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a Clock fixed at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

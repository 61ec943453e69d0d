package notify

import (
	"sync"
	"time"

	"github.com/nhle/ourspace/internal/model"
)

// Default toast timings.
const (
	DefaultToastWindow = 10 * time.Second
	DefaultToastTTL    = 5 * time.Second
)

type toast struct {
	n       model.Notification
	expires time.Time
}

// Toaster decides which notifications pop up briefly on screen. An event
// pops up once, when it is unread and younger than the window, and
// disappears after the TTL. Toasts never change an event's read state.
type Toaster struct {
	window time.Duration
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	active []toast
	// seen maps toasted ids to their event timestamps so an event is
	// never shown twice while it is still inside the window.
	seen map[string]time.Time
}

// NewToaster creates a Toaster. Non-positive durations fall back to the
// defaults; a nil clock uses time.Now.
func NewToaster(window, ttl time.Duration, now func() time.Time) *Toaster {
	if window <= 0 {
		window = DefaultToastWindow
	}
	if ttl <= 0 {
		ttl = DefaultToastTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Toaster{
		window: window,
		ttl:    ttl,
		now:    now,
		seen:   make(map[string]time.Time),
	}
}

// SetTimings updates the window and TTL for future toasts.
func (t *Toaster) SetTimings(window, ttl time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if window > 0 {
		t.window = window
	}
	if ttl > 0 {
		t.ttl = ttl
	}
}

// Observe looks at a freshly polled view and returns the events that
// became toasts because of it.
func (t *Toaster) Observe(view []model.Notification) []model.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.prune(now)

	var fresh []model.Notification
	for _, n := range view {
		if n.Read || now.Sub(n.Timestamp) >= t.window {
			continue
		}
		if _, ok := t.seen[n.ID]; ok {
			continue
		}
		t.seen[n.ID] = n.Timestamp
		t.active = append(t.active, toast{n: n, expires: now.Add(t.ttl)})
		fresh = append(fresh, n)
	}
	return fresh
}

// Active returns the toasts still on screen, oldest first.
func (t *Toaster) Active() []model.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prune(t.now())

	out := make([]model.Notification, 0, len(t.active))
	for _, ts := range t.active {
		out = append(out, ts.n)
	}
	return out
}

// Dismiss removes a toast early. The event stays unread.
func (t *Toaster) Dismiss(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.active[:0]
	for _, ts := range t.active {
		if ts.n.ID != id {
			kept = append(kept, ts)
		}
	}
	t.active = kept
}

func (t *Toaster) prune(now time.Time) {
	kept := t.active[:0]
	for _, ts := range t.active {
		if now.Before(ts.expires) {
			kept = append(kept, ts)
		}
	}
	t.active = kept

	for id, stamp := range t.seen {
		if now.Sub(stamp) >= t.window {
			delete(t.seen, id)
		}
	}
}

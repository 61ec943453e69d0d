package notify

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/logging"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/store"
)

// Feed is one participant's view of the shared notification list.
//
// Poll replaces the working view with the viewer's events, newest first.
// The mutating methods read the whole shared list, change it, write it
// back and poll again; they return the refreshed view.
type Feed struct {
	list   sharedList
	viewer model.Participant
	logger *zap.Logger

	mu   sync.RWMutex
	view []model.Notification
}

// NewFeed creates a Feed for viewer.
func NewFeed(s store.Store, viewer model.Participant, logger *zap.Logger) (*Feed, error) {
	if !viewer.Valid() {
		return nil, model.ErrUnknownParticipant
	}
	logger = logging.OrNop(logger).Named("feed").With(zap.String("viewer", viewer.Key()))
	return &Feed{
		list:   sharedList{store: s, logger: logger},
		viewer: viewer,
		logger: logger,
	}, nil
}

// Viewer returns the participant this feed belongs to.
func (f *Feed) Viewer() model.Participant {
	return f.viewer
}

func (f *Feed) addressedToViewer(n model.Notification) bool {
	return strings.EqualFold(n.To, f.viewer.String())
}

// Poll reloads the viewer's notifications from storage.
func (f *Feed) Poll(ctx context.Context) []model.Notification {
	all := f.list.load(ctx)

	mine := make([]model.Notification, 0, len(all))
	for _, n := range all {
		if f.addressedToViewer(n) {
			mine = append(mine, n)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].Timestamp.After(mine[j].Timestamp)
	})

	f.mu.Lock()
	f.view = mine
	f.mu.Unlock()

	// Another goroutine may replace the working view before this returns.
	out := make([]model.Notification, len(mine))
	copy(out, mine)
	return out
}

// Notifications returns a copy of the current working view.
func (f *Feed) Notifications() []model.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]model.Notification, len(f.view))
	copy(out, f.view)
	return out
}

// UnreadCount counts unread events in the working view.
func (f *Feed) UnreadCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return CountUnread(f.view)
}

// CountUnread counts the unread events in list.
func CountUnread(list []model.Notification) int {
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	return unread
}

// MarkRead marks the event with id as read.
func (f *Feed) MarkRead(ctx context.Context, id string) []model.Notification {
	return f.update(ctx, func(list []model.Notification) ([]model.Notification, bool) {
		changed := false
		for i := range list {
			if list[i].ID == id && !list[i].Read {
				list[i].Read = true
				changed = true
			}
		}
		return list, changed
	})
}

// MarkAllRead marks every event addressed to the viewer as read. Events
// for the partner are left alone.
func (f *Feed) MarkAllRead(ctx context.Context) []model.Notification {
	return f.update(ctx, func(list []model.Notification) ([]model.Notification, bool) {
		changed := false
		for i := range list {
			if f.addressedToViewer(list[i]) && !list[i].Read {
				list[i].Read = true
				changed = true
			}
		}
		return list, changed
	})
}

// Delete removes the event with id. Unknown ids are ignored.
func (f *Feed) Delete(ctx context.Context, id string) []model.Notification {
	return f.update(ctx, func(list []model.Notification) ([]model.Notification, bool) {
		kept := list[:0]
		for _, n := range list {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		return kept, len(kept) != len(list)
	})
}

// update applies mutate to the shared list, writes it back when anything
// changed, and re-polls.
func (f *Feed) update(
	ctx context.Context,
	mutate func([]model.Notification) ([]model.Notification, bool),
) []model.Notification {
	list, changed := mutate(f.list.load(ctx))
	if changed {
		f.list.save(ctx, list)
	}
	return f.Poll(ctx)
}

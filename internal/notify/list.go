// Package notify fans participant activity out to the partner as
// notifications and lets each participant read and tidy their own feed.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/store"
)

// MaxNotifications caps the shared list. Older events are dropped.
const MaxNotifications = 50

// sharedList reads and writes the single notification list both
// participants share. Every operation moves the whole list.
type sharedList struct {
	store  store.Store
	logger *zap.Logger
}

// load returns the shared list, newest first. Missing or unreadable
// content is treated as an empty list.
func (l sharedList) load(ctx context.Context) []model.Notification {
	var list []model.Notification
	if err := store.Load(ctx, l.store, store.CollectionNotifications, store.SharedKey, &list); err != nil {
		if errors.Is(err, store.ErrMalformed) {
			l.logger.Warn("ignoring unreadable notification list", zap.Error(err))
		} else {
			l.logger.Debug("reading notification list failed", zap.Error(err))
		}
		return nil
	}
	return list
}

// save writes list back. Failures are logged and dropped.
func (l sharedList) save(ctx context.Context, list []model.Notification) bool {
	if list == nil {
		list = []model.Notification{}
	}
	if err := store.Save(ctx, l.store, store.CollectionNotifications, store.SharedKey, list); err != nil {
		l.logger.Warn("dropping notification list update", zap.Error(err))
		return false
	}
	return true
}

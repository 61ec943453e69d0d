package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under a key.
var ErrNotFound = errors.New("not found")

// Collection names shared by the tracker and the notification packages.
const (
	CollectionLastLogin     = "last_login"
	CollectionDaysTogether  = "days_together"
	CollectionNotifications = "notifications"
	CollectionNotifyEnabled = "notifications_enabled"
)

// SharedKey is the key for singleton records that both participants use.
const SharedKey = "shared"

// Store is a key-value store namespaced by collection. Values are opaque
// bytes; callers encode them with Load and Save.
//
// Writes replace the whole value. There is no locking across callers, so
// two writers doing read-modify-write on the same key can lose an update.
type Store interface {
	Get(ctx context.Context, collection, key string) ([]byte, error)
	Set(ctx context.Context, collection, key string, value []byte) error
	Remove(ctx context.Context, collection, key string) error
	Close() error
}

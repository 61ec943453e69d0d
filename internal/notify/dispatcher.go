package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/logging"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/store"
)

// Dispatcher records an event for the partner of whoever acted.
type Dispatcher struct {
	list   sharedList
	prefs  *Preferences
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchClock overrides the timestamp source.
func WithDispatchClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// NewDispatcher creates a Dispatcher over s.
func NewDispatcher(s store.Store, logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	logger = logging.OrNop(logger).Named("notify")
	d := &Dispatcher{
		list:   sharedList{store: s, logger: logger},
		prefs:  NewPreferences(s, logger),
		logger: logger,
		now:    time.Now,
		newID:  newNotificationID,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// newNotificationID returns a UUIDv7, which sorts by creation time.
func newNotificationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Dispatch tells from's partner that from performed action in category.
// details, when non-empty, replaces the category's default message.
//
// Dispatch is fire and forget: it does nothing when the partner has
// turned notifications off and drops the event if it cannot be stored.
// The only error it returns is model.ErrUnknownParticipant.
func (d *Dispatcher) Dispatch(ctx context.Context, category, from, action, details string) error {
	sender, err := model.ParseParticipant(from)
	if err != nil {
		return err
	}
	recipient := sender.Partner()

	if !d.prefs.Enabled(ctx, recipient) {
		d.logger.Debug("recipient has notifications off",
			zap.String("to", recipient.Key()),
			zap.String("category", category),
		)
		return nil
	}

	cat := model.Category(category)
	message := details
	if message == "" {
		message = cat.Message(sender.String(), action)
	}

	n := model.Notification{
		ID:        d.newID(),
		Category:  cat,
		Message:   message,
		From:      sender.String(),
		To:        recipient.String(),
		Timestamp: d.now(),
		Icon:      cat.Icon(),
	}

	list := append([]model.Notification{n}, d.list.load(ctx)...)
	if len(list) > MaxNotifications {
		list = list[:MaxNotifications]
	}

	if d.list.save(ctx, list) {
		d.logger.Debug("notification dispatched",
			zap.String("id", n.ID),
			zap.String("category", category),
			zap.String("from", n.From),
			zap.String("to", n.To),
		)
	}
	return nil
}

package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhle/ourspace/internal/logging"
	"github.com/nhle/ourspace/internal/model"
	"github.com/nhle/ourspace/internal/store"
)

// Preferences stores whether each participant wants new notifications.
type Preferences struct {
	store  store.Store
	logger *zap.Logger
}

// NewPreferences creates a Preferences over s.
func NewPreferences(s store.Store, logger *zap.Logger) *Preferences {
	return &Preferences{
		store:  s,
		logger: logging.OrNop(logger).Named("notify"),
	}
}

// Enabled reports whether p receives notifications. Unset or unreadable
// preferences count as enabled.
func (p *Preferences) Enabled(ctx context.Context, who model.Participant) bool {
	enabled := true
	if err := store.Load(ctx, p.store, store.CollectionNotifyEnabled, who.Key(), &enabled); err != nil {
		p.logger.Debug("reading notification preference failed",
			zap.String("participant", who.Key()),
			zap.Error(err),
		)
		return true
	}
	return enabled
}

// SetEnabled records p's preference.
func (p *Preferences) SetEnabled(ctx context.Context, who model.Participant, enabled bool) error {
	if !who.Valid() {
		return model.ErrUnknownParticipant
	}
	if err := store.Save(ctx, p.store, store.CollectionNotifyEnabled, who.Key(), enabled); err != nil {
		return fmt.Errorf("saving notification preference: %w", err)
	}
	return nil
}

// Toggle flips p's preference and returns the new value.
func (p *Preferences) Toggle(ctx context.Context, who model.Participant) (bool, error) {
	enabled := !p.Enabled(ctx, who)
	if err := p.SetEnabled(ctx, who, enabled); err != nil {
		return !enabled, err
	}
	return enabled, nil
}

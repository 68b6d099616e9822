// Package notify tells a group about new meetup suggestions on the channel
// picked in its AI preferences.
package notify

import (
	"context"
	"fmt"

	"nexum/internal/models"

	"go.uber.org/zap"
)

// Notifier delivers freshly proposed suggestions for a group.
type Notifier interface {
	NotifySuggestions(ctx context.Context, group *models.Group, suggestions []*models.Suggestion) error
}

// Dispatcher routes notifications to the notifier registered for a channel.
type Dispatcher struct {
	channels map[string]Notifier
	logger   *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{channels: make(map[string]Notifier), logger: logger}
}

// Register sets the notifier for channel. A nil notifier leaves the channel unset.
func (d *Dispatcher) Register(channel string, n Notifier) {
	if n == nil {
		return
	}
	d.channels[channel] = n
}

// Dispatch sends suggestions on channel. NONE and channels without a
// notifier are skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, channel string, group *models.Group, suggestions []*models.Suggestion) error {
	if channel == models.ChannelNone || len(suggestions) == 0 {
		return nil
	}

	n, ok := d.channels[channel]
	if !ok {
		d.logger.Debug("No notifier for channel",
			zap.String("channel", channel),
			zap.String("group_id", group.ID))
		return nil
	}

	if err := n.NotifySuggestions(ctx, group, suggestions); err != nil {
		return fmt.Errorf("notify via %s: %w", channel, err)
	}
	return nil
}

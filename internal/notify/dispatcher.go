// Package notify delivers match reports and spoken announcements. Delivery
// is fire-and-forget: failures are logged and counted, never returned.
package notify

import (
	"context"

	"github.com/sachintaksande/cowin-notifier/internal/observability/metrics"
	"github.com/sachintaksande/cowin-notifier/pkg/logging"
)

// Messenger sends a written message to one channel.
type Messenger interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Speaker reads a short message aloud.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// Dispatcher fans messages out to every configured channel.
type Dispatcher struct {
	messengers []Messenger
	speaker    Speaker
	logger     *logging.Logger
	metrics    *metrics.PollMetrics
}

// NewDispatcher builds a dispatcher. speaker may be nil when speech is disabled.
func NewDispatcher(messengers []Messenger, speaker Speaker, logger *logging.Logger, m *metrics.PollMetrics) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		messengers: messengers,
		speaker:    speaker,
		logger:     logger,
		metrics:    m,
	}
}

// Notify sends text to every messenger.
func (d *Dispatcher) Notify(ctx context.Context, text string) {
	for _, m := range d.messengers {
		err := m.Send(ctx, text)
		d.metrics.ObserveDelivery(m.Name(), err)
		if err != nil {
			d.logger.Warn("notify: delivery failed", "channel", m.Name(), "error", err)
		}
	}
}

// Announce reads text aloud when a speaker is configured.
func (d *Dispatcher) Announce(ctx context.Context, text string) {
	if d.speaker == nil {
		d.logger.Debug("notify: speech disabled, skipping announcement", "text", text)
		return
	}
	err := d.speaker.Say(ctx, text)
	d.metrics.ObserveDelivery("speech", err)
	if err != nil {
		d.logger.Warn("notify: announcement failed", "error", err)
	}
}

// Package notify delivers arbitrage alerts to the configured outbound
// channels. Delivery is fire-and-forget from the scanner's point of view: a
// failed send is logged and skipped, never retried, and one channel failing
// does not stop delivery to the others.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/boredraw/internal/domain"
)

// Sender is a single notification channel.
type Sender interface {
	// Send delivers one alert.
	Send(ctx context.Context, alert domain.Alert) error
	// Name returns a human-readable identifier for the sender (e.g. "webhook").
	Name() string
}

// Notifier dispatches alerts to all registered senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Enabled reports whether at least one sender is configured.
func (n *Notifier) Enabled() bool {
	return len(n.senders) > 0
}

// Notify sends the alert to every sender. Errors from individual senders
// are collected into a combined error after all senders have been tried.
func (n *Notifier) Notify(ctx context.Context, alert domain.Alert) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, alert); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("alert", alert.Key()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "alert sent",
				slog.String("sender", s.Name()),
				slog.String("alert", alert.Key()),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

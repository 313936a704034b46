package notifier

import (
	"context"

	"specsync/internal/logger"
)

// LogNotifier emits change events as structured log entries. It is the
// default driver; hosts without an event bus still get a durable record of
// every change in their log stream.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.WithFields(map[string]any{
		"service": event.Service,
		"kinds":   event.Kinds,
		"hash":    event.Hash,
	}).Info("descriptor changed")
	return nil
}

// Close implements Notifier.
func (n *LogNotifier) Close() error {
	return nil
}

var _ Notifier = (*LogNotifier)(nil)

// Package notifier publishes per-service change events to downstream
// consumers. Delivery is at-least-once and best-effort: the orchestrator
// logs failures but never rolls back a checksum update over one, since the
// artifacts on disk are already correct.
package notifier

import (
	"context"
	"time"
)

// Event announces that a service's artifacts were regenerated from new
// descriptor content.
type Event struct {
	Service    string    `json:"service"`
	Kinds      []string  `json:"kinds"`
	Hash       string    `json:"hash"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier publishes change events. Implementations must be safe for
// concurrent use; the orchestrator notifies from its worker goroutines.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
	Close() error
}

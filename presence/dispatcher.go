package presence

import (
	"context"
	"log/slog"

	"chatline/domain/event"
)

// Dispatcher fans events out to live connections.
//
// Delivery is fire-and-forget, at-most-once, best-effort: no retries, no
// queuing, no error surfaced to the sender. A message persisted to the
// store is not guaranteed to reach an online recipient, and an offline
// recipient never receives it retroactively.
type Dispatcher struct {
	registry *Registry
	log      *slog.Logger
}

func NewDispatcher(registry *Registry, log *slog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, log: log}
}

// Deliver pushes an event to one user's connection. An offline target is
// a silent drop; registry state is never touched.
func (d *Dispatcher) Deliver(ctx context.Context, userID string, e event.DomainEvent) {
	sink, ok := d.registry.sink(userID)
	if !ok {
		d.log.Debug("target offline, dropping event",
			"user_id", userID,
			"event", e.EventName())
		return
	}
	if err := sink.Consume(ctx, e); err != nil {
		d.log.Debug("delivery failed",
			"user_id", userID,
			"event", e.EventName(),
			"error", err)
	}
}

// BroadcastOnline pushes the current online user set to every registered
// connection. The set and the recipients come from one registry snapshot,
// so every broadcast matches ListOnline at that instant.
func (d *Dispatcher) BroadcastOnline(ctx context.Context) {
	users, sinks := d.registry.snapshot()
	e := event.OnlineUsers{UserIDs: users}
	for _, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			d.log.Debug("broadcast skipped a connection", "error", err)
		}
	}
}

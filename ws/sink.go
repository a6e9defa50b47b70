// Package ws is the connection lifecycle manager: it upgrades HTTP
// requests to WebSocket connections, registers them with the presence
// registry, and pushes events out to clients.
package ws

import (
	"context"
	"sync"

	"chatline/domain/event"
	"chatline/errors"
)

// Sink bridges the dispatcher to one connection's write pump through a
// buffered channel. Consume never blocks: a full buffer drops the event,
// keeping fan-out best-effort by construction.
type Sink struct {
	events chan event.DomainEvent
	done   chan struct{}
	once   sync.Once
}

func NewSink(bufferSize int) *Sink {
	return &Sink{
		events: make(chan event.DomainEvent, bufferSize),
		done:   make(chan struct{}),
	}
}

// Consume hands an event to the write pump.
func (s *Sink) Consume(ctx context.Context, e event.DomainEvent) error {
	select {
	case <-s.done:
		return errors.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	case s.events <- e:
		return nil
	default:
		// Slow consumer, drop rather than block the dispatcher.
		return nil
	}
}

// Events is read by the connection's write pump.
func (s *Sink) Events() <-chan event.DomainEvent { return s.events }

// Done is closed when the sink is superseded or torn down.
func (s *Sink) Done() <-chan struct{} { return s.done }

// Close cancels further deliveries. Safe to call multiple times.
func (s *Sink) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

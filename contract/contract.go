package contract

import (
	"context"

	"chatline/domain/event"
)

// EventSink is an opaque handle to one live client connection. Consume is
// best-effort: a full buffer or a closed sink drops the event without
// blocking the caller.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
	Close() error
}

// IRegistry is the single source of truth for who is online now.
type IRegistry interface {
	Register(userID string, sink EventSink)
	Unregister(userID string)
	IsOnline(userID string) bool
	ListOnline() []string
}

// IDispatcher delivers events to live connections. Deliver targets one
// user and silently drops when they are offline; BroadcastOnline pushes
// the current online set to every registered connection.
type IDispatcher interface {
	Deliver(ctx context.Context, userID string, e event.DomainEvent)
	BroadcastOnline(ctx context.Context)
}

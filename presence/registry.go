// Package presence owns the in-process mapping from user ID to live
// connection, and the fan-out of events to those connections. The map is
// the only piece of shared mutable state in the system and is never
// exposed for direct mutation.
package presence

import (
	"log/slog"
	"sync"

	"chatline/contract"
)

type Registry struct {
	mu    sync.RWMutex
	sinks map[string]contract.EventSink
	log   *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		sinks: make(map[string]contract.EventSink),
		log:   log,
	}
}

// Register binds a user to a connection sink, last write wins. A sink
// superseded by a reconnect is closed explicitly so the stale socket
// receives a close frame instead of lingering.
func (r *Registry) Register(userID string, sink contract.EventSink) {
	r.mu.Lock()
	prev := r.sinks[userID]
	r.sinks[userID] = sink
	r.mu.Unlock()

	if prev != nil && prev != sink {
		_ = prev.Close()
		r.log.Debug("superseded connection closed", "user_id", userID)
	}
}

// Unregister removes the user's entry if present, no-op otherwise.
func (r *Registry) Unregister(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, userID)
}

// UnregisterSink removes the user's entry only if it is still bound to
// the given sink. The teardown of a superseded connection must not evict
// the entry its replacement already owns.
func (r *Registry) UnregisterSink(userID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.sinks[userID]; ok && current == sink {
		delete(r.sinks, userID)
	}
}

func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sinks[userID]
	return ok
}

// ListOnline returns the set of currently registered user IDs. Order is
// not meaningful.
func (r *Registry) ListOnline() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.sinks))
	for userID := range r.sinks {
		users = append(users, userID)
	}
	return users
}

// sink resolves a user's live connection for targeted delivery.
func (r *Registry) sink(userID string) (contract.EventSink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sinks[userID]
	return s, ok
}

// snapshot returns the online set and the matching sinks under a single
// lock acquisition, so a broadcast always reflects the set it announces.
func (r *Registry) snapshot() ([]string, []contract.EventSink) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]string, 0, len(r.sinks))
	sinks := make([]contract.EventSink, 0, len(r.sinks))
	for userID, s := range r.sinks {
		users = append(users, userID)
		sinks = append(sinks, s)
	}
	return users, sinks
}

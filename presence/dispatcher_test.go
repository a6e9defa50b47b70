package presence

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chatline/domain"
	"chatline/domain/event"
)

func TestDispatcher_Deliver_Offline_Target_Is_Silent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	dispatcher := NewDispatcher(registry, slog.Default())
	online := uuid.NewString()
	registry.Register(online, &recordSink{})

	// When delivering to a user who is not registered
	dispatcher.Deliver(context.Background(), uuid.NewString(), event.NewMessage{
		Message: domain.Message{ID: uuid.New(), Text: "hi"},
	})

	// Then nothing panics and registry state is unchanged
	req.ElementsMatch([]string{online}, registry.ListOnline())
}

func TestDispatcher_Deliver_Reaches_Only_The_Target(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	dispatcher := NewDispatcher(registry, slog.Default())
	target := &recordSink{}
	bystander := &recordSink{}
	registry.Register("u1", target)
	registry.Register("u2", bystander)

	msg := domain.Message{ID: uuid.New(), SenderID: "u2", ReceiverID: "u1", Text: "hello"}
	dispatcher.Deliver(context.Background(), "u1", event.NewMessage{Message: msg})

	req.Len(target.Events(), 1)
	req.Equal(event.NewMessage{Message: msg}, target.Events()[0])
	req.Empty(bystander.Events())
}

func TestDispatcher_Deliver_After_Reconnect_Reaches_Newest(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	dispatcher := NewDispatcher(registry, slog.Default())
	stale := &recordSink{}
	fresh := &recordSink{}
	registry.Register("u1", stale)
	registry.Register("u1", fresh)

	dispatcher.Deliver(context.Background(), "u1", event.NewMessage{
		Message: domain.Message{ID: uuid.New(), ReceiverID: "u1", Text: "hi"},
	})

	req.Empty(stale.Events())
	req.Len(fresh.Events(), 1)
}

func TestDispatcher_BroadcastOnline_Matches_ListOnline(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry(slog.Default())
	dispatcher := NewDispatcher(registry, slog.Default())
	s1 := &recordSink{}
	s2 := &recordSink{}
	registry.Register("u1", s1)
	registry.Register("u2", s2)

	dispatcher.BroadcastOnline(context.Background())

	for _, sink := range []*recordSink{s1, s2} {
		req.Len(sink.Events(), 1)
		online, ok := sink.Events()[0].(event.OnlineUsers)
		req.True(ok)
		req.ElementsMatch([]string{"u1", "u2"}, online.UserIDs)
	}

	registry.Unregister("u1")
	dispatcher.BroadcastOnline(context.Background())

	req.Len(s2.Events(), 2)
	online, ok := s2.Events()[1].(event.OnlineUsers)
	req.True(ok)
	req.ElementsMatch([]string{"u2"}, online.UserIDs)
}

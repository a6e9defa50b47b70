package ws

import (
	"encoding/json"
	"fmt"

	"chatline/domain/event"
)

// Frame is the wire envelope for server-to-client events:
// {"event": "<name>", "data": <payload>}.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// encodeFrame serializes a domain event into its wire form. The
// getOnlineUsers payload is the user-ID list, newMessage carries the full
// persisted message record.
func encodeFrame(e event.DomainEvent) ([]byte, error) {
	var payload any
	switch evt := e.(type) {
	case event.OnlineUsers:
		payload = evt.UserIDs
	case event.NewMessage:
		payload = evt.Message
	default:
		return nil, fmt.Errorf("no wire form for event %q", e.EventName())
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: e.EventName(), Data: data})
}

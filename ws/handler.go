package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chatline/contract"
	"chatline/presence"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Handler owns the per-connection state machine: upgrade, handshake,
// register-then-broadcast on open, unregister-then-broadcast on close.
type Handler struct {
	log        *slog.Logger
	registry   *presence.Registry
	dispatcher contract.IDispatcher
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, registry *presence.Registry,
	dispatcher contract.IDispatcher, bufferSize int, allowedOrigin string) *Handler {
	return &Handler{
		log:        log,
		registry:   registry,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
		bufferSize: bufferSize,
	}
}

// ServeWS upgrades the request and runs the connection until it closes.
// The user ID comes from the handshake query; the token check happened in
// the HTTP layer before the client learned its ID. A handshake without a
// user ID is still accepted, but the connection is never registered: it
// stays invisible to presence and receives no fan-out.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}

	if userID == "" {
		h.log.Warn("handshake without user id, connection stays unregistered",
			"remote", conn.RemoteAddr().String())
		h.readPump(conn)
		_ = conn.Close()
		return
	}

	sink := NewSink(h.bufferSize)
	h.registry.Register(userID, sink)
	h.dispatcher.BroadcastOnline(r.Context())
	h.log.Info("client connected", "user_id", userID, "remote", conn.RemoteAddr().String())

	go h.writePump(conn, sink)
	h.readPump(conn)

	_ = sink.Close()
	h.registry.UnregisterSink(userID, sink)
	h.dispatcher.BroadcastOnline(context.Background())
	_ = conn.Close()
	h.log.Info("client disconnected", "user_id", userID)
}

// readPump consumes inbound frames until the peer goes away. Clients send
// nothing meaningful over the socket (messages travel over HTTP); reading
// is only needed to process control frames and detect closure.
func (h *Handler) readPump(conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("websocket read ended", "error", err)
			}
			return
		}
	}
}

// writePump pushes sink events to the peer and keeps the connection alive
// with pings. When the sink is closed (teardown or superseded by a
// reconnect) it sends a close frame and closes the connection, which also
// unblocks the read pump.
func (h *Handler) writePump(conn *websocket.Conn, sink *Sink) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case e := <-sink.Events():
			payload, err := encodeFrame(e)
			if err != nil {
				h.log.Error("event encoding failed", "event", e.EventName(), "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-sink.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
			return
		}
	}
}

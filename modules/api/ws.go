package api

import (
	"encoding/json"
	"log/slog"

	chatdomain "github.com/example/forum-chat-demo/domain/chat"
	"github.com/example/forum-chat-demo/modules/chat"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// sendBufferSize is the per-connection outbound queue depth. A
// connection that cannot drain this many frames is considered stalled
// and has further frames dropped rather than blocking the registry.
const sendBufferSize = 64

// wsConn adapts a websocket connection to the registry's Sender
// interface. Frames are queued on a channel and written by a dedicated
// goroutine, so Send never blocks the caller.
type wsConn struct {
	id     string
	out    chan chat.Frame
	done   chan struct{}
	logger *slog.Logger
}

func newWSConn(id string, logger *slog.Logger) *wsConn {
	return &wsConn{
		id:     id,
		out:    make(chan chat.Frame, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send queues a frame for delivery. Frames to a closed or stalled
// connection are dropped.
func (w *wsConn) Send(event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		w.logger.Warn("failed to marshal frame", "event", event, "error", err)
		return
	}

	frame := chat.Frame{Event: event, Data: payload}
	select {
	case <-w.done:
	case w.out <- frame:
	default:
		w.logger.Warn("dropping frame for stalled connection", "conn", w.id, "event", event)
	}
}

// writeLoop drains the outbound queue onto the websocket. It exits when
// the connection is closed.
func (w *wsConn) writeLoop(c *websocket.Conn) {
	for {
		select {
		case <-w.done:
			return
		case frame := <-w.out:
			if err := c.WriteJSON(frame); err != nil {
				w.logger.Debug("websocket write failed", "conn", w.id, "error", err)
				return
			}
		}
	}
}

func (w *wsConn) close() {
	close(w.done)
}

// HandleWebSocket runs one chat connection: it registers the connection
// with the room registry, dispatches inbound commands, and cleans up on
// disconnect.
func (h *Handlers) HandleWebSocket(c *websocket.Conn) {
	connID := uuid.New().String()
	logger := slog.Default()

	conn := newWSConn(connID, logger)
	go conn.writeLoop(c)

	defer func() {
		h.registry.Detach(connID)
		conn.close()
		c.Close()
	}()

	h.registry.Attach(connID, conn)
	logger.Info("chat connection opened", "conn", connID)

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("chat connection error", "conn", connID, "error", err)
			}
			break
		}

		var frame chat.Frame
		if err := json.Unmarshal(msgBytes, &frame); err != nil {
			logger.Warn("invalid chat frame", "conn", connID, "error", err)
			continue
		}

		h.dispatchChatFrame(connID, frame, logger)
	}

	logger.Info("chat connection closed", "conn", connID)
}

// dispatchChatFrame routes one inbound frame to the registry. Unknown
// events and malformed payloads are logged and ignored; a misbehaving
// client cannot take the connection down.
func (h *Handlers) dispatchChatFrame(connID string, frame chat.Frame, logger *slog.Logger) {
	switch frame.Event {
	case chat.EventCreateRoom:
		var cmd chat.RoomCommand
		if err := json.Unmarshal(frame.Data, &cmd); err != nil {
			logger.Warn("invalid create room payload", "conn", connID, "error", err)
			return
		}
		h.registry.CreateRoom(connID, cmd.Room, cmd.Username)

	case chat.EventJoinRoom:
		var cmd chat.RoomCommand
		if err := json.Unmarshal(frame.Data, &cmd); err != nil {
			logger.Warn("invalid join room payload", "conn", connID, "error", err)
			return
		}
		h.registry.JoinRoom(connID, cmd.Room, cmd.Username)

	case chat.EventLeaveRoom:
		var cmd chat.LeaveCommand
		if err := json.Unmarshal(frame.Data, &cmd); err != nil {
			logger.Warn("invalid leave room payload", "conn", connID, "error", err)
			return
		}
		h.registry.LeaveRoom(connID, cmd.Room)

	case chat.EventChatMessage:
		var msg chatdomain.Message
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			logger.Warn("invalid chat message payload", "conn", connID, "error", err)
			return
		}
		h.registry.SendMessage(msg)

	default:
		logger.Warn("unknown chat event", "conn", connID, "event", frame.Event)
	}
}

package chat

import (
	"encoding/json"
)

// Event names carried on the per-connection channel. The names match the
// protocol consumed by the React client.
const (
	// Client -> server commands.
	EventCreateRoom  = "create room"
	EventJoinRoom    = "join room"
	EventLeaveRoom   = "leave room"
	EventChatMessage = "chat message"

	// Server -> client notifications.
	EventConnected    = "connected"
	EventRoomList     = "room list"
	EventUpdateLeader = "update leader"
)

// Frame is the JSON envelope exchanged over a connection.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomCommand is the payload of "create room" and "join room".
type RoomCommand struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// LeaveCommand is the payload of "leave room".
type LeaveCommand struct {
	Room string `json:"room"`
}

// ConnectedPayload tells a connection its own identifier, so clients can
// compare it against LeaderUpdate.LeaderID.
type ConnectedPayload struct {
	ID string `json:"id"`
}

// LeaderUpdate is the payload of "update leader". Leader carries the
// display name for rendering; LeaderID carries the connection identifier
// for the "is it me" check.
type LeaderUpdate struct {
	Room     string `json:"room"`
	Leader   string `json:"leader"`
	LeaderID string `json:"leader_id"`
}

package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// RoomCreatedEvent is emitted when a room is registered for the first time.
type RoomCreatedEvent struct {
	Room      string    `json:"room"`
	Creator   string    `json:"creator"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomDeletedEvent is emitted when a room's last member departs and the
// room is removed from the registry.
type RoomDeletedEvent struct {
	Room      string    `json:"room"`
	Timestamp time.Time `json:"timestamp"`
}

// LeaderElectedEvent is emitted when leader election runs for a room and
// yields a new leader.
type LeaderElectedEvent struct {
	Room      string    `json:"room"`
	Leader    string    `json:"leader"`
	LeaderID  string    `json:"leader_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	RoomCreatedV1 = helper.EventDefinition[RoomCreatedEvent](
		"chat",
		"RoomCreated",
		"v1",
	)

	RoomDeletedV1 = helper.EventDefinition[RoomDeletedEvent](
		"chat",
		"RoomDeleted",
		"v1",
	)

	LeaderElectedV1 = helper.EventDefinition[LeaderElectedEvent](
		"chat",
		"LeaderElected",
		"v1",
	)
)

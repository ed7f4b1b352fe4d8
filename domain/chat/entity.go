package chat

// Message is a chat message relayed through a room. Messages are transient:
// they are fanned out to the room's current broadcast group and never
// persisted.
type Message struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Text     string `json:"text"`
}

// RoomInfo is a read-only snapshot of a room's state.
type RoomInfo struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
	Leader      string `json:"leader,omitempty"`
}

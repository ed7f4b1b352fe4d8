package chat

import (
	"fmt"
	"sync"
	"testing"

	domain "github.com/example/forum-chat-demo/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every event delivered to one connection.
type fakeConn struct {
	mu     sync.Mutex
	events []sentEvent
}

type sentEvent struct {
	Event string
	Data  any
}

func (c *fakeConn) Send(event string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, sentEvent{Event: event, Data: data})
}

// received returns all recorded events with the given name.
func (c *fakeConn) received(event string) []sentEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []sentEvent
	for _, e := range c.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// lastRoomList returns the most recent "room list" payload, or nil.
func (c *fakeConn) lastRoomList() []string {
	lists := c.received(EventRoomList)
	if len(lists) == 0 {
		return nil
	}
	names, _ := lists[len(lists)-1].Data.([]string)
	return names
}

// lastLeader returns the most recent "update leader" payload.
func (c *fakeConn) lastLeader(t *testing.T) LeaderUpdate {
	t.Helper()
	updates := c.received(EventUpdateLeader)
	require.NotEmpty(t, updates, "expected at least one leader update")
	update, ok := updates[len(updates)-1].Data.(LeaderUpdate)
	require.True(t, ok, "leader update payload has wrong type")
	return update
}

func (c *fakeConn) messages() []domain.Message {
	var msgs []domain.Message
	for _, e := range c.received(EventChatMessage) {
		if m, ok := e.Data.(domain.Message); ok {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

func attach(t *testing.T, g *Registry, id string) *fakeConn {
	t.Helper()
	c := &fakeConn{}
	g.Attach(id, c)
	return c
}

func TestRegistry_AttachSendsIdentityAndRoomList(t *testing.T) {
	g := NewRegistry()

	c := attach(t, g, "conn-1")

	require.Len(t, c.events, 2)
	assert.Equal(t, EventConnected, c.events[0].Event)
	assert.Equal(t, ConnectedPayload{ID: "conn-1"}, c.events[0].Data)
	assert.Equal(t, EventRoomList, c.events[1].Event)
	assert.Empty(t, c.events[1].Data)
}

func TestRegistry_CreateRoomSetsCreatorAsLeader(t *testing.T) {
	g := NewRegistry()
	c := attach(t, g, "a")

	g.CreateRoom("a", "lobby", "alice")

	id, name, ok := g.Leader("lobby")
	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, "alice", name)

	update := c.lastLeader(t)
	assert.Equal(t, LeaderUpdate{Room: "lobby", Leader: "alice", LeaderID: "a"}, update)
	assert.Equal(t, []string{"lobby"}, c.lastRoomList())
}

func TestRegistry_CreateExistingRoomBehavesAsJoin(t *testing.T) {
	g := NewRegistry()
	attach(t, g, "a")
	b := attach(t, g, "b")

	g.CreateRoom("a", "lobby", "alice")
	g.CreateRoom("b", "lobby", "bob")

	// No duplicate room, first creator still leader and still a member.
	rooms := g.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, 2, rooms[0].MemberCount)
	assert.Equal(t, "alice", rooms[0].Leader)

	// Second creator was told about the existing leader, not itself.
	update := b.lastLeader(t)
	assert.Equal(t, "a", update.LeaderID)
}

func TestRegistry_JoinAssignsLeaderOnlyWhenNone(t *testing.T) {
	g := NewRegistry()
	attach(t, g, "a")
	attach(t, g, "b")

	g.JoinRoom("a", "lobby", "alice")
	id, _, ok := g.Leader("lobby")
	require.True(t, ok)
	assert.Equal(t, "a", id, "first joiner of a leaderless room becomes leader")

	g.JoinRoom("b", "lobby", "bob")
	id, _, ok = g.Leader("lobby")
	require.True(t, ok)
	assert.Equal(t, "a", id, "adding a member must not change an existing leader")
}

func TestRegistry_EmptyRoomNameIgnored(t *testing.T) {
	g := NewRegistry()
	attach(t, g, "a")

	g.CreateRoom("a", "", "alice")
	g.JoinRoom("a", "", "alice")

	assert.Empty(t, g.Rooms())
}

func TestRegistry_LeaveNonLeaderKeepsLeader(t *testing.T) {
	g := NewRegistry()
	attach(t, g, "a")
	b := attach(t, g, "b")

	g.JoinRoom("a", "lobby", "alice")
	g.JoinRoom("b", "lobby", "bob")
	leaderUpdates := len(b.received(EventUpdateLeader))

	g.LeaveRoom("b", "lobby")

	id, _, ok := g.Leader("lobby")
	require.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Len(t, b.received(EventUpdateLeader), leaderUpdates,
		"removing a non-leader must not trigger re-election")
}

func TestRegistry_LeaveLeaderReelectsFirstRemaining(t *testing.T) {
	g := NewRegistry()
	attach(t, g, "a")
	b := attach(t, g, "b")
	attach(t, g, "c")

	g.JoinRoom("a", "lobby", "alice")
	g.JoinRoom("b", "lobby", "bob")
	g.JoinRoom("c", "lobby", "carol")

	g.LeaveRoom("a", "lobby")

	id, name, ok := g.Leader("lobby")
	require.True(t, ok)
	assert.Equal(t, "b", id, "longest-tenured remaining member becomes leader")
	assert.Equal(t, "bob", name)

	update := b.lastLeader(t)
	assert.Equal(t, LeaderUpdate{Room: "lobby", Leader: "bob", LeaderID: "b"}, update)
}

func TestRegistry_LastLeaveDeletesRoom(t *testing.T) {
	g := NewRegistry()
	c := attach(t, g, "a")

	g.JoinRoom("a", "lobby", "alice")
	require.Equal(t, []string{"lobby"}, c.lastRoomList())

	g.LeaveRoom("a", "lobby")

	assert.Empty(t, g.Rooms())
	assert.Empty(t, c.lastRoomList(), "room list after deletion must exclude the room")
}

func TestRegistry_LeaveUnknownRoomIsNoOp(t *testing.T) {
	g := NewRegistry()
	attach(t, g, "a")

	g.JoinRoom("a", "lobby", "alice")
	g.LeaveRoom("a", "nope")
	g.LeaveRoom("b", "lobby") // not a member

	rooms := g.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, rooms[0].MemberCount)
	assert.Equal(t, "alice", rooms[0].Leader)
}

func TestRegistry_DisconnectRemovesFromAllRooms(t *testing.T) {
	g := NewRegistry()
	attach(t, g, "a")
	b := attach(t, g, "b")

	// a is leader of "x" and sole member of "y"; b is second in "x".
	g.JoinRoom("a", "x", "alice")
	g.JoinRoom("b", "x", "bob")
	g.JoinRoom("a", "y", "alice")

	listsBefore := len(b.received(EventRoomList))
	g.Detach("a")

	// "y" is gone, "x" re-elected b.
	rooms := g.Rooms()
	require.Len(t, rooms, 1)
	assert.Equal(t, "x", rooms[0].Name)
	assert.Equal(t, "bob", rooms[0].Leader)

	// One room-list broadcast for the whole disconnect, not one per room.
	assert.Len(t, b.received(EventRoomList), listsBefore+1)
	assert.Equal(t, []string{"x"}, b.lastRoomList())
}

func TestRegistry_ChatMessageDeliveredToMembersOnly(t *testing.T) {
	g := NewRegistry()
	a := attach(t, g, "a")
	b := attach(t, g, "b")
	outsider := attach(t, g, "c")

	g.JoinRoom("a", "lobby", "alice")
	g.JoinRoom("b", "lobby", "bob")

	msg := domain.Message{Room: "lobby", Username: "alice", Text: "hi"}
	g.SendMessage(msg)

	require.Len(t, a.messages(), 1, "sender receives its own message")
	assert.Equal(t, msg, a.messages()[0])
	assert.Equal(t, msg, b.messages()[0])
	assert.Empty(t, outsider.messages(), "non-members must not receive room traffic")
}

func TestRegistry_ChatMessageFromNonMemberIsDelivered(t *testing.T) {
	// Sender membership is deliberately not enforced: a connection may emit
	// into a room it never joined and the members still receive the message.
	g := NewRegistry()
	a := attach(t, g, "a")
	outsider := attach(t, g, "c")

	g.JoinRoom("a", "x", "alice")

	msg := domain.Message{Room: "x", Username: "mallory", Text: "boo"}
	g.SendMessage(msg)

	require.Len(t, a.messages(), 1)
	assert.Equal(t, msg, a.messages()[0])
	assert.Empty(t, outsider.messages())
}

func TestRegistry_ChatMessageToUnknownRoomDropped(t *testing.T) {
	g := NewRegistry()
	a := attach(t, g, "a")

	g.SendMessage(domain.Message{Room: "ghost", Username: "alice", Text: "hello?"})

	assert.Empty(t, a.messages())
	assert.Empty(t, g.Rooms(), "sending must never create a room")
}

func TestRegistry_MessageOrderPreservedPerRoom(t *testing.T) {
	g := NewRegistry()
	a := attach(t, g, "a")
	b := attach(t, g, "b")

	g.JoinRoom("a", "lobby", "alice")
	g.JoinRoom("b", "lobby", "bob")

	for i := 0; i < 20; i++ {
		g.SendMessage(domain.Message{Room: "lobby", Username: "alice", Text: fmt.Sprintf("m%d", i)})
	}

	for _, c := range []*fakeConn{a, b} {
		msgs := c.messages()
		require.Len(t, msgs, 20)
		for i, m := range msgs {
			assert.Equal(t, fmt.Sprintf("m%d", i), m.Text)
		}
	}
}

func TestRegistry_LeaderAlwaysCurrentMember(t *testing.T) {
	// Leader must reference a present member after every mutation.
	g := NewRegistry()
	for i := 0; i < 6; i++ {
		attach(t, g, fmt.Sprintf("c%d", i))
	}

	type op struct {
		kind string
		conn string
		room string
	}
	ops := []op{
		{"join", "c0", "r1"}, {"join", "c1", "r1"}, {"join", "c2", "r1"},
		{"create", "c3", "r2"}, {"join", "c0", "r2"},
		{"leave", "c0", "r1"}, {"detach", "c3", ""},
		{"join", "c4", "r1"}, {"leave", "c1", "r1"},
		{"detach", "c0", ""}, {"leave", "c2", "r1"},
	}

	checkInvariant := func() {
		for _, info := range g.Rooms() {
			require.Positive(t, info.MemberCount, "empty rooms must be deleted")
			_, leaderName, ok := g.Leader(info.Name)
			require.True(t, ok, "room %s has no resolvable leader", info.Name)
			assert.Contains(t, g.Members(info.Name), leaderName)
		}
	}

	for _, o := range ops {
		switch o.kind {
		case "join":
			g.JoinRoom(o.conn, o.room, "user-"+o.conn)
		case "create":
			g.CreateRoom(o.conn, o.room, "user-"+o.conn)
		case "leave":
			g.LeaveRoom(o.conn, o.room)
		case "detach":
			g.Detach(o.conn)
		}
		checkInvariant()
	}
}

func TestRegistry_LobbyScenario(t *testing.T) {
	// A and B join "lobby" in that order; A disconnects; B becomes leader;
	// B leaves; the room disappears from the next room list.
	g := NewRegistry()
	attach(t, g, "A")
	b := attach(t, g, "B")

	g.JoinRoom("A", "lobby", "anna")
	g.JoinRoom("B", "lobby", "ben")

	id, _, ok := g.Leader("lobby")
	require.True(t, ok)
	require.Equal(t, "A", id)

	g.Detach("A")

	update := b.lastLeader(t)
	assert.Equal(t, LeaderUpdate{Room: "lobby", Leader: "ben", LeaderID: "B"}, update)

	g.LeaveRoom("B", "lobby")
	assert.Empty(t, b.lastRoomList())
	assert.Empty(t, g.Rooms())
}

func TestRegistry_ConcurrentCommands(t *testing.T) {
	// Commands from many goroutines must serialize without losing the
	// membership/leader invariants.
	g := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		id := fmt.Sprintf("c%d", i)
		attach(t, g, id)
		wg.Add(1)
		go func(id string, i int) {
			defer wg.Done()
			room := fmt.Sprintf("r%d", i%4)
			g.JoinRoom(id, room, "user-"+id)
			g.SendMessage(domain.Message{Room: room, Username: "user-" + id, Text: "hello"})
			if i%2 == 0 {
				g.LeaveRoom(id, room)
			}
		}(id, i)
	}
	wg.Wait()

	for _, info := range g.Rooms() {
		assert.Positive(t, info.MemberCount)
		_, _, ok := g.Leader(info.Name)
		assert.True(t, ok, "room %s lost its leader", info.Name)
	}
}

package chat

import (
	"log/slog"
	"sort"
	"sync"

	domain "github.com/example/forum-chat-demo/domain/chat"
)

// Sender delivers one server event to one connection. Implementations must
// not block: the registry invokes Send while holding its lock, so a slow
// consumer has to buffer or drop on its own side.
type Sender interface {
	Send(event string, data any)
}

// EventSink receives registry lifecycle notifications. The chat module
// implements it to publish events on the application event bus; it is
// optional and may be nil.
type EventSink interface {
	RoomCreated(room, creator string)
	RoomDeleted(room string)
	LeaderElected(room, leader, leaderID string)
}

// member is one entry of a room's broadcast group. Slice position is the
// election order: index 0 is the longest-tenured member.
type member struct {
	id       string
	username string
}

// room holds a member list in insertion order and the current leader's
// connection identifier ("" when unset).
type room struct {
	members []member
	leader  string
}

func (r *room) find(id string) int {
	for i, m := range r.members {
		if m.id == id {
			return i
		}
	}
	return -1
}

func (r *room) remove(id string) bool {
	i := r.find(id)
	if i < 0 {
		return false
	}
	r.members = append(r.members[:i], r.members[i+1:]...)
	return true
}

// Registry owns the room map and all presence state. Every command runs to
// completion under one mutex, so each command observes and mutates a
// consistent snapshot of the member sets.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*room
	conns  map[string]Sender
	sink   EventSink
	logger *slog.Logger
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*room),
		conns:  make(map[string]Sender),
		logger: slog.Default(),
	}
}

// SetEventSink attaches a lifecycle event sink. Must be called before the
// registry starts receiving commands.
func (g *Registry) SetEventSink(sink EventSink) {
	g.sink = sink
}

// Attach registers a live connection and sends it its own identifier plus
// the current room list.
func (g *Registry) Attach(connID string, s Sender) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.conns[connID] = s
	s.Send(EventConnected, ConnectedPayload{ID: connID})
	s.Send(EventRoomList, g.roomNames())
	g.logger.Info("connection attached", "connID", connID)
}

// Detach removes a connection from the registry and from every room it
// belongs to. Rooms left empty are deleted; rooms that lose their leader
// re-elect. A single room-list broadcast follows, covering all changes.
func (g *Registry) Detach(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.conns, connID)

	for name, r := range g.rooms {
		if !r.remove(connID) {
			continue
		}
		if len(r.members) == 0 {
			delete(g.rooms, name)
			g.notifyRoomDeleted(name)
		} else if r.leader == connID {
			g.elect(name, r)
		}
	}

	g.broadcastRoomList()
	g.logger.Info("connection detached", "connID", connID)
}

// CreateRoom registers roomName if unknown, making the caller its leader,
// and joins the caller to it. Creating a room that already exists behaves
// exactly like a join. Empty room names are ignored.
func (g *Registry) CreateRoom(connID, roomName, username string) {
	if roomName == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[roomName]
	if !ok {
		r = &room{leader: connID}
		g.rooms[roomName] = r
		g.notifyRoomCreated(roomName, username)
	}
	g.addMember(r, connID, username)

	g.broadcastRoomList()
	g.announceLeader(roomName, r)
}

// JoinRoom subscribes the caller to roomName, creating the room (with no
// leader) if it does not exist. The caller becomes leader only when the
// room has none. Empty room names are ignored.
func (g *Registry) JoinRoom(connID, roomName, username string) {
	if roomName == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[roomName]
	if !ok {
		r = &room{}
		g.rooms[roomName] = r
		g.notifyRoomCreated(roomName, username)
	}
	g.addMember(r, connID, username)
	if r.leader == "" {
		r.leader = connID
	}

	g.broadcastRoomList()
	g.announceLeader(roomName, r)
}

// LeaveRoom removes the caller from roomName. The room is deleted when its
// member set becomes empty; otherwise a departing leader triggers
// re-election. Leaving a room the caller never joined is a no-op apart
// from the room-list broadcast.
func (g *Registry) LeaveRoom(connID, roomName string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if r, ok := g.rooms[roomName]; ok && r.remove(connID) {
		if len(r.members) == 0 {
			delete(g.rooms, roomName)
			g.notifyRoomDeleted(roomName)
		} else if r.leader == connID {
			g.elect(roomName, r)
		}
	}

	g.broadcastRoomList()
}

// SendMessage relays msg to every member of its room, including the sender
// if subscribed. Membership of the sender is deliberately not checked, and
// a message to an unknown room is silently dropped.
func (g *Registry) SendMessage(msg domain.Message) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[msg.Room]
	if !ok {
		return
	}
	for _, m := range r.members {
		if s, ok := g.conns[m.id]; ok {
			s.Send(EventChatMessage, msg)
		}
	}
}

// Rooms returns a snapshot of every active room.
func (g *Registry) Rooms() []domain.RoomInfo {
	g.mu.Lock()
	defer g.mu.Unlock()

	infos := make([]domain.RoomInfo, 0, len(g.rooms))
	for _, name := range g.roomNames() {
		r := g.rooms[name]
		info := domain.RoomInfo{Name: name, MemberCount: len(r.members)}
		if i := r.find(r.leader); i >= 0 {
			info.Leader = r.members[i].username
		}
		infos = append(infos, info)
	}
	return infos
}

// Members returns the display names of a room's members in join order.
func (g *Registry) Members(roomName string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, ok := g.rooms[roomName]
	if !ok {
		return nil
	}
	names := make([]string, len(r.members))
	for i, m := range r.members {
		names[i] = m.username
	}
	return names
}

// Leader returns the connection identifier and display name of a room's
// leader. ok is false when the room does not exist or has no leader.
func (g *Registry) Leader(roomName string) (id, username string, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	r, exists := g.rooms[roomName]
	if !exists || r.leader == "" {
		return "", "", false
	}
	i := r.find(r.leader)
	if i < 0 {
		return "", "", false
	}
	return r.leader, r.members[i].username, true
}

// addMember appends the connection to the member list, or refreshes its
// display name while keeping its tenure position when already present.
func (g *Registry) addMember(r *room, connID, username string) {
	if i := r.find(connID); i >= 0 {
		r.members[i].username = username
		return
	}
	r.members = append(r.members, member{id: connID, username: username})
}

// elect promotes the first remaining member to leader and announces the
// result. With an empty member set the leader is cleared; callers delete
// empty rooms before electing.
func (g *Registry) elect(roomName string, r *room) {
	if len(r.members) == 0 {
		r.leader = ""
		return
	}
	r.leader = r.members[0].id
	g.announceLeader(roomName, r)
	if g.sink != nil {
		g.sink.LeaderElected(roomName, r.members[0].username, r.leader)
	}
}

// announceLeader broadcasts the room's current leader to its members.
func (g *Registry) announceLeader(roomName string, r *room) {
	i := r.find(r.leader)
	if i < 0 {
		return
	}
	update := LeaderUpdate{
		Room:     roomName,
		Leader:   r.members[i].username,
		LeaderID: r.leader,
	}
	for _, m := range r.members {
		if s, ok := g.conns[m.id]; ok {
			s.Send(EventUpdateLeader, update)
		}
	}
}

// broadcastRoomList sends the active room names to every connection.
func (g *Registry) broadcastRoomList() {
	names := g.roomNames()
	for _, s := range g.conns {
		s.Send(EventRoomList, names)
	}
}

// roomNames returns the active room names sorted for deterministic output.
func (g *Registry) roomNames() []string {
	names := make([]string, 0, len(g.rooms))
	for name := range g.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g *Registry) notifyRoomCreated(roomName, creator string) {
	if g.sink != nil {
		g.sink.RoomCreated(roomName, creator)
	}
}

func (g *Registry) notifyRoomDeleted(roomName string) {
	if g.sink != nil {
		g.sink.RoomDeleted(roomName)
	}
}

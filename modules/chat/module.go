package chat

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/example/forum-chat-demo/events"
	"github.com/go-monolith/mono"
)

// Module owns the room registry and publishes its lifecycle events on the
// application event bus.
type Module struct {
	registry *Registry
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ EventSink                  = (*Module)(nil)
)

// NewModule creates a new chat module.
func NewModule() *Module {
	m := &Module{
		registry: NewRegistry(),
	}
	m.registry.SetEventSink(m)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.RoomCreatedV1.ToBase(),
		events.RoomDeletedV1.ToBase(),
		events.LeaderElectedV1.ToBase(),
	}
}

// Start initializes the chat module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[chat] Module started - room registry ready")
	return nil
}

// Stop shuts down the module. Registry state is in-memory only, so
// there is nothing to flush.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	rooms := m.registry.Rooms()
	members := 0
	for _, r := range rooms {
		members += r.MemberCount
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"active_rooms":   len(rooms),
			"joined_members": members,
		},
	}
}

// Registry returns the room registry for the API module to attach
// connections to.
func (m *Module) Registry() *Registry {
	return m.registry
}

// EventSink implementation. Publish failures are logged and otherwise
// ignored: event delivery is advisory and must never stall a chat command.

// RoomCreated publishes a RoomCreated event.
func (m *Module) RoomCreated(roomName, creator string) {
	if m.eventBus == nil {
		return
	}
	event := events.RoomCreatedEvent{
		Room:      roomName,
		Creator:   creator,
		Timestamp: time.Now(),
	}
	if err := events.RoomCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish RoomCreated event", "error", err)
	}
}

// RoomDeleted publishes a RoomDeleted event.
func (m *Module) RoomDeleted(roomName string) {
	if m.eventBus == nil {
		return
	}
	event := events.RoomDeletedEvent{
		Room:      roomName,
		Timestamp: time.Now(),
	}
	if err := events.RoomDeletedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish RoomDeleted event", "error", err)
	}
}

// LeaderElected publishes a LeaderElected event.
func (m *Module) LeaderElected(roomName, leader, leaderID string) {
	if m.eventBus == nil {
		return
	}
	event := events.LeaderElectedEvent{
		Room:      roomName,
		Leader:    leader,
		LeaderID:  leaderID,
		Timestamp: time.Now(),
	}
	if err := events.LeaderElectedV1.Publish(m.eventBus, event, nil); err != nil {
		slog.Warn("Failed to publish LeaderElected event", "error", err)
	}
}

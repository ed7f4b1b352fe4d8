package activity

import (
	"context"
	"fmt"
	"log"

	"github.com/example/forum-chat-demo/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Module records chat room lifecycle events into an in-memory feed.
type Module struct {
	feed *Feed
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new activity module.
func NewModule() *Module {
	return &Module{
		feed: NewFeed(DefaultFeedSize),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// Start starts the module.
func (m *Module) Start(_ context.Context) error {
	log.Println("[activity] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[activity] Module stopped")
	return nil
}

// RegisterEventConsumers subscribes to the chat room lifecycle events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomCreatedV1, m.handleRoomCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.RoomDeletedV1, m.handleRoomDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register RoomDeleted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.LeaderElectedV1, m.handleLeaderElected, m,
	); err != nil {
		return fmt.Errorf("failed to register LeaderElected consumer: %w", err)
	}

	log.Println("[activity] Registered event consumers: RoomCreated, RoomDeleted, LeaderElected")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"entries": m.feed.Len(),
		},
	}
}

// Feed returns the activity feed for the API module.
func (m *Module) Feed() *Feed {
	return m.feed
}

func (m *Module) handleRoomCreated(_ context.Context, event events.RoomCreatedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Kind:      KindRoomCreated,
		Room:      event.Room,
		Detail:    event.Creator,
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *Module) handleRoomDeleted(_ context.Context, event events.RoomDeletedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Kind:      KindRoomDeleted,
		Room:      event.Room,
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *Module) handleLeaderElected(_ context.Context, event events.LeaderElectedEvent, _ *mono.Msg) error {
	m.feed.Record(Entry{
		Kind:      KindLeaderElected,
		Room:      event.Room,
		Detail:    event.Leader,
		Timestamp: event.Timestamp,
	})
	return nil
}

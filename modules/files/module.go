package files

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
)

// Module stores post image attachments in NATS JetStream Object Store.
type Module struct {
	store   *JetStreamObjectStore
	service *Service
	natsURL string
	bucket  string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new files module.
func NewModule() *Module {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	bucket := os.Getenv("NATS_BUCKET")
	if bucket == "" {
		bucket = "uploads"
	}
	return &Module{
		natsURL: natsURL,
		bucket:  bucket,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "files"
}

// Start connects to NATS JetStream and opens the upload bucket.
func (m *Module) Start(ctx context.Context) error {
	store, err := NewJetStreamObjectStore(m.natsURL, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	if err := store.Init(ctx); err != nil {
		store.Close()
		return fmt.Errorf("failed to initialize object store: %w", err)
	}
	m.store = store

	m.service, err = NewService(store)
	if err != nil {
		store.Close()
		return fmt.Errorf("failed to create file service: %w", err)
	}

	log.Printf("[files] Module started (NATS: %s, bucket: %s)", m.natsURL, m.bucket)
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	if m.store != nil {
		m.store.Close()
	}
	log.Println("[files] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	healthy := m.store != nil && m.store.IsConnected()
	message := "connected"
	if !healthy {
		message = "disconnected"
	}
	return mono.HealthStatus{
		Healthy: healthy,
		Message: message,
		Details: map[string]any{
			"nats_url": m.natsURL,
			"bucket":   m.bucket,
		},
	}
}

// Service returns the file service for the API module to use.
func (m *Module) Service() *Service {
	return m.service
}

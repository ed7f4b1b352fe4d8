package ratelimit

import (
	"context"
	"fmt"
	"log"

	"github.com/example/forum-chat-demo/domain/ratelimit"
	"github.com/go-monolith/mono"
	"github.com/redis/go-redis/v9"
)

// Module provides login rate limiting backed by Redis.
type Module struct {
	client     *redis.Client
	middleware *Middleware
	config     ratelimit.Config
	redisAddr  string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new rate limiting module.
func NewModule(redisAddr string) *Module {
	return &Module{
		redisAddr: redisAddr,
		config:    ratelimit.DefaultLoginConfig(),
	}
}

// NewModuleWithConfig creates a rate limiting module with a custom
// configuration.
func NewModuleWithConfig(redisAddr string, config ratelimit.Config) *Module {
	return &Module{
		redisAddr: redisAddr,
		config:    config,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "rate-limiter"
}

// Start connects to Redis and creates the middleware.
func (m *Module) Start(ctx context.Context) error {
	m.client = redis.NewClient(&redis.Options{
		Addr: m.redisAddr,
	})

	if err := m.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	m.middleware = NewMiddleware(m.client, m.config, "ratelimit:login:")
	log.Printf("[rate-limiter] Module started (Redis: %s)", m.redisAddr)
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			log.Printf("[rate-limiter] Error closing Redis connection: %v", err)
		}
	}
	log.Println("[rate-limiter] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.client == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "Redis client not initialized",
		}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("Redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "connected",
		Details: map[string]any{
			"redis_addr":          m.redisAddr,
			"requests_per_window": m.config.RequestsPerWindow,
			"window_seconds":      m.config.WindowSize.Seconds(),
		},
	}
}

// Middleware returns the rate limiting middleware for the API module.
func (m *Module) Middleware() *Middleware {
	return m.middleware
}

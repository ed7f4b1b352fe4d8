package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/example/forum-chat-demo/modules/activity"
	"github.com/example/forum-chat-demo/modules/auth"
	"github.com/example/forum-chat-demo/modules/board"
	"github.com/example/forum-chat-demo/modules/chat"
	"github.com/example/forum-chat-demo/modules/files"
	"github.com/example/forum-chat-demo/modules/ratelimit"
	"github.com/go-monolith/mono"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP and WebSocket front of the forum: REST routes
// for auth, posts, and uploads, plus the chat endpoint.
type APIModule struct {
	app           *fiber.App
	addr          string
	authContainer mono.ServiceContainer
	authAdapter   auth.AuthPort
	boardModule   *board.Module
	filesModule   *files.Module
	chatModule    *chat.Module
	activity      *activity.Module
	loginLimiter  *ratelimit.Module
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule() *APIModule {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	return &APIModule{
		addr: addr,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authContainer = container
		m.authAdapter = auth.NewAuthAdapter(container)
	}
}

// SetBoard injects the board module.
func (m *APIModule) SetBoard(boardModule *board.Module) {
	m.boardModule = boardModule
}

// SetFiles injects the files module.
func (m *APIModule) SetFiles(filesModule *files.Module) {
	m.filesModule = filesModule
}

// SetChat injects the chat module.
func (m *APIModule) SetChat(chatModule *chat.Module) {
	m.chatModule = chatModule
}

// SetActivity injects the activity module.
func (m *APIModule) SetActivity(activityModule *activity.Module) {
	m.activity = activityModule
}

// SetLoginLimiter injects the optional login rate limiter. When nil,
// login requests are not rate limited.
func (m *APIModule) SetLoginLimiter(limiterModule *ratelimit.Module) {
	m.loginLimiter = limiterModule
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authContainer == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.boardModule == nil || m.filesModule == nil || m.chatModule == nil || m.activity == nil {
		return fmt.Errorf("board, files, chat, and activity modules must be injected")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "Forum Chat",
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}
	m.app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	m.setupRoutes()

	// Start server in goroutine with startup error detection
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	log.Printf("[api] HTTP server started on %s", m.addr)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.ShutdownWithContext(ctx)
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"addr": m.addr,
		},
	}
}

// setupRoutes configures all HTTP and WebSocket routes.
func (m *APIModule) setupRoutes() {
	handlers := NewHandlers(
		m.authContainer,
		m.authAdapter,
		m.boardModule.Service(),
		m.filesModule.Service(),
		m.chatModule.Registry(),
		m.activity.Feed(),
	)

	// Health check endpoint
	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	// Uploaded images
	m.app.Get("/uploads/:name", handlers.GetUpload)

	v1 := m.app.Group("/api/v1")

	// Public auth routes
	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", handlers.Register)
	if m.loginLimiter != nil {
		authRoutes.Post("/login", m.loginLimiter.Middleware().Handler(), handlers.Login)
	} else {
		authRoutes.Post("/login", handlers.Login)
	}

	// Forum board routes. Creating a post requires authentication; the
	// rest of the board is public.
	v1.Get("/posts", handlers.ListPosts)
	v1.Post("/posts", AuthMiddleware(m.authAdapter), handlers.CreatePost)
	v1.Get("/posts/:id", handlers.GetPost)
	v1.Put("/posts/:id", handlers.UpdatePost)
	v1.Delete("/posts/:id", handlers.DeletePost)
	v1.Post("/posts/:id/like", handlers.LikePost)
	v1.Get("/posts/:id/comments", handlers.ListComments)
	v1.Post("/posts/:id/comments", handlers.AddComment)

	// Chat observability routes
	v1.Get("/chat/rooms", handlers.ChatRooms)
	v1.Get("/chat/activity", handlers.ChatActivity)

	// Protected routes
	protected := v1.Group("")
	protected.Use(AuthMiddleware(m.authAdapter))
	protected.Get("/profile", handlers.Profile)

	// WebSocket chat endpoint
	m.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(handlers.HandleWebSocket))
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/forum-chat-demo/modules/activity"
	"github.com/example/forum-chat-demo/modules/api"
	"github.com/example/forum-chat-demo/modules/auth"
	"github.com/example/forum-chat-demo/modules/board"
	"github.com/example/forum-chat-demo/modules/chat"
	"github.com/example/forum-chat-demo/modules/files"
	"github.com/example/forum-chat-demo/modules/ratelimit"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Forum Chat - Fiber + EventBus Pubsub ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	// Create modules
	authModule := auth.NewModule()
	boardModule := board.NewModule()
	filesModule := files.NewModule()
	chatModule := chat.NewModule()
	activityModule := activity.NewModule()
	apiModule := api.NewModule()

	// Inject modules the API serves directly. These are wired manually
	// because their in-process handles (board service, file service,
	// chat registry, activity feed) are not exposed via ServiceContainer.
	apiModule.SetBoard(boardModule)
	apiModule.SetFiles(filesModule)
	apiModule.SetChat(chatModule)
	apiModule.SetActivity(activityModule)

	// Login rate limiting is optional; it is enabled when Redis is
	// configured.
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		limiterModule := ratelimit.NewModule(redisAddr)
		apiModule.SetLoginLimiter(limiterModule)
		app.Register(limiterModule)
	}

	// Register modules with the framework.
	// Order: independent modules first, then modules with dependencies.
	app.Register(authModule)     // Accounts + JWT (ServiceProviderModule)
	app.Register(boardModule)    // Posts and comments
	app.Register(filesModule)    // Image attachments (JetStream Object Store)
	app.Register(chatModule)     // Room registry + event emitter
	app.Register(activityModule) // Event consumer feeding the activity endpoint
	app.Register(apiModule)      // HTTP/WebSocket front (depends on auth)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":3000"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Persistence: SQLite via GORM (auth + board)")
	log.Println("  - File storage: NATS JetStream Object Store")
	log.Printf("  - NATS URL: %s", natsURL)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost%s):", addr)
	log.Println("  GET    /health                      - Health check")
	log.Println("  POST   /api/v1/auth/register        - Create an account")
	log.Println("  POST   /api/v1/auth/login           - Login, returns a bearer token")
	log.Println("  GET    /api/v1/profile              - Current user + their posts (auth)")
	log.Println("  GET    /api/v1/posts                - List posts (sortBy, category, search, page)")
	log.Println("  POST   /api/v1/posts                - Create a post, multipart with image (auth)")
	log.Println("  GET    /api/v1/posts/:id            - Get one post")
	log.Println("  PUT    /api/v1/posts/:id            - Update a post")
	log.Println("  DELETE /api/v1/posts/:id            - Delete a post")
	log.Println("  POST   /api/v1/posts/:id/like       - Like a post")
	log.Println("  GET    /api/v1/posts/:id/comments   - List comments")
	log.Println("  POST   /api/v1/posts/:id/comments   - Add a comment")
	log.Println("  GET    /uploads/:name               - Serve an uploaded image")
	log.Println("  GET    /api/v1/chat/rooms           - Active chat rooms snapshot")
	log.Println("  GET    /api/v1/chat/activity        - Recent room activity")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost%s/ws):", addr)
	log.Println("  Events: create room, join room, leave room, chat message")
	log.Println("  Server pushes: connected, room list, update leader, chat message")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

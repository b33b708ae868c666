package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"oracle-assistant-be/internal/config"
	"oracle-assistant-be/internal/controller"
	"oracle-assistant-be/internal/handler"
	"oracle-assistant-be/internal/pkg/logger"
	"oracle-assistant-be/internal/pkg/mailer"
	"oracle-assistant-be/internal/pkg/serverutils"
	"oracle-assistant-be/internal/repository/memory"
	"oracle-assistant-be/internal/repository/unitofwork"
	"oracle-assistant-be/internal/service"
	"oracle-assistant-be/internal/websocket"
	"oracle-assistant-be/pkg/assistant"
	"oracle-assistant-be/pkg/events"
	"oracle-assistant-be/pkg/identity"
	"oracle-assistant-be/pkg/identity/local"
	"oracle-assistant-be/pkg/identity/supabase"
	"oracle-assistant-be/pkg/llm/factory"
	"oracle-assistant-be/pkg/render"

	pktNats "oracle-assistant-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController      controller.IAuthController
	ChatController      controller.IChatController
	WorkspaceController controller.IWorkspaceController

	// WebSockets
	RealtimeHandler *handler.RealtimeHandler
	WebSocketHub    *websocket.Hub

	JwtMiddleware fiber.Handler
	Logger        logger.ILogger

	cancel  context.CancelFunc
	closers []func()
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Container{cancel: cancel}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })

	tokens := identity.NewTokenService(cfg.Identity.JWTSecret)
	c.JwtMiddleware = serverutils.JwtMiddleware(tokens)

	// 2. Identity gateway
	var gateway identity.Gateway
	switch cfg.Identity.Provider {
	case "local":
		emailService := mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
		)
		gateway = local.NewProvider(uowFactory, tokens, emailService, cfg.App.BaseURL+"/api/auth/callback", cfg.Identity.AutoConfirm)
	default:
		gateway = supabase.NewClient(cfg.Identity.SupabaseURL, cfg.Identity.SupabaseAnonKey, cfg.Identity.Timeout)
	}
	log.Printf("[INFO] Using Identity Provider: %s", cfg.Identity.Provider)

	// 3. Assistant
	llmProvider, err := factory.NewLLMProvider(ctx, factory.ProviderConfig{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		GeminiAPIKey:  cfg.Keys.GoogleGemini,
		OpenAIAPIKey:  cfg.Keys.OpenAI,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, llmProvider.Model())
	oracle := assistant.NewOracleAssistant(llmProvider, cfg.Ai.Timeout, sysLogger)

	// 4. Infrastructure
	// NATS telemetry is optional; services skip publishing when it is absent.
	var publisher service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			publisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}

		natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			telemetry := service.NewTelemetryConsumer(sysLogger)
			subject := "events." + events.TypeChatMessageCreated
			if err := natsSub.Subscribe(subject, "assistant-telemetry", telemetry.Handle); err != nil {
				log.Printf("[WARN] Failed to subscribe to %s: %v", subject, err)
			}
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// Redis fans websocket pushes out across instances.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if _, err := rdb.Ping(pingCtx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		pingCancel()
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	wsLogger := logger.NewIsolatedLogger("logs/realtime.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run(ctx)
	c.WebSocketHub = wsHub

	// 5. Services
	workspaces := memory.NewWorkspaceRepository()
	authChannel := events.NewAuthChannel()
	c.closers = append(c.closers, func() { _ = authChannel.Close() })

	presenter := service.NewPresenter(render.NewRenderer(time.Local), wsHub)

	workspaceService := service.NewWorkspaceService(workspaces, authChannel, presenter, sysLogger)
	chatService := service.NewChatService(uowFactory, workspaceService, oracle, presenter, publisher, cfg.Database.Timeout, sysLogger)
	sessionService := service.NewSessionService(uowFactory, workspaceService, chatService, presenter, publisher, cfg.Database.Timeout, sysLogger)
	authService := service.NewAuthService(gateway, authChannel, workspaces, workspaceService, presenter, cfg.App.ClientURL, sysLogger)

	listener := service.NewAuthStateListener(workspaces, sessionService, presenter, sysLogger)
	if err := listener.Listen(ctx, authChannel); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to start auth state listener: %w", err)
	}

	// 6. Controllers
	c.AuthController = controller.NewAuthController(authService)
	c.ChatController = controller.NewChatController(sessionService, chatService)
	c.WorkspaceController = controller.NewWorkspaceController(workspaceService)
	c.RealtimeHandler = handler.NewRealtimeHandler(wsHub, wsLogger)

	return c, nil
}

// Close stops background workers and releases connections, newest first.
func (c *Container) Close() {
	c.cancel()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

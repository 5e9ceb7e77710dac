package bootstrap

import (
	"context"
	"log"
	"time"

	"roboto-sai-be/internal/config"
	"roboto-sai-be/internal/constant"
	"roboto-sai-be/internal/controller"
	"roboto-sai-be/internal/handler"
	"roboto-sai-be/internal/pkg/logger"
	"roboto-sai-be/internal/repository/contract"
	"roboto-sai-be/internal/repository/implementation"
	"roboto-sai-be/internal/repository/memory"
	"roboto-sai-be/internal/service"
	"roboto-sai-be/internal/websocket"
	"roboto-sai-be/pkg/cache"
	"roboto-sai-be/pkg/conversation"
	"roboto-sai-be/pkg/emotion"
	"roboto-sai-be/pkg/events"
	"roboto-sai-be/pkg/llm"
	"roboto-sai-be/pkg/llm/factory"
	pktNats "roboto-sai-be/pkg/nats"
	"roboto-sai-be/pkg/toolrequest"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const sessionCleanupInterval = 10 * time.Minute

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ChatStreamHandler *handler.ChatStreamHandler
	WebSocketHub      *websocket.Hub

	// Nil when redis is not configured; the limiter then counts in memory.
	RateLimitStorage fiber.Storage

	Logger logger.ILogger

	closers []func()
}

// NewContainer wires the chat pipeline. db may be nil, in which case the
// in-memory message store is used regardless of configuration.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c.Logger = sysLogger
	c.closers = append(c.closers, func() { _ = sysLogger.Sync() })

	messageStore := newMessageStore(db, cfg, sysLogger)
	log.Printf("[INFO] Using message store: %s", messageStore.Kind())

	sessionRepo := memory.NewSessionRepository(cfg.App.SessionTTL, sessionCleanupInterval)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	var eventPublisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.NewRedisClient(ctx, cfg.App.RedisURL)
		cancel()
		if err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		} else {
			rdb = client
			c.closers = append(c.closers, func() { _ = client.Close() })
		}
	}

	var historyCache service.HistoryCache
	if rdb != nil {
		historyCache = cache.NewRedisCache(rdb, "roboto:")
		c.RateLimitStorage = cache.NewStorage(rdb, "roboto:limiter:")
	}

	// WebSocket Hub
	streamLogger := logger.NewIsolatedLogger(cfg.App.StreamLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, streamLogger)

	// 4. Conversation pipeline
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
		cfg.APIKey(),
	)
	if err != nil {
		// Turns still complete in demo mode without a provider.
		log.Printf("[WARN] Failed to initialize LLM Provider: %v", err)
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	invoker := llm.NewInvoker(llmProvider, constant.RobotoPersona, invokerDefaults(cfg.Ai)...)
	orchestrator := conversation.NewOrchestrator(messageStore, emotion.Lexicon{}, invoker, sessionRepo, sysLogger)
	orchestrator.SetDefaultReasoningEffort(cfg.Ai.ReasoningEffort)

	resolver := toolrequest.NewResolver(toolrequest.Defaults{
		FilePath:       cfg.Tools.DefaultFilePath,
		Directory:      cfg.Tools.DefaultDirectory,
		EmailRecipient: cfg.Tools.EmailRecipient,
		EmailSubject:   cfg.Tools.EmailSubject,
	})

	// 5. Services
	dispatcher := service.NewToolDispatchService(pubSub, service.ToolCallTopic, sysLogger)
	c.ConsumerService = service.NewConsumerService(pubSub, service.ToolCallTopic, eventPublisher, sysLogger)

	chatService := service.NewChatService(
		orchestrator,
		resolver,
		messageStore,
		dispatcher,
		c.WebSocketHub,
		eventPublisher,
		historyCache,
		sysLogger,
	)

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.HealthController = controller.NewHealthController(cfg.App.ServiceName, cfg.App.Version, controller.HealthGauges{
		StoreKind:       chatService.StoreKind,
		ActiveSessions:  sessionRepo.Count,
		StreamListeners: func() int { return c.WebSocketHub.Listeners("") },
	})
	c.ChatStreamHandler = handler.NewChatStreamHandler(c.WebSocketHub, cfg.App.JWTSecret, streamLogger)

	return c
}

// Start runs the background workers until ctx is done.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.ConsumerService.Consume(ctx)
}

// Close releases infrastructure connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newMessageStore(db *gorm.DB, cfg *config.Config, log logger.ILogger) contract.MessageStore {
	if db == nil || cfg.App.MessageStore == constant.MessageStoreMemory {
		return memory.NewMessageStore()
	}
	return implementation.NewDurableMessageStore(implementation.NewMessageRepository(db), log)
}

func invokerDefaults(ai config.AIConfig) []llm.Option {
	var opts []llm.Option
	if ai.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(ai.Temperature))
	}
	if ai.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(ai.MaxTokens))
	}
	return opts
}

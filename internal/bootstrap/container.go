package bootstrap

import (
	"context"
	"log"
	"time"

	"regassist-be/internal/config"
	"regassist-be/internal/controller"
	"regassist-be/internal/handler"
	"regassist-be/internal/pkg/logger"
	"regassist-be/internal/pkg/mailer"
	"regassist-be/internal/repository/implementation"
	"regassist-be/internal/repository/memory"
	"regassist-be/internal/repository/unitofwork"
	"regassist-be/internal/service"
	"regassist-be/internal/websocket"
	"regassist-be/pkg/embedding"
	"regassist-be/pkg/embedding/jina"
	"regassist-be/pkg/llm"
	"regassist-be/pkg/llm/factory"
	"regassist-be/pkg/qa/feedback"
	"regassist-be/pkg/qa/invoke"
	"regassist-be/pkg/qa/respcache"

	pktNats "regassist-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QAController       controller.IQAController
	FeedbackController controller.IFeedbackController
	GoldenController   controller.IGoldenController
	AuthController     controller.IAuthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else if cfg.Ai.EmbeddingProvider == "jina" {
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		log.Printf("[INFO] Using Embedding Provider: JINA AI")
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// Initialize LLM Providers based on Config. The pipeline selects an
	// endpoint per attempt; the map is keyed by provider name and the model
	// travels with the endpoint.
	providers := make(map[string]llm.LLMProvider)
	primaryProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	providers[cfg.Ai.LLMProvider] = primaryProvider
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	if cfg.Ai.FallbackProvider != "" && cfg.Ai.FallbackProvider != cfg.Ai.LLMProvider {
		fallbackProvider, err := factory.NewLLMProvider(
			cfg.Ai.FallbackProvider,
			cfg.Ai.FallbackModel,
			cfg.Ai.OllamaBaseURL,
			cfg.Keys.HuggingFace,
		)
		if err != nil {
			log.Printf("[WARN] Failed to initialize fallback LLM Provider: %v", err)
		} else {
			providers[cfg.Ai.FallbackProvider] = fallbackProvider
			log.Printf("[INFO] Using Fallback LLM Provider: %s (%s)", cfg.Ai.FallbackProvider, cfg.Ai.FallbackModel)
		}
	}

	// Initialize In-Memory Stores
	sessionRepo := memory.NewSessionRepository()
	trustCache := memory.NewTrustCache()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	// Response cache rides on Redis; an unreachable Redis downgrades to the
	// in-process cache instead of disabling caching.
	cacheTTL := time.Duration(cfg.QA.CacheTTLMinutes) * time.Minute
	var cacheClient respcache.Client = respcache.NewRedisClient(rdb)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Response cache falls back to memory", err)
		cacheClient = respcache.NewMemoryClient(cacheTTL)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	qaEngineCfg := buildQAEngineConfig(cfg)

	publisherService := service.NewPublisherService(cfg.Keys.UsageTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.UsageTopic,
		uowFactory,
	)

	authService := service.NewAuthService(uowFactory, natsPub)
	goldenService := service.NewGoldenService(uowFactory, embeddingProvider)

	qaService := service.NewQAService(
		uowFactory,
		embeddingProvider,
		providers,
		cacheClient,
		sessionRepo,
		publisherService,
		qaEngineCfg,
	)

	// The submission path uses its own engine instance: same policy, no
	// coupling to the pipeline runner.
	feedbackEngine := feedback.NewEngine(qaEngineCfg.Feedback, log.Default())
	feedbackService := service.NewFeedbackService(
		uowFactory,
		feedbackEngine,
		trustCache,
		natsPub,
	)

	// 4.5 Notification System Infrastructure
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, natsSub, wsHub, emailService, wsLogger) // Hub implements NotificationDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	// Handler logs to the main app log; the hub and the worker keep the
	// isolated notification file.
	notifHandler := handler.NewNotificationHandler(notifService, natsPub, wsHub, sysLogger)

	// 5. Controllers
	// Note: We return the container with public fields for the server to register
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		QAController:        controller.NewQAController(qaService),
		FeedbackController:  controller.NewFeedbackController(feedbackService),
		GoldenController:    controller.NewGoldenController(goldenService),
		AuthController:      controller.NewAuthController(authService),

		ConsumerService: consumerService,
	}
}

// buildQAEngineConfig maps env-level knobs onto the per-engine configs,
// starting from defaults so untouched knobs keep their documented values.
func buildQAEngineConfig(cfg *config.Config) service.QAEngineConfig {
	qa := service.DefaultQAEngineConfig()

	qa.Golden.ServeThreshold = cfg.QA.GoldenServeThreshold
	qa.Golden.ConsiderThreshold = cfg.QA.GoldenConsiderThreshold
	qa.Golden.MaxQuestionLen = cfg.QA.GoldenMaxQuestionLen

	qa.Cache.TTL = time.Duration(cfg.QA.CacheTTLMinutes) * time.Minute

	qa.Invoke.Primary = invoke.Endpoint{Provider: cfg.Ai.LLMProvider, Model: cfg.Ai.LLMModel}
	if cfg.Ai.FallbackProvider != "" {
		qa.Invoke.Fallback = &invoke.Endpoint{Provider: cfg.Ai.FallbackProvider, Model: cfg.Ai.FallbackModel}
	}
	qa.Invoke.Timeout = time.Duration(cfg.QA.LLMTimeoutSeconds) * time.Second
	qa.Invoke.MaxAttempts = cfg.QA.LLMMaxAttempts
	qa.Invoke.MaxToolRounds = cfg.QA.MaxToolRounds
	qa.Invoke.Temperature = cfg.QA.Temperature
	qa.Invoke.MaxTokens = cfg.QA.MaxTokens

	qa.Stream.ChunkSize = cfg.QA.StreamChunkSize

	qa.Feedback.Enabled = cfg.QA.FeedbackEnabled
	qa.Feedback.AnonymousPolicy = feedback.AnonymousPolicy(cfg.QA.AnonymousFeedback)
	qa.Feedback.TrustThreshold = cfg.QA.TrustThreshold

	qa.Retrieval.TopK = cfg.QA.RetrievalTopK
	qa.Retrieval.MinScore = cfg.QA.RetrievalMinScore
	qa.Retrieval.HalfLife = time.Duration(cfg.QA.RecencyHalfLifeDays) * 24 * time.Hour

	qa.HistoryLimit = cfg.QA.HistoryLimit
	return qa
}

package bootstrap

import (
	"context"
	"log"

	"ai-journaling-be/internal/config"
	"ai-journaling-be/internal/controller"
	"ai-journaling-be/internal/pkg/logger"
	"ai-journaling-be/internal/repository/unitofwork"
	"ai-journaling-be/internal/service"
	"ai-journaling-be/pkg/embedding"
	"ai-journaling-be/pkg/llm/factory"
	pktNats "ai-journaling-be/pkg/nats"
	"ai-journaling-be/pkg/store"
	"ai-journaling-be/pkg/tokencount"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	JournalController controller.IJournalController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.LLMProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.Ai.OpenAIBaseURL, cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OpenAIBaseURL,
		cfg.Keys.OpenAI,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	tokenCounter := tokencount.NewCounter(cfg.Ai.LLMModel)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (session cache degrades to local tier)", err)
	}
	sessionCache := store.NewSessionCache(rdb)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Rag.IndexTopicName, pubSub)

	ragService := service.NewRAGService(
		uowFactory,
		embeddingProvider,
		sysLogger,
		cfg.Rag.TopK,
		cfg.Rag.SimilarityThreshold,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Rag.IndexTopicName,
		uowFactory,
		ragService,
	)

	journalService := service.NewJournalService(
		uowFactory,
		ragService,
		llmProvider,
		cfg.Ai.TitleModel,
		sessionCache,
		publisherService,
		natsPub,
		sysLogger,
	)

	chatService := service.NewChatService(
		llmProvider,
		ragService,
		journalService,
		tokenCounter,
		sysLogger,
		cfg.Ai.LLMModel,
		cfg.Ai.Temperature,
		cfg.Ai.MaxTokens,
		cfg.Ai.MaxContextTokens,
		cfg.Ai.RecentMessagesToKeep,
	)

	// 6. Controllers
	return &Container{
		ChatController:    controller.NewChatController(chatService),
		JournalController: controller.NewJournalController(journalService),
		ConsumerService:   consumerService,
		Logger:            sysLogger,
	}
}

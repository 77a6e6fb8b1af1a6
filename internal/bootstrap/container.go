package bootstrap

import (
	"context"
	"fmt"

	"vegan-agent-be/internal/config"
	"vegan-agent-be/internal/controller"
	"vegan-agent-be/internal/credential"
	"vegan-agent-be/internal/metrics"
	"vegan-agent-be/internal/pkg/logger"
	"vegan-agent-be/internal/repository/contract"
	"vegan-agent-be/internal/repository/implementation"
	"vegan-agent-be/internal/repository/memory"
	"vegan-agent-be/internal/service"
	"vegan-agent-be/pkg/ingredient"
	"vegan-agent-be/pkg/llm"
	"vegan-agent-be/pkg/llm/factory"
	pktNats "vegan-agent-be/pkg/nats"
	"vegan-agent-be/pkg/ocr"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	ScanController       controller.IScanController
	SessionController    controller.ISessionController
	IngredientController controller.IIngredientController
	StatsController      controller.IStatsController

	// Services, shared with the CLI
	ScanService       service.IScanService
	SessionService    service.ISessionService
	IngredientService service.IIngredientService
	Resolver          *credential.Resolver

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func()
}

func NewContainer(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	metrics.Init()

	// 1. Credential resolution: secret store first, entered key second
	sources := []credential.Source{credential.EnvSource{}}
	if cfg.Keys.SecretsFile != "" {
		fileSource, err := credential.NewFileSource(cfg.Keys.SecretsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read secrets file: %w", err)
		}
		sources = append(sources, fileSource)
	}
	resolver := credential.NewResolver(cfg.Keys.CredentialName, sources...)

	c := &Container{Logger: sysLogger, Resolver: resolver}

	// 2. Session storage
	sessionRepo := memory.NewSessionRepository(cfg.History.SessionTTL, cfg.History.Size)
	var histories contract.HistoryRepository = sessionRepo
	if cfg.History.Store == "redis" {
		rdb, err := newRedisClient(ctx, cfg.History.RedisURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Redis unavailable, keeping history in memory", map[string]interface{}{"error": err.Error()})
		} else {
			histories = implementation.NewRedisHistoryRepository(rdb, cfg.History.Size, cfg.History.SessionTTL)
			c.closers = append(c.closers, func() { _ = rdb.Close() })
			sysLogger.Info("Bootstrap", "Using Redis history store", nil)
		}
	}

	// 3. Knowledge table
	policy, err := ingredient.ParseUnknownPolicy(cfg.Ingredient.UnknownPolicy)
	if err != nil {
		return nil, err
	}
	matcher := ingredient.NewMatcher(ingredient.Default(), policy)

	// 4. Vision provider, built per call once the key is known
	settings := factory.Settings{
		Model:         cfg.Ai.LLMModel,
		Temperature:   cfg.Ai.Temperature,
		Timeout:       cfg.Ai.Timeout,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
	}
	newProvider := func(ctx context.Context, apiKey string) (llm.VisionProvider, error) {
		return factory.NewVisionProvider(ctx, cfg.Ai.LLMProvider, apiKey, settings)
	}
	sysLogger.Info("Bootstrap", "Vision provider configured", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 5. Optional OCR cross-check
	var textReader ocr.TextReader
	if cfg.OCR.Provider == "rekognition" {
		reader, err := ocr.NewRekognitionReader(ctx, cfg.OCR.AWSRegion)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Rekognition unavailable, OCR cross-check disabled", map[string]interface{}{"error": err.Error()})
		} else {
			textReader = reader
		}
	}

	// 6. Event bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	statsService := service.NewStatsService()
	publisherService := service.NewPublisherService(cfg.Events.Topic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Events.Topic, statsService, sysLogger)

	var eventPublisher service.EventPublisher
	if cfg.Events.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.Events.NatsURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// 7. Services
	scanService := service.NewScanService(
		resolver,
		sessionRepo,
		histories,
		newProvider,
		matcher,
		textReader,
		publisherService,
		eventPublisher,
		sysLogger,
		service.ScanOptions{
			ProviderName:      cfg.Ai.LLMProvider,
			Timeout:           cfg.Ai.Timeout,
			MaxUploadBytes:    int64(cfg.App.MaxUploadMB) * 1024 * 1024,
			MaxToolRounds:     cfg.Ai.MaxToolRounds,
			ToolLookupEnabled: cfg.Ai.ToolLookupEnabled,
		},
	)
	sessionService := service.NewSessionService(resolver, sessionRepo, histories, cfg.History.Size, cfg.Ai.LLMProvider, sysLogger)
	ingredientService := service.NewIngredientService(matcher)

	// 8. Controllers
	c.ScanController = controller.NewScanController(scanService)
	c.SessionController = controller.NewSessionController(sessionService)
	c.IngredientController = controller.NewIngredientController(ingredientService)
	c.StatsController = controller.NewStatsController(statsService)

	c.ScanService = scanService
	c.SessionService = sessionService
	c.IngredientService = ingredientService
	c.ConsumerService = consumerService

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

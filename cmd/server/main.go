package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"npc-server/internal/ai"
	"npc-server/internal/config"
	"npc-server/internal/handler"
	"npc-server/internal/messaging"
	"npc-server/internal/service"
	"npc-server/internal/worldmodel"
	"npc-server/shared/database"
	"npc-server/shared/interfaces"
	sharedLogger "npc-server/shared/logger"
	sharedMiddleware "npc-server/shared/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

const (
	connectRetries    = 30
	connectRetryDelay = 3 * time.Second
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogFormat,
		Service:  "npc-server",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	zap.ReplaceGlobals(logger)
	zap.L().Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("db", cfg.MaskedDSN()),
		zap.String("aiClient", cfg.AIClientType),
		zap.String("aiModel", cfg.AIModel),
	)

	// --- External Connections ---
	pgPool, err := setupPostgres(cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()

	if err := database.ApplyMigrations(pgPool, logger.Named("Migrations")); err != nil {
		zap.L().Fatal("Failed to apply database migrations", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient, err = setupRedis(cfg)
		if err != nil {
			zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	} else {
		zap.L().Info("REDIS_ADDR not set: summary cache disabled, rate limiter uses memory store")
	}

	var publisher interfaces.EventPublisher = messaging.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		mqConn, err := messaging.ConnectRabbitMQ(cfg.RabbitMQURL, connectRetries, connectRetryDelay, logger.Named("RabbitMQ"))
		if err != nil {
			zap.L().Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConn.Close()

		mqPublisher, err := messaging.NewRabbitMQEventPublisher(mqConn, cfg.EventsQueue, logger)
		if err != nil {
			zap.L().Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer mqPublisher.Close()
		publisher = mqPublisher
	} else {
		zap.L().Info("RABBITMQ_URL not set: domain events are not published")
	}

	// --- Dependency Injection ---
	aiClient, err := ai.NewClient(ai.Config{
		Type:    cfg.AIClientType,
		APIKey:  cfg.AIAPIKey,
		BaseURL: cfg.AIBaseURL,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	}, logger)
	if err != nil {
		zap.L().Fatal("Failed to create AI client", zap.Error(err))
	}

	builderOpts := []worldmodel.BuilderOption{worldmodel.WithContextLimit(cfg.AIModel, cfg.AIContextTokens)}
	if redisClient != nil {
		builderOpts = append(builderOpts, worldmodel.WithCache(
			database.NewRedisSummaryCache(redisClient, cfg.SummaryCacheTTL, logger),
		))
	}
	builder := worldmodel.NewBuilder(aiClient, logger, builderOpts...)

	storyRepo := database.NewPgStoryRepository(pgPool, logger)
	characterRepo := database.NewPgCharacterRepository(pgPool, logger)
	turnRepo := database.NewPgConversationRepository(pgPool, logger)

	storySvc := service.NewStoryService(storyRepo, builder, logger)
	characterSvc := service.NewCharacterService(storyRepo, characterRepo, builder, aiClient, publisher, logger)
	conversationSvc := service.NewConversationService(characterRepo, turnRepo, aiClient, publisher, nil, logger)

	npcHandler := handler.NewNPCHandler(storySvc, characterSvc, conversationSvc, logger)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(sharedMiddleware.GinZapLogger(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if origins := cfg.GetAllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
		zap.L().Info("CORSAllowedOrigins not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", sharedMiddleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	npcHandler.RegisterRoutes(router, handler.NewLLMRateLimitStore(cfg.RateLimitPerMinute, redisClient))

	// Prometheus middleware применяем после регистрации роутов
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:        ":" + cfg.ServerPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Генерация персонажа делает до трех вызовов модели подряд.
		WriteTimeout: 3*cfg.AITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exiting")
}

// setupPostgres создает пул соединений с PostgreSQL, повторяя попытки, пока база поднимается.
func setupPostgres(cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse postgres config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout

	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		connectCtx, connectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
		connectCancel()
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			err = pool.Ping(pingCtx)
			pingCancel()
			if err == nil {
				zap.L().Info("Connected to PostgreSQL", zap.Int("attempt", attempt))
				return pool, nil
			}
			pool.Close()
		}

		lastErr = err
		zap.L().Warn("Postgres connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", connectRetries),
			zap.Error(err),
		)
		if attempt < connectRetries {
			time.Sleep(connectRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to postgres after %d attempts: %w", connectRetries, lastErr)
}

// setupRedis подключается к Redis с повторными попытками.
func setupRedis(cfg *config.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	var lastErr error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		client := redis.NewClient(opts)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := client.Ping(pingCtx).Result()
		pingCancel()
		if err == nil {
			zap.L().Info("Connected to Redis", zap.String("address", opts.Addr), zap.Int("attempt", attempt))
			return client, nil
		}

		_ = client.Close()
		lastErr = err
		zap.L().Warn("Redis ping failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", connectRetries),
			zap.Error(err),
		)
		if attempt < connectRetries {
			time.Sleep(connectRetryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", connectRetries, lastErr)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/postcraft/backend/internal/api/handlers"
	"github.com/postcraft/backend/internal/auth"
	"github.com/postcraft/backend/internal/cache/redis"
	"github.com/postcraft/backend/internal/llm"
	"github.com/postcraft/backend/internal/metrics"
	mwauth "github.com/postcraft/backend/internal/middleware/auth"
	"github.com/postcraft/backend/internal/middleware/ratelimit"
	"github.com/postcraft/backend/internal/middleware/security"
	"github.com/postcraft/backend/internal/middleware/validation"
	"github.com/postcraft/backend/internal/storage"
	"github.com/postcraft/backend/internal/storage/postgres"
	"github.com/postcraft/backend/internal/storage/sqlite"
	"github.com/postcraft/backend/internal/style"
	"github.com/postcraft/backend/pkg/config"
	appLogger "github.com/postcraft/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting PostCraft API Server",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	metrics.Init()

	ctx := context.Background()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		appLogger.Fatal("Failed to open store", zap.Error(err))
	}
	defer store.Close()

	redisClient, err := redis.NewClient(ctx, redis.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		StateTTL: cfg.Redis.StateTTL,
		BusyTTL:  cfg.Redis.BusyTTL,
	})
	if err != nil {
		appLogger.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	completer, err := llm.NewFromConfig(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	authService := auth.NewService(store, redisClient, auth.NewBroadcaster(8), auth.Config{
		JWTSecret:      cfg.Auth.JWTSecret,
		PasswordPepper: cfg.Auth.PasswordPepper,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
		Issuer:         cfg.Auth.Issuer,
	})
	styleService := style.NewService(store, redisClient, redisClient, completer)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		IsDevelopment:  cfg.Server.Development,
	}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Logger:               appLogger.Named("RateLimit"),
	})
	defer limiter.Stop()

	app.Get("/metrics", metrics.MetricsHandler())

	api := app.Group("/api/v1")
	api.Use(validation.Middleware(validation.Config{Logger: appLogger.Named("Validation")}))

	health := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"store": store,
		"redis": redisClient,
	})
	api.Get("/health", health.Health)
	api.Get("/ready", health.Ready)

	requireAuth := func(description string) fiber.Handler {
		return mwauth.New(mwauth.Config{
			Authenticator: authService,
			Description:   description,
			QueryParam:    "access_token",
			Logger:        appLogger.Named("Auth"),
		})
	}

	authHandler := handlers.NewAuthHandler(authService)
	wsHandler := handlers.NewWebSocketHandler(authService)

	authGroup := api.Group("/auth", limiter.Middleware())
	authGroup.Post("/signup", authHandler.SignUp)
	authGroup.Post("/signin", authHandler.SignIn)
	authGroup.Post("/signout", requireAuth(""), authHandler.SignOut)
	authGroup.Get("/session", requireAuth(""), authHandler.Session)
	authGroup.Get("/events", requireAuth(""), wsHandler.Upgrade, websocket.New(wsHandler.HandleConnection))

	styleHandler := handlers.NewStyleHandler(styleService)
	styleGroup := api.Group("/style", requireAuth("Please sign in to analyze your writing style."), limiter.Middleware())
	styleGroup.Get("/", styleHandler.GetStyle)
	styleGroup.Post("/analyze", styleHandler.AnalyzeStyle)

	contentHandler := handlers.NewContentHandler(styleService)
	contentGroup := api.Group("/content", requireAuth("Please sign in to generate content."), limiter.Middleware())
	contentGroup.Get("/", contentHandler.List)
	contentGroup.Get("/latest", contentHandler.Latest)
	contentGroup.Post("/generate", contentHandler.Generate)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Driver {
	case "postgres":
		client, err := postgres.NewClient(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		if err := client.InitSchema(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return client, nil
	default:
		client, err := sqlite.NewClient(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		if err := client.InitSchema(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return client, nil
	}
}

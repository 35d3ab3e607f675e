package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/cropweather-ai/cropweather/internal/api"
	"github.com/cropweather-ai/cropweather/internal/chat"
	"github.com/cropweather-ai/cropweather/internal/config"
	"github.com/cropweather-ai/cropweather/internal/conversation"
	"github.com/cropweather-ai/cropweather/internal/crops"
	"github.com/cropweather-ai/cropweather/internal/database"
	"github.com/cropweather-ai/cropweather/internal/events"
	"github.com/cropweather-ai/cropweather/internal/insights"
	"github.com/cropweather-ai/cropweather/internal/knowledge"
	"github.com/cropweather-ai/cropweather/internal/llm"
	"github.com/cropweather-ai/cropweather/internal/middleware"
	iredis "github.com/cropweather-ai/cropweather/internal/redis"
	"github.com/cropweather-ai/cropweather/internal/server"
	"github.com/cropweather-ai/cropweather/internal/weather"
)

// API-wide rate limit, per client IP.
const (
	rateLimitMaxReqs   = 120
	rateLimitWindowSec = 60
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS is optional; without it events are dropped.
	var eventsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATS.URL != "" {
		eventsClient, err = events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to nats", "error", err)
			os.Exit(1)
		}
		defer eventsClient.Close()
		publisher = events.NewPublisher(eventsClient.JetStream())
	}

	// Knowledge base
	embedder := knowledge.NewHTTPEmbedder(cfg.Embedding)
	store := knowledge.NewPostgresStore(pool, embedder)
	knowledgeHandler := knowledge.NewHandler(store)

	// Chat
	completer := llm.NewClient(cfg.LLM)
	memory := conversation.NewRedisStore(redisClient, cfg.Chat.HistoryLimit, cfg.Chat.SessionTTL)
	chatSvc := chat.NewService(store, completer, memory, publisher, cfg.Chat.RetrievalTopN)
	chatHandler := chat.NewHandler(chatSvc)

	// Weather analysis
	weatherClient := weather.NewClient(cfg.Weather)
	forecaster := insights.NewSimulatedForecaster(nil)
	insightsSvc := insights.NewService(weatherClient, completer, forecaster, publisher)
	insightsHandler := insights.NewHandler(insightsSvc)

	// Crop recommendations
	cropsHandler := crops.NewHandler(crops.NewService(store))

	rateLimiter := middleware.NewRateLimiter(redisClient, rateLimitMaxReqs, rateLimitWindowSec)

	router := api.NewRouter(pool, redisClient, eventsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
		APIRateLimiter:     rateLimiter.Middleware,
	}, api.HandlerSet{
		Chat:            chatHandler.Chat,
		CropRecs:        cropsHandler.Recommend,
		WeatherAnalysis: insightsHandler.Analyze,
		IndexDocuments:  knowledgeHandler.Index,
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}

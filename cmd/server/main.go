package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexum/internal/auth"
	"nexum/internal/config"
	"nexum/internal/llm"
	"nexum/internal/middleware"
	"nexum/internal/models"
	"nexum/internal/notify"
	"nexum/internal/places"
	"nexum/internal/planner"
	"nexum/internal/repository"
	"nexum/internal/scheduler"
	"nexum/internal/server"
	"nexum/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newLogger(mode string) (*zap.Logger, error) {
	if mode == gin.ReleaseMode {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.Mode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Nexum...", zap.String("mode", cfg.Server.Mode))
	gin.SetMode(cfg.Server.Mode)

	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.MigrateDB(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Venue search
	searcher, err := places.NewSearcher(places.Options{
		Provider: cfg.Places.Provider,
		BaseURL:  cfg.Places.BaseURL,
		Limit:    cfg.Places.Limit,
		Timeout:  cfg.Places.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize places provider", zap.Error(err))
	}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis is unreachable, venue cache will fall through", zap.Error(err))
		}
		searcher = places.NewCached(searcher, rdb, cfg.Redis.TTL, logger)
		logger.Info("Venue cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	}

	// Language model. The assistant answers 500 while no provider is available.
	var provider llm.Provider
	multiClient, err := llm.NewMultiProviderClient(llm.MultiProviderConfig{
		Providers:   cfg.LLM.Providers,
		MaxFailures: cfg.LLM.MaxFailures,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	if err != nil {
		logger.Warn("Language model unavailable, /api/chat will fail", zap.Error(err))
	} else {
		provider = multiClient
		defer multiClient.Close()
		logger.Info("Language model client initialized", zap.Any("model", multiClient.GetModelInfo()))
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		logger.Warn("auth.jwt_secret is empty, using a random secret; issued tokens will not survive a restart")
	}
	jwtManager := auth.NewJWTManager(secret, cfg.Auth.TokenTTL)

	// Repositories
	groupRepo := repository.NewGroupRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	messageRepo := repository.NewMessageRepository(db, logger)
	prefsRepo := repository.NewPrefsRepository(db, logger)
	suggestionRepo := repository.NewSuggestionRepository(db, logger)

	// Services
	dispatcher := notify.NewDispatcher(logger)
	groups := service.NewGroupService(groupRepo, userRepo, logger)
	suggestions := service.NewSuggestionService(service.SuggestionDeps{
		Groups:       groups,
		GroupRepo:    groupRepo,
		UserRepo:     userRepo,
		MessageRepo:  messageRepo,
		PrefsRepo:    prefsRepo,
		Suggestions:  suggestionRepo,
		Places:       searcher,
		Availability: planner.EveningSlot{Location: cfg.Location()},
		Notifier:     dispatcher,
	}, logger)

	dispatcher.Register(models.ChannelChat, notify.NewChatLog(logger))
	bot, err := notify.NewTelegramFromToken(cfg.Telegram.BotToken, cfg.Telegram.ChatID, suggestions, logger)
	if err != nil {
		logger.Error("Failed to start Telegram bot, TELEGRAM notifications are disabled", zap.Error(err))
	} else if bot != nil {
		dispatcher.Register(models.ChannelTelegram, bot)
		go func() {
			if err := bot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Telegram bot stopped", zap.Error(err))
			}
		}()
	}

	if cfg.Scheduler.Enabled {
		go scheduler.NewPlanner(prefsRepo, suggestionRepo, suggestions, cfg.Scheduler.Interval, logger).Run(ctx)
	}

	chatLimiter := middleware.NewLimiterStore(cfg.RateLimit.ChatPerMinute, cfg.RateLimit.Burst, time.Minute)
	defer chatLimiter.Stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := server.NewServer(server.Services{
		Groups:      groups,
		Users:       service.NewUserService(userRepo, logger),
		Messages:    service.NewMessageService(groups, groupRepo, messageRepo, logger),
		Prefs:       service.NewPrefsService(groups, groupRepo, prefsRepo, logger),
		Suggestions: suggestions,
		Assistant:   service.NewAssistant(provider, cfg.LLM.SystemPrompt, logger),
	}, server.Options{
		JWT:             jwtManager,
		AllowDemoHeader: cfg.Auth.AllowDemoHeader,
		ChatLimiter:     chatLimiter,
		Registry:        registry,
	}, logger)

	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Nexum API listening", zap.String("address", serverAddr))

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

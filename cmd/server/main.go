package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/goal-community-api/internal/config"
	"github.com/yukikurage/goal-community-api/internal/constants"
	"github.com/yukikurage/goal-community-api/internal/database"
	"github.com/yukikurage/goal-community-api/internal/handlers"
	"github.com/yukikurage/goal-community-api/internal/logger"
	"github.com/yukikurage/goal-community-api/internal/middleware"
	"github.com/yukikurage/goal-community-api/internal/realtime"
	"github.com/yukikurage/goal-community-api/internal/repository"
	"github.com/yukikurage/goal-community-api/internal/services"
	"github.com/yukikurage/goal-community-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Init(cfg.LogLevel)

	gin.SetMode(cfg.GinMode)
	utils.SetJWTSecret(cfg.JWTSecret)

	if err := database.Connect(cfg); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	db := database.GetDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	r.Use(logger.GinRecovery(), logger.GinLogger())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", redisAddr).Msg("failed to create Redis session store")
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Chat fan-out: Redis pub/sub when configured, in-process otherwise
	hub := realtime.NewHub()
	var broker realtime.Broker = realtime.NewLocalBroker(hub)
	if cfg.RedisURL != "" {
		redisBroker, err := realtime.NewRedisBroker(cfg.RedisURL, hub)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect chat broker")
		}
		if err := redisBroker.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start chat broker")
		}
		defer redisBroker.Close()
		broker = redisBroker
		logger.Info().Msg("chat fan-out via Redis pub/sub")
	}

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	goalRepo := repository.NewGoalRepository(db)
	userRepo := repository.NewUserRepository(db)
	tipRepo := repository.NewTipRepository(db)
	storyRepo := repository.NewStoryRepository(db)
	chatRepo := repository.NewChatRepository(db)

	handlers.RegisterRoutes(r, db, handlers.Handlers{
		Auth: handlers.NewAuthHandler(services.NewAuthService(userRepo), cfg.JWTExpireHours),
		Goal: handlers.NewGoalHandler(services.NewGoalService(goalRepo, tipRepo, storyRepo, cfg.VoteThreshold)),
		Contribution: handlers.NewContributionHandler(
			services.NewTipService(tipRepo, goalRepo, aiService),
			services.NewStoryService(storyRepo, goalRepo),
		),
		Chat: handlers.NewChatHandler(services.NewChatService(goalRepo, chatRepo, userRepo, hub, broker), cfg.CORSOrigins),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.ServerPort).Int64("vote_threshold", cfg.VoteThreshold).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"honeypot-api/internal/callback"
	"honeypot-api/internal/config"
	"honeypot-api/internal/db"
	apihttp "honeypot-api/internal/http"
	"honeypot-api/internal/llm"
	"honeypot-api/internal/repository"
	"honeypot-api/internal/service"
	"honeypot-api/internal/session"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	extractor := service.NewExtractor(logger, llmClient)
	detector := service.NewScamDetector(logger, llmClient, cfg.ScamConfidenceThreshold)
	persona := service.NewPersonaGenerator(logger, llmClient)

	var archive repository.IntelligenceRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Warn("db connect failed, intelligence archive disabled", zap.Error(err))
		} else {
			defer pool.Close()
			archive = repository.NewPgIntelligenceRepository(pool)
		}
	}

	notifier := callback.NewDisabledNotifier("callback url not configured")
	if cfg.CallbackURL != "" {
		notifier = callback.NewHTTPNotifier(cfg.CallbackURL, logger)
	}

	finalizer := service.NewFinalizerService(logger, extractor, archive, notifier)
	store := session.NewStore(
		logger,
		time.Duration(cfg.SessionTimeoutMinutes)*time.Minute,
		finalizer.Finalize,
	)

	engagement := service.NewEngagementService(logger, store, detector, persona, extractor, cfg.ContextWindowMessages)

	var limiter service.RequestRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, rate limiting disabled", zap.Error(err))
		} else {
			limiter = service.NewRedisRequestRateLimiter(redisClient, time.Minute, cfg.RateLimitPerMin)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured, admin surface disabled")
	}

	honeypotHandler := apihttp.NewHoneypotHandler(logger, engagement)
	adminHandler := apihttp.NewAdminHandler(logger, store)
	router := apihttp.NewRouter(logger, cfg.HoneypotAPIKey, limiter, jwtSvc, honeypotHandler, adminHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.Int("session_timeout_minutes", cfg.SessionTimeoutMinutes),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

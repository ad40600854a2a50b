package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checkout-relay-backend/config"
	v1 "checkout-relay-backend/internal/delivery/http/v1"
	"checkout-relay-backend/internal/usecase"
	"checkout-relay-backend/pkg/logger"
	"checkout-relay-backend/pkg/redis"
	"checkout-relay-backend/pkg/telegram"

	"github.com/go-playground/validator/v10"
)

// @title           Checkout Relay API
// @version         1.0
// @description     Checkout field validation and Telegram submission relay.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting checkout relay", "port", cfg.Port)

	// Configuration errors stop the process before any request is served
	if err := cfg.Validate(); err != nil {
		logger.Log.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// 3. Setup Redis (optional rate-limit store)
	var storeProbe usecase.StoreProbe
	if err := redis.Initialize(context.Background(), redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		if !errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Warn("Redis unavailable - rate limiting will use in-memory store", "error", err)
		}
	} else {
		storeProbe = redis.HealthCheck
		defer redis.Close()
	}

	// 4. Setup Telegram Client
	telegramClient := telegram.New(telegram.Config{
		Token:            cfg.TelegramBotToken,
		ChatID:           cfg.TelegramChatID,
		APIBase:          cfg.TelegramAPIBase,
		Timeout:          time.Duration(cfg.TelegramTimeoutSeconds) * time.Second,
		DisableMultipart: cfg.TelegramDisableMultipart,
	})

	// 5. Setup UseCases
	validate := validator.New()
	checkoutUC := usecase.NewCheckoutUsecase(validate, time.Now)
	submissionUC, err := usecase.NewSubmissionUsecase(usecase.SubmissionConfig{
		TitlePrefix: cfg.TitlePrefix,
		BlockFields: cfg.BlockFields,
		MaxChunkLen: telegram.MaxChunkLen,
	}, telegramClient, time.Now)
	if err != nil {
		logger.Log.Error("Failed to set up submission relay", "error", err)
		os.Exit(1)
	}
	healthUC := usecase.NewHealthUsecase(telegramClient, storeProbe)

	// 6. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		CheckoutUC:   checkoutUC,
		SubmissionUC: submissionUC,
		HealthUC:     healthUC,
		Config:       cfg,
		Redis:        redis.Client(),
	})

	// 7. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

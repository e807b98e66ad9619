package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/shareit-go/shareit/internal/config"
	"github.com/shareit-go/shareit/internal/gateway"
	"github.com/shareit-go/shareit/internal/handler"
	"github.com/shareit-go/shareit/internal/metrics"
	"github.com/shareit-go/shareit/internal/pkg/logger"
	"github.com/shareit-go/shareit/internal/pkg/middleware"
)

func main() {
	cfg, err := config.LoadGateway()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "shareit-gateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting shareit-gateway",
		zap.String("port", cfg.Port),
		zap.String("server_url", cfg.ServerURL),
	)

	// Redis shares the rate limit across gateway instances; without it each
	// instance limits on its own.
	var limiter gateway.Limiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = redisClient.Close() }()

		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, rate limiter will fail open", zap.Error(err))
		}
		cancel()
		limiter = gateway.NewRedisLimiter(redisClient, cfg.RateLimit.Burst, cfg.RateLimit.Window)
	} else {
		limiter = gateway.NewLocalLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	client := gateway.NewClient(cfg.ServerURL, cfg.ServerTimeout, gateway.DefaultBreakerSettings, log)

	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	metrics.Register()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(metrics.Middleware())

	handler.NewHealthHandler("shareit-gateway", nil).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("")
	api.Use(gateway.RateLimit(limiter, log))
	gateway.NewHandler(client, log).RegisterRoutes(api)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ServerTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down shareit-gateway...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("shareit-gateway stopped")
}

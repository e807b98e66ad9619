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
	"go.uber.org/zap"

	"github.com/shareit-go/shareit/internal/application"
	"github.com/shareit-go/shareit/internal/config"
	bookingDomain "github.com/shareit-go/shareit/internal/domain/booking"
	"github.com/shareit-go/shareit/internal/events"
	"github.com/shareit-go/shareit/internal/handler"
	"github.com/shareit-go/shareit/internal/metrics"
	"github.com/shareit-go/shareit/internal/pkg/database"
	"github.com/shareit-go/shareit/internal/pkg/kafka"
	"github.com/shareit-go/shareit/internal/pkg/logger"
	"github.com/shareit-go/shareit/internal/pkg/middleware"
	"github.com/shareit-go/shareit/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "shareit-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting shareit-server",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()

	// Booking events are optional; without brokers nothing is published.
	var publisher *events.Publisher
	if len(cfg.KafkaConfig.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = events.NewPublisher(producer, cfg.KafkaConfig.Topic, log)
		log.Info("booking events enabled",
			zap.Strings("brokers", cfg.KafkaConfig.Brokers),
			zap.String("topic", cfg.KafkaConfig.Topic),
		)
	}

	// Initialize repositories
	userRepo := repository.NewGormUserRepository(db)
	itemRepo := repository.NewGormItemRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		itemRepo,
		userRepo,
		bookingDomain.SystemClock{},
		publisher,
		log,
	)
	commentService := application.NewCommentService(commentRepo, itemRepo, userRepo, bookingService, log)
	itemService := application.NewItemService(itemRepo, userRepo, commentService, log)
	userService := application.NewUserService(userRepo, log)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	metrics.Register()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(metrics.Middleware())

	handler.NewHealthHandler("shareit-server", sqlDB).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewUserHandler(userService).RegisterRoutes(&router.RouterGroup)
	handler.NewItemHandler(itemService, commentService).RegisterRoutes(&router.RouterGroup)
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down shareit-server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("shareit-server stopped")
}

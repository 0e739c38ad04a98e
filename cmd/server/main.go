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
	"go.uber.org/zap"

	"github.com/pousadapro/service-booking/internal/application"
	bookingEvents "github.com/pousadapro/service-booking/internal/events"
	"github.com/pousadapro/service-booking/internal/handler"
	"github.com/pousadapro/service-booking/internal/platform/auth"
	"github.com/pousadapro/service-booking/internal/platform/config"
	"github.com/pousadapro/service-booking/internal/platform/database"
	"github.com/pousadapro/service-booking/internal/platform/health"
	"github.com/pousadapro/service-booking/internal/platform/kafka"
	"github.com/pousadapro/service-booking/internal/platform/logger"
	"github.com/pousadapro/service-booking/internal/platform/middleware"
	"github.com/pousadapro/service-booking/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.PropertyModel{},
			&repository.CalendarSyncModel{},
			&repository.ExternalBookingModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DB.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, 15*time.Minute)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	propertyRepo := repository.NewGormPropertyRepository(db)
	calendarRepo := repository.NewGormCalendarRepository(db)

	// Initialize application services
	bookingService := application.NewBookingService(bookingRepo, propertyRepo, kafkaProducer, log)
	propertyService := application.NewPropertyService(propertyRepo, bookingRepo, log)
	clientService := application.NewClientService(bookingRepo, cfg.Plan.VIPRevenueCents, log)
	calendarService := application.NewCalendarService(calendarRepo, bookingRepo, propertyRepo, log)

	// Initialize and start the calendar feed consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "booking-service"
	feedConsumer := bookingEvents.NewCalendarFeedConsumer(
		cfg.Kafka.Brokers,
		groupID,
		calendarService,
		log,
	)
	defer func() { _ = feedConsumer.Close() }()

	go func() {
		log.Info("starting calendar feed consumer")
		if err := feedConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("calendar feed consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	clientHandler := handler.NewClientHandler(clientService)
	calendarHandler := handler.NewCalendarHandler(calendarService)
	adminHandler := handler.NewAdminHandler(bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-booking")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	propertyHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	clientHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	calendarHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
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

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}

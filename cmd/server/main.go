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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LankaTrails/service-booking/internal/application"
	"github.com/LankaTrails/service-booking/internal/cache"
	"github.com/LankaTrails/service-booking/internal/config"
	offeringDomain "github.com/LankaTrails/service-booking/internal/domain/offering"
	reservationDomain "github.com/LankaTrails/service-booking/internal/domain/reservation"
	bookingEvents "github.com/LankaTrails/service-booking/internal/events"
	"github.com/LankaTrails/service-booking/internal/handler"
	"github.com/LankaTrails/service-booking/internal/platform/auth"
	"github.com/LankaTrails/service-booking/internal/platform/database"
	"github.com/LankaTrails/service-booking/internal/platform/health"
	"github.com/LankaTrails/service-booking/internal/platform/kafka"
	"github.com/LankaTrails/service-booking/internal/platform/logger"
	"github.com/LankaTrails/service-booking/internal/platform/middleware"
	"github.com/LankaTrails/service-booking/internal/repository"
	"github.com/LankaTrails/service-booking/internal/repository/memory"
)

const serviceName = "service-booking"

// stores bundles the repositories and unit of work backing the services.
type stores struct {
	db           *gorm.DB
	uow          reservationDomain.UnitOfWork
	offerings    offeringDomain.Repository
	reservations reservationDomain.Repository
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("store", cfg.Store),
	)

	st, err := openStores(cfg, log)
	if err != nil {
		log.Fatal("failed to initialise store", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Availability cache
	var availabilityCache cache.AvailabilityCache = cache.NopAvailabilityCache{}
	if cfg.RedisConfig.URL != "" {
		client, err := cache.NewRedisClient(cfg.RedisConfig.URL)
		if err != nil {
			log.Fatal("failed to configure redis", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		availabilityCache = cache.NewRedisAvailabilityCache(client, cfg.RedisConfig.TTL, log)
		log.Info("availability cache enabled", zap.Duration("ttl", cfg.RedisConfig.TTL))
	}

	// Initialize Kafka producer
	var publisher application.EventPublisher = application.NopPublisher{}
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = kafkaProducer
	}

	// Initialize application services
	bookingService := application.NewBookingService(
		st.uow,
		st.offerings,
		st.reservations,
		reservationDomain.NewStandardPricingStrategy(),
		availabilityCache,
		publisher,
		log,
	)
	offeringService := application.NewOfferingService(st.uow, st.offerings, availabilityCache, cfg.Currency, log)
	availabilityService := application.NewAvailabilityService(st.offerings, st.reservations, availabilityCache, log)

	// Start listing event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.KafkaConfig.Brokers) > 0 {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-service"
		listingConsumer := bookingEvents.NewListingEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			offeringService,
			log,
		)
		defer func() { _ = listingConsumer.Close() }()

		go func() {
			log.Info("starting listing event consumer")
			if err := listingConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("listing event consumer error", zap.Error(err))
			}
		}()
	}

	if err := handler.RegisterValidators(); err != nil {
		log.Fatal("failed to register validators", zap.Error(err))
	}

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Probes and metrics
	health.NewHandler(st.db, serviceName).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewOfferingHandler(offeringService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAvailabilityHandler(availabilityService).RegisterRoutes(&router.RouterGroup)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Stop consuming before draining HTTP
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

// openStores builds the persistence layer selected by BOOKING_STORE. The Postgres
// store is migrated before use: GORM auto-migrate in development, golang-migrate
// everywhere else.
func openStores(cfg *config.ServiceConfig, log *zap.Logger) (*stores, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		s := memory.NewStore()
		return &stores{uow: s.UnitOfWork(), offerings: s.Offerings(), reservations: s.Reservations()}, nil
	}

	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		return nil, err
	}

	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.OfferingModel{}, &repository.ReservationModel{}); err != nil {
			return nil, fmt.Errorf("auto-migration failed: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
		return nil, err
	}

	return &stores{
		db:           db,
		uow:          repository.NewGormUnitOfWork(db, cfg.TxMaxRetries, log),
		offerings:    repository.NewGormOfferingRepository(db),
		reservations: repository.NewGormReservationRepository(db),
	}, nil
}

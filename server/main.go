package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servetix/api/routes"
	_ "servetix/docs"
	"servetix/internal/migrations"
	"servetix/internal/notifications"
	"servetix/internal/purchases"
	"servetix/internal/shared/config"
	"servetix/internal/shared/database"
	"servetix/internal/shared/middleware"
	"servetix/pkg/logger"
	"servetix/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// @title ServeTix API
// @version 1.0
// @description Seat reservation engine for football match ticketing
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Run(db.GetPostgreSQL()); err != nil {
			appLogger.Error("Migration failed", slog.Any("error", err))
			os.Exit(1)
		}
		appLogger.Info("✅ Database schema up to date")
	}

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.GetRedisClient() != nil {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			BookingRequests: cfg.RateLimit.BookingRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
			WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("booking_requests", cfg.RateLimit.BookingRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Notification pipeline
	notificationCtx, notificationCancel := context.WithCancel(context.Background())
	defer notificationCancel()

	publisher := setupPublisher(cfg)
	defer publisher.Close()

	if consumer := setupConsumer(cfg); consumer != nil {
		consumer.Start(notificationCtx, cfg.Kafka.NumConsumerWorkers)
		defer func() {
			appLogger.Info("Stopping notification consumer...")
			notificationCancel()
			if err := consumer.Stop(); err != nil {
				appLogger.Error("Error stopping notification consumer", slog.Any("error", err))
			}
		}()
	}

	appRouter := routes.NewRouter(cfg, db, publisher)
	engine := setupEngine(cfg, appRouter, rateLimiter)

	// Background jobs
	reminders := notifications.NewReminderScheduler(appRouter.ReminderSource(), publisher,
		cfg.Location(), cfg.Scheduler.ReminderHour, cfg.Scheduler.ReminderMinute)
	if err := reminders.Start(); err != nil {
		appLogger.Error("Failed to start reminder scheduler", slog.Any("error", err))
	}
	defer reminders.Stop()

	if cfg.Reservation.HoldTTL > 0 {
		sweeper := purchases.NewHoldSweeper(appRouter.PurchaseService(), cfg.Reservation.HoldSweepInterval)
		if err := sweeper.Start(); err != nil {
			appLogger.Error("Failed to start hold sweeper", slog.Any("error", err))
		}
		defer sweeper.Stop()
	}

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_base", cfg.GetAPIBasePath()),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.String("built", BuildTime),
			slog.Bool("redis_cache", db.GetRedisClient() != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
			slog.String("seat_lock_mode", cfg.Reservation.LockMode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

// setupPublisher returns a circuit-broken Kafka publisher, or a publisher
// that only logs when Kafka is disabled or unreachable
func setupPublisher(cfg *config.Config) notifications.Publisher {
	appLogger := logger.GetDefault()
	if !cfg.Kafka.Enabled {
		appLogger.Info("Kafka disabled, notifications are logged only")
		return notifications.NewLogPublisher()
	}

	producerConfig := notifications.DefaultKafkaProducerConfig()
	producerConfig.Brokers = cfg.Kafka.Brokers
	producerConfig.Topic = cfg.Kafka.NotificationTopic

	producer, err := notifications.NewKafkaPublisher(producerConfig)
	if err != nil {
		appLogger.Error("Failed to initialize Kafka producer, notifications are logged only", slog.Any("error", err))
		return notifications.NewLogPublisher()
	}
	appLogger.Info("Kafka notification producer initialized", slog.Any("brokers", cfg.Kafka.Brokers))
	return notifications.NewBreakerPublisher(producer, notifications.DefaultBreakerConfig())
}

func setupConsumer(cfg *config.Config) *notifications.Consumer {
	appLogger := logger.GetDefault()
	if !cfg.Kafka.Enabled {
		return nil
	}

	sender, err := notifications.NewGomailSender(cfg.Email)
	if err != nil {
		appLogger.Warn("Email sender not configured, notification consumer disabled", slog.Any("error", err))
		return nil
	}

	consumerConfig := notifications.DefaultConsumerConfig()
	consumerConfig.Brokers = cfg.Kafka.Brokers
	consumerConfig.GroupID = cfg.Kafka.ConsumerGroupID
	consumerConfig.Topics = []string{cfg.Kafka.NotificationTopic}

	consumer, err := notifications.NewConsumer(consumerConfig, sender)
	if err != nil {
		appLogger.Error("Failed to initialize notification consumer", slog.Any("error", err))
		return nil
	}
	return consumer
}

func setupEngine(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(middleware.RequestID(), RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	// Multipart payment proofs
	engine.MaxMultipartMemory = 8 << 20

	appRouter.SetupRoutes(engine)
	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.LogHTTPRequest(c, time.Since(start))
	}
}

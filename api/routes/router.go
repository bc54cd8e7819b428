// api/routes/router.go
package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"servetix/internal/analytics"
	"servetix/internal/matches"
	"servetix/internal/notifications"
	"servetix/internal/purchases"
	"servetix/internal/seats"
	"servetix/internal/shared/config"
	"servetix/internal/shared/database"
	"servetix/internal/tickets"
	"servetix/internal/venues"
	"servetix/internal/vouchers"
	"servetix/pkg/cache"
	"servetix/pkg/logger"
	"servetix/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB

	venueController     *venues.Controller
	seatController      *seats.Controller
	matchController     *matches.Controller
	voucherController   *vouchers.Controller
	purchaseController  *purchases.Controller
	analyticsController *analytics.Controller

	purchaseService purchases.Service
	purchaseRepo    purchases.Repository
}

// NewRouter wires every module. publisher receives purchase notifications.
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher) *Router {
	pg := db.GetPostgreSQL()
	cacheService := cache.NewService(db.GetRedisClient())
	transactor := database.NewTransactor(pg, cfg.Reservation.LockTimeout)

	venueRepo := venues.NewRepository(pg)
	venueService := venues.NewService(venueRepo, cacheService)

	seatRepo := seats.NewRepository(pg, seats.ParseLockMode(cfg.Reservation.LockMode))
	seatService := seats.NewService(seatRepo, transactor, cacheService)

	matchService := matches.NewService(
		matches.NewRepository(pg), venueRepo, seatRepo, seatService,
		transactor, cacheService, cfg.Reservation.DefaultCapacity,
	)

	voucherService := vouchers.NewService(vouchers.NewRepository(pg))

	purchaseRepo := purchases.NewRepository(pg)
	deps := purchases.Deps{
		Repo:       purchaseRepo,
		Seats:      seatRepo,
		Transactor: transactor,
		OrderIDs:   purchases.NewOrderIDGenerator(cfg.Reservation.OrderIDPrefix, cfg.Reservation.OrderIDMaxAttempts),
		Matches:    matchService,
		Pricing:    voucherService,
		Vouchers:   voucherService,
		Notifier:   publisher,
		SeatMaps:   seatService,
		QR:         tickets.NewQREncoder(),
	}

	uploader, err := storage.NewUploader(storage.Config{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		Folder:    cfg.Cloudinary.Folder,
	})
	switch {
	case err == nil:
		deps.Proofs = uploader
	case errors.Is(err, storage.ErrNotConfigured):
		logger.GetDefault().Info("Cloudinary not configured, payment proofs are accepted as URLs only")
	default:
		logger.GetDefault().Warn("Cloudinary unavailable, payment proofs are accepted as URLs only", slog.Any("error", err))
	}

	purchaseService := purchases.NewService(deps, purchases.Options{
		ReservationTimeout: cfg.Reservation.Timeout,
		HoldTTL:            cfg.Reservation.HoldTTL,
	})

	return &Router{
		config:              cfg,
		db:                  db,
		venueController:     venues.NewController(venueService),
		seatController:      seats.NewController(seatService),
		matchController:     matches.NewController(matchService),
		voucherController:   vouchers.NewController(voucherService),
		purchaseController:  purchases.NewController(purchaseService),
		analyticsController: analytics.NewController(analytics.NewService(analytics.NewRepository(pg), cacheService)),
		purchaseService:     purchaseService,
		purchaseRepo:        purchaseRepo,
	}
}

// PurchaseService is shared with the hold sweeper
func (r *Router) PurchaseService() purchases.Service {
	return r.purchaseService
}

// ReminderSource lists buyers for the daily match reminder
func (r *Router) ReminderSource() notifications.ReminderSource {
	return r.purchaseRepo
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		venues.SetupVenueRoutes(api, r.venueController)
		seats.SetupSeatRoutes(api, r.seatController)
		matches.SetupMatchRoutes(api, r.matchController)
		vouchers.SetupVoucherRoutes(api, r.voucherController)
		purchases.SetupPurchaseRoutes(api, r.purchaseController)
		analytics.SetupAnalyticsRoutes(api, r.analyticsController)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "servetix-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "servetix-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

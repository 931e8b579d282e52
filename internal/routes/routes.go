package routes

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/sharpcutlabs/booking-api/internal/audit"
	"github.com/sharpcutlabs/booking-api/internal/cache"
	"github.com/sharpcutlabs/booking-api/internal/config"
	"github.com/sharpcutlabs/booking-api/internal/handlers"
	infraRepo "github.com/sharpcutlabs/booking-api/internal/infra/repository"
	"github.com/sharpcutlabs/booking-api/internal/middleware"
	"github.com/sharpcutlabs/booking-api/internal/notify"
	"github.com/sharpcutlabs/booking-api/internal/payments"
	ucAvailability "github.com/sharpcutlabs/booking-api/internal/usecase/availability"
	ucBooking "github.com/sharpcutlabs/booking-api/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db, cfg.CommitLockTimeout)

	scheduleCache := cache.NewScheduleCache(rdb, bookingRepo, cfg.ScheduleCacheTTL)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	publisher := notify.NewPublisher(rdb)

	var gateway payments.Gateway
	if cfg.MercadoPagoToken != "" {
		mp, err := payments.NewMercadoPago(cfg.MercadoPagoToken)
		if err != nil {
			log.Printf("payment gateway disabled: %v", err)
		} else {
			gateway = mp
		}
	}

	// ======================================================
	// USE CASES
	// ======================================================

	// The cached source serves candidate slot listings; commits re-check
	// through the transaction-scoped repository, never the cache.
	resolver := ucAvailability.NewResolver(scheduleCache)

	commitUC := ucBooking.NewCommit(
		bookingRepo,
		auditDispatcher,
		publisher,
	)

	transitionUC := ucBooking.NewTransition(
		bookingRepo,
		auditDispatcher,
		publisher,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	availabilityHandler := handlers.NewAvailabilityHandler(db, resolver)
	bookingHandler := handlers.NewBookingHandler(db, commitUC, transitionUC)
	shiftHandler := handlers.NewShiftHandler(db, scheduleCache)
	timeBlockHandler := handlers.NewTimeBlockHandler(db, scheduleCache)
	pricingHandler := handlers.NewPricingHandler(db)
	webhookHandler := handlers.NewWebhookHandler(db, gateway, auditDispatcher)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/barbers/:id/availability", availabilityHandler.Get)
		api.GET("/barbers/:id/services", availabilityHandler.ListServices)

		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		if gateway != nil {
			api.POST("/webhooks/payments", webhookHandler.HandlePayment)
		}

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.POST("/bookings", bookingHandler.Create)

			// Barber agenda and calendar management.
			me := secured.Group("/me")
			{
				me.GET("/bookings", bookingHandler.ListByDate)

				me.GET("/shifts", shiftHandler.List)
				me.PUT("/shifts", shiftHandler.Update)

				me.GET("/time-blocks", timeBlockHandler.List)
				me.POST("/time-blocks", timeBlockHandler.Create)
				me.DELETE("/time-blocks/:id", timeBlockHandler.Delete)
			}

			// Status transitions are provider-side operations.
			lifecycle := secured.Group("/bookings")
			lifecycle.Use(middleware.RequireRole("barber", "admin"))
			{
				lifecycle.PATCH("/:id/confirm", bookingHandler.Confirm)
				lifecycle.PATCH("/:id/cancel", bookingHandler.Cancel)
				lifecycle.PATCH("/:id/complete", bookingHandler.Complete)
				lifecycle.PATCH("/:id/no-show", bookingHandler.NoShow)
			}

			// ------------------------------
			// ADMIN
			// ------------------------------
			admin := secured.Group("/admin")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.GET("/pricing-rules/active", pricingHandler.GetActive)
				admin.PUT("/pricing-rules/active", pricingHandler.UpdateActive)
			}
		}
	}
}

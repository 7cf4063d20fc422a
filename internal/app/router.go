package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"tripmatch/internal/handler"
	"tripmatch/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler         *handler.UserHandler
	RideHandler         *handler.RideHandler
	TripHandler         *handler.TripHandler
	ConfirmationHandler *handler.ConfirmationHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.GetAll)
			rides.GET("/:id", deps.RideHandler.GetRide)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.GetTrip)
		}

		// Confirmation routes.
		confirmations := v1.Group("/confirmations")
		{
			confirmations.POST("", deps.ConfirmationHandler.Create)
			confirmations.GET("", deps.ConfirmationHandler.List)
			confirmations.GET("/request-again-info", deps.ConfirmationHandler.RequestAgainInfo)
			confirmations.GET("/:id", deps.ConfirmationHandler.Get)
			confirmations.GET("/:id/reversal", deps.ConfirmationHandler.ReversalInfo)
			confirmations.GET("/:id/expiry", deps.ConfirmationHandler.ExpiryInfo)
			confirmations.POST("/:id/accept", deps.ConfirmationHandler.Accept)
			confirmations.POST("/:id/reject", deps.ConfirmationHandler.Reject)
			confirmations.POST("/:id/cancel-request", deps.ConfirmationHandler.CancelRequest)
			confirmations.POST("/:id/cancel", deps.ConfirmationHandler.Cancel)
			confirmations.POST("/:id/reverse", deps.ConfirmationHandler.Reverse)
			confirmations.POST("/:id/request-again", deps.ConfirmationHandler.RequestAgain)
		}
	}

	return router
}

package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusride/internal/handler"
	"campusride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler        *handler.RideHandler
	TripRequestHandler *handler.TripRequestHandler
	OfferHandler       *handler.OfferHandler
	BookingHandler     *handler.BookingHandler
	NewRelicApp        *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.WithActor())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus metrics.
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Ride routes (direct flow).
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.ListRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/bookings", deps.BookingHandler.CreateBooking)
		}

		// Trip request routes (matched flow).
		tripRequests := v1.Group("/trip-requests")
		{
			tripRequests.POST("", deps.TripRequestHandler.CreateTripRequest)
			tripRequests.GET("", deps.TripRequestHandler.ListTripRequests)
			tripRequests.GET("/:id", deps.TripRequestHandler.GetTripRequest)
			tripRequests.POST("/:id/offers", deps.OfferHandler.CreateOffer)
			tripRequests.GET("/:id/offers", deps.OfferHandler.ListOffers)
		}

		// Offer routes.
		offers := v1.Group("/offers")
		{
			offers.POST("/:id/accept", deps.OfferHandler.AcceptOffer)
			offers.POST("/:id/cancel", deps.OfferHandler.CancelOffer)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.POST("/:id/cancel", deps.BookingHandler.CancelBooking)
		}
	}

	return router
}

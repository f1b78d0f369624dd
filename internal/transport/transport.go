package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/ds124wfegd/ticketbooker/config"
	"github.com/ds124wfegd/ticketbooker/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func InitRoutes(cfg *config.AppConfig, ticketHandler *TicketHandler, bookingHandler *BookingHandler, store Pinger) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		// Ticket catalog routes
		api.GET("/get-available-ticket", ticketHandler.GetAvailableTickets)
		api.GET("/get-available-ticket/categories", ticketHandler.GetAvailableByCategory)
		api.GET("/get-ticket/:ticketCode", ticketHandler.GetTicket)

		// Booking routes
		api.POST("/book-ticket", bookingHandler.BookTicket)
		api.GET("/get-booked-ticket/:bookedTicketId", bookingHandler.GetBookedTicket)
		api.GET("/get-booked-tickets", bookingHandler.GetBookedTickets)
		api.DELETE("/revoke-ticket/:bookedTicketId/:ticketCode/:qty", bookingHandler.RevokeTicket)
		api.PUT("/edit-booked-ticket/:bookedTicketId", bookingHandler.EditBookedTicket)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	return router
}

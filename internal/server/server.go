package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/farhanadi/ticketbook/config"
	"github.com/farhanadi/ticketbook/internal/cache"
	"github.com/farhanadi/ticketbook/internal/handlers"
	"github.com/farhanadi/ticketbook/internal/middleware"
	"github.com/farhanadi/ticketbook/internal/monitoring"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	var eventCache *cache.EventCache
	if redisClient := config.InitRedis(cfg); redisClient != nil {
		eventCache = cache.NewEventCache(redisClient)
	}

	r := gin.Default()

	SetupRoutes(r, db, eventCache)

	return r.Run(":" + cfg.Port)
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, eventCache *cache.EventCache) {
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.DatabaseMiddleware(db))
	if eventCache != nil {
		r.Use(middleware.CacheMiddleware(eventCache))
	}
	r.Use(monitoring.RequestMetrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/auth")
	{
		auth.POST("/signup", handlers.Signup)
		auth.POST("/login", handlers.Login)
	}

	users := r.Group("/users")
	users.Use(middleware.JWTAuthMiddleware())
	{
		users.GET("/me", handlers.Me)
	}

	events := r.Group("/events")
	{
		events.GET("", handlers.ListEvents)
		events.GET("/:id", handlers.GetEvent)
	}
	eventsProtected := r.Group("/events")
	eventsProtected.Use(middleware.JWTAuthMiddleware())
	{
		eventsProtected.POST("", handlers.CreateEvent)
		eventsProtected.PUT("/:id", handlers.UpdateEvent)
		eventsProtected.DELETE("/:id", handlers.DeleteEvent)
	}

	tickets := r.Group("/tickets")
	{
		tickets.GET("", handlers.ListTickets)
		tickets.GET("/:id", handlers.GetTicket)
	}
	ticketsProtected := r.Group("/tickets")
	ticketsProtected.Use(middleware.JWTAuthMiddleware())
	{
		ticketsProtected.POST("", handlers.CreateTicket)
		ticketsProtected.PUT("/:id", handlers.UpdateTicket)
		ticketsProtected.DELETE("/:id", handlers.DeleteTicket)
	}

	bookings := r.Group("/bookings")
	bookings.Use(middleware.JWTAuthMiddleware())
	{
		bookings.GET("", handlers.ListBookings)
		bookings.POST("", handlers.CreateBooking)
		bookings.DELETE("/:id", handlers.CancelBooking)
		bookings.GET("/:id/qr", handlers.BookingQR)
	}
}

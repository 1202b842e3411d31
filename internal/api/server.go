package api

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wayfarer/internal/cache"
	"wayfarer/internal/config"
	"wayfarer/internal/database"
	"wayfarer/internal/handlers"
	"wayfarer/internal/logger"
	"wayfarer/internal/messaging"
	"wayfarer/internal/middleware"
	"wayfarer/internal/notify"
	"wayfarer/internal/repository"
	"wayfarer/internal/service"
	"wayfarer/internal/settings"
)

// Server wires the HTTP API together: database, broker, cache,
// repositories, services and routes.
type Server struct {
	router    *gin.Engine
	config    *config.Config
	db        *database.DB
	nats      *messaging.NATSClient
	authCache *cache.AuthCache
	services  *service.Services
	repos     *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	// The auth cache is optional; without redis every request hits the
	// users table
	var authCache *cache.AuthCache
	if cfg.RedisAddr != "" {
		authCache, err = cache.NewAuthCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			slog.Warn("Redis unavailable, auth cache disabled", "error", err)
			authCache = nil
		}
	}

	repos := repository.NewRepositories(db)

	dispatcher := notify.NewDispatcher(
		notify.NewMailer(cfg.TourSMTP),
		notify.NewMailer(cfg.ExperienceSMTP),
		settings.NewStaticProvider(cfg.Site),
	)

	services := service.NewServices(repos, dispatcher, natsClient)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics())
	}

	server := &Server{
		router:    router,
		config:    cfg,
		db:        db,
		nats:      natsClient,
		authCache: authCache,
		services:  services,
		repos:     repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.repos)
	auth := middleware.BasicAuth(s.repos.Users, s.authCache)
	admin := []gin.HandlerFunc{auth, middleware.RequireAdmin()}

	// Public catalog reads and the guest experience booking endpoint
	api := s.router.Group("/api")
	{
		tours := api.Group("/tours")
		{
			tours.GET("", h.ListTours)
			tours.GET("/:id", h.GetTour)
			tours.POST("", append(admin, h.CreateTour)...)
			tours.PATCH("/:id", append(admin, h.UpdateTour)...)
			tours.DELETE("/:id", append(admin, h.DeleteTour)...)
			tours.PUT("/:id/itinerary", append(admin, h.ReplaceTourItinerary)...)
		}

		experiences := api.Group("/experiences")
		{
			experiences.GET("", h.ListExperiences)
			experiences.GET("/:id", h.GetExperience)
			experiences.POST("", append(admin, h.CreateExperience)...)
			experiences.PATCH("/:id", append(admin, h.UpdateExperience)...)
			experiences.DELETE("/:id", append(admin, h.DeleteExperience)...)

			// Guests may book without an account
			experiences.POST("/bookings", h.CreateExperienceBooking)
			experiences.GET("/bookings", append(admin, h.ListExperienceBookings)...)
			experiences.PATCH("/bookings/:id/status", append(admin, h.UpdateExperienceBookingStatus)...)
		}

		bookings := api.Group("/bookings")
		bookings.Use(auth)
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.DELETE("/:id", h.CancelBooking)
			bookings.PATCH("/:id/status", middleware.RequireAdmin(), h.UpdateBookingStatus)
			bookings.GET("/stats/overview", middleware.RequireAdmin(), h.BookingStats)
		}
	}

	s.router.GET("/health", h.HealthCheck)

	if s.config.MetricsEnabled {
		s.router.GET(s.config.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes all outbound connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.authCache != nil {
		if err := s.authCache.Close(); err != nil {
			slog.Error("Error closing redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/config"
	"github.com/samkorsel/carpool-backend/internal/database"
	"github.com/samkorsel/carpool-backend/internal/handlers"
	"github.com/samkorsel/carpool-backend/internal/metrics"
	"github.com/samkorsel/carpool-backend/internal/middleware"
	"github.com/samkorsel/carpool-backend/internal/services"
	"github.com/samkorsel/carpool-backend/pkg/jwt"
	"github.com/samkorsel/carpool-backend/pkg/routing"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Samkørsel Carpool Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Apply schema migrations
	if err := database.RunMigrations(cfg.Database); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations applied")

	// Register Prometheus collectors
	metrics.Register()

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	cityRepo := database.NewCityRepository(db)
	vehicleRepo := database.NewVehicleRepository(db)
	routeRepo := database.NewRouteRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	conversationRepo := database.NewConversationRepository(db)
	messageRepo := database.NewMessageRepository(db)
	reviewRepo := database.NewReviewRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	authService := services.NewAuthService(userRepo, jwtService, cfg.Security.BcryptCost, logger)
	availabilityService := services.NewAvailabilityService(bookingRepo)
	notificationService := services.NewNotificationService(messageRepo, logger)
	conversationService := services.NewConversationService(conversationRepo, messageRepo, routeRepo, logger)
	bookingService := services.NewBookingService(bookingRepo, routeRepo, userRepo, conversationService, notificationService, logger)
	reviewService := services.NewReviewService(reviewRepo, bookingRepo, routeRepo, logger)
	routeCalculator := routing.NewNoopCalculator()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	routeHandler := handlers.NewRouteHandler(routeRepo, cityRepo, availabilityService, routeCalculator, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	chatHandler := handlers.NewChatHandler(conversationService, logger)
	vehicleHandler := handlers.NewVehicleHandler(vehicleRepo, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger)
	profileHandler := handlers.NewProfileHandler(userRepo, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}

	// CORS configuration
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check and metrics endpoints
	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Cities (public)
		v1.GET("/cities", routeHandler.ListCities)

		// Routes
		routes := v1.Group("/routes")
		{
			// Public search and detail
			routes.GET("", routeHandler.SearchRoutes)

			// Protected routes (require JWT authentication)
			routesProtected := routes.Group("")
			routesProtected.Use(middleware.AuthMiddleware(jwtService))
			{
				routesProtected.POST("", routeHandler.CreateRoute)
				routesProtected.GET("/mine", routeHandler.MyRoutes)
				routesProtected.PATCH("/:id/status", routeHandler.UpdateRouteStatus)
			}

			routes.GET("/:id", routeHandler.GetRoute)
			routes.GET("/:id/availability", routeHandler.GetAvailability)
		}

		// Bookings (all protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("/mine", bookingHandler.MyBookings)
			bookings.GET("/requests", bookingHandler.BookingRequests)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.POST("/:id/approve", bookingHandler.ApproveBooking)
			bookings.POST("/:id/reject", bookingHandler.RejectBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
		}

		// Conversations (all protected)
		conversations := v1.Group("/conversations")
		conversations.Use(middleware.AuthMiddleware(jwtService))
		{
			conversations.GET("", chatHandler.ListConversations)
			conversations.GET("/unread", chatHandler.UnreadCount)
			conversations.GET("/:id", chatHandler.GetConversation)
			conversations.POST("/:id/messages", chatHandler.SendMessage)
		}

		// Vehicles (all protected)
		vehicles := v1.Group("/vehicles")
		vehicles.Use(middleware.AuthMiddleware(jwtService))
		{
			vehicles.POST("", vehicleHandler.CreateVehicle)
			vehicles.GET("", vehicleHandler.MyVehicles)
			vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
		}

		// Reviews
		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthMiddleware(jwtService))
		{
			reviews.POST("", reviewHandler.CreateReview)
		}

		// Public user profiles
		v1.GET("/users/:id", profileHandler.GetPublicProfile)
		v1.GET("/users/:id/reviews", reviewHandler.ListUserReviews)

		// Own profile (protected)
		profile := v1.Group("/profile")
		profile.Use(middleware.AuthMiddleware(jwtService))
		{
			profile.GET("", profileHandler.GetMe)
			profile.PATCH("", profileHandler.UpdateMe)
		}
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}

package main

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"dealerops/internal/handler"
	"dealerops/internal/middleware"
	"dealerops/internal/punch"
	"dealerops/pkg/config"
	"dealerops/pkg/database"
	"dealerops/pkg/jwtutil"
	"dealerops/pkg/logger"
	"dealerops/prometheus"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting dealerops service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Resolve the governing time zone for due-date validation
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Invalid time zone", zap.String("time_zone", cfg.TimeZone), zap.Error(err))
	}

	// Wire the access-control core to the database
	handler.Init(database.GetDB(), loc, cfg.Invite.TTL)

	// Start the punch auto-close sweep
	sweeper := punch.NewSweeper(
		punch.NewMachine(database.GetDB()),
		cfg.Punch.SweepSchedule,
		cfg.Punch.StaleThreshold,
		log,
	)
	if err := sweeper.Start(); err != nil {
		log.Fatal("Failed to start punch sweeper", zap.Error(err))
	}
	defer sweeper.Stop()
	log.Info("Punch auto-close sweeper started",
		zap.String("schedule", cfg.Punch.SweepSchedule),
		zap.Duration("threshold", cfg.Punch.StaleThreshold))

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover()) // Add recovery middleware
	e.Use(echomiddleware.CORS())    // Add CORS middleware
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// Invitation resolution is public: the token is the credential
	e.GET("/invitations/:token", handler.ResolveInvitation)

	// Kiosk routes - authenticated by the short-lived session token
	kiosk := e.Group("/kiosk")
	kiosk.Use(middleware.KioskMiddleware)
	kiosk.GET("/employees", handler.ListKioskEmployees)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Tenant management
	tenants := api.Group("/tenants")
	tenants.POST("", handler.CreateTenant)
	tenants.GET("", handler.ListUserTenants)
	tenants.GET("/:id", handler.GetTenant)
	api.POST("/tenant-auth/switch", handler.SwitchTenant)

	// Invitations
	invitations := api.Group("/invitations")
	invitations.POST("", handler.CreateInvitation)
	invitations.POST("/accept", handler.AcceptInvitation)

	// Contacts
	contacts := api.Group("/contacts")
	contacts.POST("", handler.CreateContact)
	contacts.GET("", handler.ListContacts)
	contacts.PATCH("/:id", handler.UpdateContact)

	// Orders and comments
	orders := api.Group("/orders")
	orders.POST("", handler.CreateOrder)
	orders.GET("", handler.ListOrders)
	orders.POST("/:id/comments", handler.CreateComment)
	api.PATCH("/comments/:id", handler.UpdateComment)
	api.DELETE("/comments/:id", handler.DeleteComment)

	// Service catalog
	api.GET("/services", handler.ListServices)

	// Time tracking
	punches := api.Group("/punches")
	punches.POST("/clock-in", handler.ClockIn)
	punches.POST("/clock-out", handler.ClockOut)

	// Kiosk session issuing requires a user token
	api.POST("/kiosk/session", handler.CreateKioskSession)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}

package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/devlinkhq/devlink/internal/config"
	"github.com/devlinkhq/devlink/internal/database"
	"github.com/devlinkhq/devlink/internal/handlers"
	"github.com/devlinkhq/devlink/internal/middleware"
	"github.com/devlinkhq/devlink/internal/services"
	"github.com/devlinkhq/devlink/internal/types"

	_ "github.com/devlinkhq/devlink/docs/api" // Swagger docs
)

// @title DevLink API
// @version 1.0.0
// @description Link-in-bio data service: profiles, links, themes, click analytics
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/devlinkhq/devlink

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Detailed click logging is optional; it activates only when the
	// clicks_log table has been provisioned out of band.
	sink := services.NewClickSink(db)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("devlink")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Create handlers
	healthHandler := &handlers.HealthHandler{DB: db, Cfg: cfg}
	userHandler := &handlers.UserHandler{DB: db}
	linksHandler := &handlers.LinksHandler{DB: db, Sink: sink}
	themeHandler := &handlers.ThemeHandler{DB: db}
	profileHandler := &handlers.ProfileHandler{DB: db}
	qrcodeHandler := &handlers.QRCodeHandler{Cfg: cfg}
	analyticsHandler := &handlers.AnalyticsHandler{DB: db}
	adminHandler := &handlers.AdminHandler{DB: db, Cfg: cfg}

	app.Get("/health", healthHandler.Health)

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	// Public routes
	api.Get("/public-profile", profileHandler.GetProfile)
	api.Post("/track-click", linksHandler.TrackClick)
	api.Get("/qrcode", qrcodeHandler.GetQRCode)
	api.Post("/check-username", userHandler.CheckUsername)

	// Authenticated routes
	authUser := middleware.RequireUser(cfg)
	api.Get("/user", authUser, userHandler.GetUser)
	api.Post("/user", authUser, userHandler.SyncUser)
	api.Put("/user", authUser, userHandler.UpdateProfile)
	api.Get("/user/check-suspended", authUser, userHandler.CheckSuspended)
	api.Get("/bio", authUser, userHandler.GetBio)
	api.Put("/bio", authUser, userHandler.UpdateBio)
	api.Get("/links", authUser, linksHandler.ListLinks)
	api.Post("/links", authUser, linksHandler.CreateLink)
	api.Put("/links", authUser, linksHandler.UpdateLink)
	api.Delete("/links", authUser, linksHandler.DeleteLink)
	api.Patch("/links/:linkId/toggle", authUser, linksHandler.ToggleVisibility)
	api.Get("/theme", authUser, themeHandler.GetTheme)
	api.Put("/theme", authUser, themeHandler.UpdateTheme)
	api.Get("/analytics", authUser, analyticsHandler.GetAnalytics)
	api.Get("/analytics/export", authUser, analyticsHandler.ExportAnalytics)

	// Admin routes
	admin := api.Group("/admin", middleware.RequireAdmin(cfg))
	admin.Get("/check", adminHandler.Check)
	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/analytics", adminHandler.Analytics)
	admin.Get("/users", adminHandler.Users)
	admin.Patch("/users/:userId/suspend", adminHandler.Suspend)
	admin.Delete("/users/:userId", adminHandler.DeleteUser)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// The Authorizer client initializes lazily on the first authenticated
	// request, which supplies the redirect scheme and host.
	log.Printf("Authorizer will be initialized on first authenticated request")

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		errorType = appErr.Type
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

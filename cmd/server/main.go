package main

import (
	"context"
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
	"github.com/joho/godotenv"

	"github.com/feedlane/feedlane/internal/config"
	"github.com/feedlane/feedlane/internal/database"
	"github.com/feedlane/feedlane/internal/handlers"
	"github.com/feedlane/feedlane/internal/middleware"
	"github.com/feedlane/feedlane/internal/search"
	"github.com/feedlane/feedlane/internal/services"

	_ "github.com/feedlane/feedlane/docs/api" // Swagger docs
)

// @title Feedlane API
// @version 1.0.0
// @description User feedback collection and issue tracking service

// @contact.name API Support
// @contact.url https://github.com/feedlane/feedlane

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

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

	// Search index mirror
	idx, err := search.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize search index: %v", err)
	}
	if idx.Enabled() {
		log.Printf("Search mirror enabled at %s, resyncing indexes", cfg.SearchAddress)
		if err := search.MigrateAll(context.Background(), db, idx); err != nil {
			log.Printf("Search resync incomplete: %v", err)
		}
	}

	// Per-project statistics rollup cron
	var scheduler *services.StatsScheduler
	if cfg.StatsCronEnable {
		scheduler = services.NewStatsScheduler(db)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start statistics scheduler: %v", err)
		}
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("feedlane")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// Create handlers
	projectHandler := &handlers.ProjectHandler{DB: db, Index: idx, Scheduler: scheduler}
	channelHandler := &handlers.ChannelHandler{DB: db, Index: idx}
	feedbackHandler := &handlers.FeedbackHandler{DB: db, Index: idx}
	issueHandler := &handlers.IssueHandler{DB: db}
	statsHandler := &handlers.StatisticsHandler{DB: db}
	externalHandler := &handlers.ExternalHandler{DB: db, Index: idx}

	// Admin API routes under /api
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	api.Post("/projects", projectHandler.CreateProject)
	api.Get("/projects", projectHandler.FindProjects)
	api.Get("/projects/:projectId", projectHandler.GetProject)
	api.Put("/projects/:projectId", projectHandler.UpdateProject)
	api.Delete("/projects/:projectId", projectHandler.DeleteProject)
	api.Post("/projects/:projectId/api-keys", projectHandler.CreateAPIKey)
	api.Delete("/projects/:projectId/api-keys/:keyId", projectHandler.RevokeAPIKey)

	api.Post("/projects/:projectId/channels", channelHandler.CreateChannel)
	api.Get("/projects/:projectId/channels", channelHandler.FindChannels)
	api.Get("/projects/:projectId/channels/:channelId", channelHandler.GetChannel)
	api.Put("/projects/:projectId/channels/:channelId", channelHandler.UpdateChannel)
	api.Delete("/projects/:projectId/channels/:channelId", channelHandler.DeleteChannel)
	api.Post("/projects/:projectId/channels/:channelId/fields", channelHandler.CreateFields)
	api.Put("/projects/:projectId/channels/:channelId/fields", channelHandler.ReplaceFields)
	api.Get("/projects/:projectId/channels/:channelId/fields", channelHandler.FindFields)

	api.Post("/projects/:projectId/channels/:channelId/feedbacks", feedbackHandler.CreateFeedback)
	api.Post("/projects/:projectId/channels/:channelId/feedbacks/search", feedbackHandler.FindFeedbacks)
	api.Post("/projects/:projectId/channels/:channelId/feedbacks/export", feedbackHandler.ExportFeedbacks)
	api.Delete("/projects/:projectId/channels/:channelId/feedbacks", feedbackHandler.DeleteFeedbacks)
	api.Get("/projects/:projectId/channels/:channelId/feedbacks/:feedbackId", feedbackHandler.GetFeedback)
	api.Put("/projects/:projectId/channels/:channelId/feedbacks/:feedbackId", feedbackHandler.UpdateFeedback)
	api.Post("/projects/:projectId/channels/:channelId/feedbacks/:feedbackId/issue/:issueId", feedbackHandler.AddIssue)
	api.Delete("/projects/:projectId/channels/:channelId/feedbacks/:feedbackId/issue/:issueId", feedbackHandler.RemoveIssue)

	api.Post("/projects/:projectId/issues", issueHandler.CreateIssue)
	api.Post("/projects/:projectId/issues/search", issueHandler.FindIssues)
	api.Get("/projects/:projectId/issues/:issueId", issueHandler.GetIssue)
	api.Put("/projects/:projectId/issues/:issueId", issueHandler.UpdateIssue)
	api.Delete("/projects/:projectId/issues/:issueId", issueHandler.DeleteIssue)

	api.Get("/statistics/feedback-issue", statsHandler.GetFeedbackCountByDateByIssue)

	// External ingest routes, API-key authenticated
	external := app.Group("/external", middleware.APIKeyAuth(db))
	external.Post("/channels/:channelName/feedbacks", externalHandler.CreateFeedback)
	external.Post("/channels/:channelName/feedbacks/search", externalHandler.FindFeedbacks)
	external.Get("/channels/:channelName/feedbacks/:feedbackId", externalHandler.GetFeedback)

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

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		if scheduler != nil {
			scheduler.Stop()
		}
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

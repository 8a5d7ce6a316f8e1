package main

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"crewplan/config"
	"crewplan/middleware"
	"crewplan/models"
	"crewplan/routes"
	"crewplan/utils"
	"crewplan/worker"
	"crewplan/ws"
)

func main() {
	if err := config.LoadConfig(); err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	appLog := utils.Logger(config.AppConfig.LogFile)

	if err := config.InitSentry(); err != nil {
		appLog.Fatalf("Failed to initialize sentry: %v", err)
	}

	if err := config.ConnectDB(); err != nil {
		appLog.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.Migrate(config.DB); err != nil {
		appLog.Fatalf("Failed to migrate database: %v", err)
	}
	if config.AppConfig.SeedDemoData {
		if err := models.SeedDemoData(config.DB); err != nil {
			appLog.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	if err := config.ConnectRedis(); err != nil {
		appLog.Fatalf("Failed to connect to redis: %v", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
	})
	app.Use(middleware.CORS())

	hub := ws.NewHub(appLog)
	dispatcher := worker.NewDispatcher(hub, config.Redis, appLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Start(ctx)
	if config.Redis != nil {
		go hub.RunRedisBridge(ctx, config.Redis)
	}

	routes.SetupRoutes(app, config.DB, hub, dispatcher, appLog)

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "running",
			"version": "1.0.0",
		})
	})

	appLog.Printf("Server starting on port %s", config.AppConfig.ServerPort)
	if err := app.Listen(":" + config.AppConfig.ServerPort); err != nil {
		appLog.Fatalf("Failed to start server: %v", err)
	}
}

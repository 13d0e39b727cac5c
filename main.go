package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"

	"actuarial-runner-server/handlers"
	"actuarial-runner-server/middleware"
	"actuarial-runner-server/services"

	_ "actuarial-runner-server/docs"
)

// @title Actuarial Runner API
// @version 1.0
// @description Statistical/actuarial model execution platform API
// @host localhost:8080
// @BasePath /api
func main() {
	// Config
	redisHost := getEnv("REDIS_HOST", "localhost")
	redisPort, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	serverPort := getEnv("SERVER_PORT", "8080")

	// PostgreSQL Config
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	dbUser := getEnv("DB_USER", "atuaria")
	dbPassword := getEnv("DB_PASSWORD", "atuaria")
	dbName := getEnv("DB_NAME", "atuaria")

	// Storage Config
	storageType := getEnv("STORAGE_TYPE", "local")
	storagePath := getEnv("STORAGE_PATH", "/data/artifacts")

	// Runtime Config
	scriptsDir := getEnv("SCRIPTS_DIR", "/opt/models/r")
	workspaceDir := getEnv("WORKSPACE_DIR", "/tmp/model-runs")
	interpreter := getEnv("R_INTERPRETER", "Rscript")
	runLimit, _ := strconv.Atoi(getEnv("RUN_LIMIT", "50"))
	purgeAgeHours, _ := strconv.Atoi(getEnv("PURGE_AGE_HOURS", "6"))

	// Initialize services
	dbService, err := services.NewDBService(dbHost, dbPort, dbUser, dbPassword, dbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbService.Close()

	// Initialize database schema
	if err := dbService.InitSchema(context.Background()); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}
	log.Println("Database schema initialized")

	// Initialize artifact storage
	storageService, err := services.NewStorageService(storageType, storagePath)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	log.Printf("Storage service initialized: %s (%s)", storageType, storagePath)

	// Initialize Redis service
	redisService := services.NewRedisService(redisHost, redisPort)

	// Execution core
	catalogService := services.NewCatalogService(scriptsDir, services.DefaultCatalog())
	validatorService := services.NewValidatorService(catalogService)
	workspaceService, err := services.NewWorkspaceService(workspaceDir)
	if err != nil {
		log.Fatalf("Failed to initialize workspace: %v", err)
	}
	executorService := services.NewExecutorService(interpreter)
	decoderService := services.NewDecoderService(workspaceService)
	enricherService := services.NewEnricherService()
	quotaService := services.NewQuotaService(dbService, runLimit)

	runnerService := services.NewRunnerService(
		catalogService, validatorService, workspaceService,
		executorService, decoderService, enricherService,
	).WithCollaborators(quotaService, dbService, redisService, storageService)

	// Background sweep of stale workspace files
	purgeRunner := services.NewPurgeRunner(workspaceService, time.Duration(purgeAgeHours)*time.Hour)
	purgeRunner.Start()
	defer purgeRunner.Stop()

	// Initialize handlers
	modelHandler := handlers.NewModelHandler(runnerService, catalogService, dbService, redisService)
	accountHandler := handlers.NewAccountHandler(quotaService)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName: "ActuarialRunner",
	})

	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())
	if getEnv("XRAY_ENABLED", "false") == "true" {
		app.Use(middleware.XRayMiddleware())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Api-Key,Authorization",
	}))

	// Swagger
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Health endpoints
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "UP"})
	})

	// API routes
	api := app.Group("/api", middleware.RequireIdentity())

	api.Get("/models", modelHandler.ListModels)
	api.Post("/models/:type/run", modelHandler.RunModel)
	api.Get("/runs", modelHandler.ListRuns)
	api.Get("/runs/:id", modelHandler.GetRun)
	api.Get("/account/usage", accountHandler.GetUsage)

	log.Printf("Actuarial Runner starting on port %s", serverPort)
	log.Printf("Database: %s:%d/%s", dbHost, dbPort, dbName)
	log.Printf("Redis: %s:%d", redisHost, redisPort)
	log.Printf("Scripts: %s (interpreter %s)", scriptsDir, interpreter)
	log.Fatal(app.Listen(":" + serverPort))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

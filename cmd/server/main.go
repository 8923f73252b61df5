package main

import (
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"propwriter/server/config"
	"propwriter/server/internal/analysis"
	"propwriter/server/internal/api"
	"propwriter/server/internal/database"
	"propwriter/server/internal/ingest"
	"propwriter/server/internal/observability"
	"propwriter/server/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.DBPath)
	db, err := database.NewDatabase(cfg.DBPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	metrics := observability.NewMetrics()
	ingester := ingest.NewIngester(db, cfg.Ingest.FeedURL, cfg.Ingest.BatchSize, cfg.Ingest.MaxRetries, logger, metrics)
	analysisService := analysis.NewService(db, logger)

	ingestTimeout := time.Duration(cfg.Ingest.TimeoutSeconds) * time.Second
	sched := scheduler.NewScheduler(ingester, ingestTimeout, logger)
	if err := sched.Start(cfg.Ingest.Schedule); err != nil {
		logger.WithError(err).Fatal("Failed to start ingestion scheduler")
	}
	defer sched.Stop()

	handler := api.NewHandler(db, analysisService, ingester, cfg, logger)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

package main

import (
	"context"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/classifier"
	"github.com/ledgermap/ledgermap-engine/pkg/config"
	"github.com/ledgermap/ledgermap-engine/pkg/database"
	"github.com/ledgermap/ledgermap-engine/pkg/handlers"
	"github.com/ledgermap/ledgermap-engine/pkg/logging"
	"github.com/ledgermap/ledgermap-engine/pkg/pipeline"
	"github.com/ledgermap/ledgermap-engine/pkg/repositories"
	"github.com/ledgermap/ledgermap-engine/pkg/source"
)

// Version is set at build time via ldflags
var Version = "dev"

const migrationsPath = "migrations"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("source", logging.SanitizeConnectionString(cfg.Source.URI)),
		zap.Int("models", len(cfg.AI.Models)))

	ctx := context.Background()

	cfg.Database.Host = config.ResolveHostForDocker(cfg.Database.Host)
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to target database", zap.Error(err))
	}
	defer db.Close()

	migrationDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(migrationDB, migrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	sourceDB, err := database.NewSourceConnection(ctx, cfg.Source.URI, cfg.Source.Database)
	if err != nil {
		logger.Fatal("Failed to connect to source document store", zap.Error(err))
	}
	defer func() { _ = sourceDB.Close(ctx) }()

	docs := source.NewMongoStore(sourceDB.Database(), logger)
	target := repositories.NewTargetStore(db.Pool)
	runs := repositories.NewRunRepository(db.Pool)

	orchestrator := pipeline.New(pipeline.Config{
		SampleSize: cfg.Pipeline.SampleSize,
		BatchSize:  cfg.Pipeline.BatchSize,
		Classifier: classifier.Config{
			Models:      cfg.AI.Models,
			MaxAttempts: cfg.AI.MaxAttempts,
			Backoff:     cfg.AI.Backoff(),
			Temperature: cfg.AI.Temperature,
		},
	}, docs, target, runs, nil, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewMigrationHandler(orchestrator, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting ledgermap-engine",
		zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

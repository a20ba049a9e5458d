package main

import (
	"Coffee-Shop-Backend/cmd/config"
	migration "Coffee-Shop-Backend/cmd/database/migrate"
	"Coffee-Shop-Backend/internal/utils"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	migrateOnly := flag.Bool("migrate", false, "run database migrations and exit")
	fresh := flag.Bool("fresh", false, "drop all drinks, recreate the schema and seed sample data before serving")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.Fatal("connecting database", zap.Error(err))
	}

	switch {
	case *fresh:
		logger.Warn("dropping and recreating drink records")
		err = migration.Fresh(db)
	default:
		err = migration.Migrate(db)
	}
	if err != nil {
		logger.Fatal("migrating database", zap.Error(err))
	}
	logger.Info("database migration complete")
	if *migrateOnly {
		return
	}

	app, err := config.NewApp(config.Dependencies{
		DB:     db,
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("creating app", zap.Error(err))
	}

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("shutting down server", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server exited")
}

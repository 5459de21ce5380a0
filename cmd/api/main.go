package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MediSynth-io/updateservice/internal/api"
	"github.com/MediSynth-io/updateservice/internal/config"
	"github.com/MediSynth-io/updateservice/internal/database"
	"github.com/MediSynth-io/updateservice/internal/logger"
	"github.com/MediSynth-io/updateservice/internal/store"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const version = "0.1.0"

// initializeAPI loads configuration, opens the database and builds the
// router. The returned func releases the database.
func initializeAPI(ctx context.Context, configPath string, boot *zap.SugaredLogger) (*api.Api, *zap.SugaredLogger, func(), error) {
	cfg, err := config.LoadConfig(configPath, boot)
	if err != nil {
		return nil, nil, nil, err
	}

	zl, err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Dev:    cfg.Log.Dev,
		File:   cfg.Log.File,
		MaxAge: cfg.Log.MaxAge,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	lg := zl.Sugar()

	db, err := database.Open(ctx, cfg.Database, lg)
	if err != nil {
		zl.Sync()
		return nil, nil, nil, err
	}

	a, err := api.NewApi(*cfg, store.New(db), lg)
	if err != nil {
		db.Close()
		zl.Sync()
		return nil, nil, nil, err
	}

	cleanup := func() {
		db.Close()
		zl.Sync()
	}
	return a, lg, cleanup, nil
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file, empty for environment only")
	flag.Parse()

	_ = godotenv.Load()

	bootLogger, err := logger.Init(logger.ConfigFromEnv())
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	boot := bootLogger.Sugar()
	boot.Infow("starting update service", "version", version, "config", *configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, lg, cleanup, err := initializeAPI(ctx, *configPath, boot)
	if err != nil {
		boot.Fatalw("failed to initialize API", "error", err)
	}
	defer cleanup()

	if err := a.Serve(ctx); err != nil {
		lg.Errorw("server stopped", "error", err)
		cleanup()
		os.Exit(1)
	}
	lg.Info("server stopped")
}

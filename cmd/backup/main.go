package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MediSynth-io/updateservice/internal/config"
	"github.com/MediSynth-io/updateservice/internal/database"
	"github.com/MediSynth-io/updateservice/internal/logger"
	"github.com/MediSynth-io/updateservice/internal/storage"
	"github.com/MediSynth-io/updateservice/internal/store"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// run performs one mirror pass of the package storage tree.
func run(ctx context.Context, cfg *config.Config, lg *zap.SugaredLogger) error {
	objects, err := storage.NewS3Client(ctx, cfg.Backup)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg.Database, lg)
	if err != nil {
		return err
	}
	defer db.Close()

	m := storage.NewMirror(cfg.Storage.Root, objects, store.New(db), cfg.Backup.PresignExpiry, lg)
	uploaded, skipped, err := m.Run(ctx)
	lg.Infow("mirror pass finished", "uploaded", uploaded, "skipped", skipped, "bucket", cfg.Backup.Bucket)
	return err
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file, empty for environment only")
	flag.Parse()

	_ = godotenv.Load()

	zl, err := logger.Init(logger.ConfigFromEnv())
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zl.Sync()
	lg := zl.Sugar()

	cfg, err := config.LoadConfig(*configPath, lg)
	if err != nil {
		lg.Fatalw("failed to load config", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Errorw("backup failed", "error", err)
		stop()
		zl.Sync()
		os.Exit(1)
	}
}

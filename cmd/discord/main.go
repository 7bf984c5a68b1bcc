package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/keshon/server-warden/datastore"
	"github.com/keshon/server-warden/internal/config"
	"github.com/keshon/server-warden/internal/discord"
	"github.com/keshon/server-warden/internal/health"
	"github.com/keshon/server-warden/internal/logging"
	"github.com/keshon/server-warden/internal/storage"
	"github.com/keshon/server-warden/pkg/jobmgr"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("warden stopped")
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile := logging.Setup(cfg.LogLevel, cfg.LogFile)
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.StorageBackend, err)
	}
	store := storage.New(backend, cfg.DefaultPrefix)
	if err := store.Load(ctx); err != nil {
		log.Warn().Msg("continuing with an empty store")
	}
	defer store.Close()

	jobs := jobmgr.NewManager()
	defer jobs.StopAll()

	bot, err := discord.NewBot(cfg, store, jobs)
	if err != nil {
		return err
	}

	go func() {
		if err := health.New(cfg.Port, jobs).Run(ctx); err != nil {
			log.Error().Err(err).Msg("health server failed")
		}
	}()

	log.Info().Str("backend", cfg.StorageBackend).Msg("starting warden")
	if err := bot.Run(ctx); err != nil {
		return fmt.Errorf("discord bot: %w", err)
	}
	log.Info().Msg("warden exited cleanly")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config) (datastore.Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		return datastore.NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.BackendRedis:
		return datastore.NewRedisStore(ctx, cfg.RedisURL)
	default:
		fileCfg := datastore.DefaultFileConfig(cfg.StoragePath)
		fileCfg.BackupCount = cfg.StorageBackups
		return datastore.NewFileStore(fileCfg)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravadigital/konkatsu-api/internal/config"
	"github.com/gravadigital/konkatsu-api/internal/lock"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/publish"
	"github.com/gravadigital/konkatsu-api/internal/server"
	"github.com/gravadigital/konkatsu-api/internal/services"
	"github.com/gravadigital/konkatsu-api/internal/storage"
)

func main() {
	cfg := config.Load()
	logger.Initialize(cfg.Server.LogLevel)

	if err := run(cfg); err != nil {
		logger.Get().Error("API stopped", "error", err)
		os.Exit(1)
	}
}

// run owns every resource it opens, so its defers always execute before main exits.
func run(cfg *config.Config) error {
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Auth.AdminPasswordHash == "" {
		log.Warn("ADMIN_PASSWORD_HASH is not set; staff login is disabled")
	}

	storageType, err := storage.ValidateStorageType(cfg.Server.StorageType)
	if err != nil {
		return err
	}

	store, err := storage.NewFactory(storageType).CreateContainer(cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", storageType, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()

	locker, closeLocker, err := newLocker(cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	publisher, err := publish.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure seating publisher: %w", err)
	}

	srv := server.New(cfg, store, services.New(store, locker, publisher))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server exited")
	return nil
}

// newLocker uses Redis when REDIS_URL is set so several API replicas share party locks.
func newLocker(cfg *config.Config) (lock.PartyLocker, func(), error) {
	log := logger.Get()
	if cfg.Redis.URL == "" {
		return lock.NewMemoryLocker(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rl, err := lock.NewRedisLockerFromURL(ctx, cfg.Redis.URL, cfg.Redis.LockTTL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Info("Using redis party locks")
	return rl, func() {
		if err := rl.Close(); err != nil {
			log.Error("Failed to close redis client", "error", err)
		}
	}, nil
}

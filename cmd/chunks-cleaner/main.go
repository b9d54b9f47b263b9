package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/messicms/media-service/internal/config"
	"github.com/messicms/media-service/internal/services/chunks"
	"github.com/messicms/media-service/internal/storage/backend"
)

type ChunksCleaner struct {
	chunks   *chunks.Store
	interval time.Duration
	logger   *slog.Logger
}

func NewChunksCleaner(store *chunks.Store, interval time.Duration) *ChunksCleaner {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &ChunksCleaner{
		chunks:   store,
		interval: interval,
		logger:   logger,
	}
}

func (cc *ChunksCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(cc.interval)
	defer ticker.Stop()

	cc.logger.Info("Chunks cleaner started",
		"interval", cc.interval.String(),
		"directory", cc.chunks.Directory())

	// Run once immediately on startup
	cc.sweepExpiredChunks(ctx)

	for {
		select {
		case <-ctx.Done():
			cc.logger.Info("Chunks cleaner shutting down")
			return
		case <-ticker.C:
			cc.sweepExpiredChunks(ctx)
		}
	}
}

func (cc *ChunksCleaner) sweepExpiredChunks(ctx context.Context) {
	startTime := time.Now()

	cc.logger.Info("Starting expired chunks cleanup")

	count, err := cc.chunks.SweepExpired(ctx)
	if err != nil {
		cc.logger.Error("Failed to sweep expired chunks",
			"error", err.Error(),
			"duration_ms", time.Since(startTime).Milliseconds())
		return
	}

	duration := time.Since(startTime)

	cc.logger.Info("Completed expired chunks cleanup",
		"chunks_deleted", count,
		"duration_ms", duration.Milliseconds(),
		"duration", duration.String())
}

func newBackend(cfg *config.Config) (backend.Backend, error) {
	switch cfg.Storage.Driver {
	case "local":
		return backend.NewLocal(cfg.Storage.Local.Root, cfg.Storage.Local.BaseURL)
	case "minio":
		return backend.NewMinIO(cfg.Storage.MinIO)
	default:
		return nil, fmt.Errorf("%w: %s", backend.ErrUnsupportedBackend, cfg.Storage.Driver)
	}
}

func main() {
	// Load config
	cfg := config.MustLoad()

	fileBackend, err := newBackend(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage backend:", err)
	}

	store, err := chunks.New(fileBackend, cfg.Chunk)
	if err != nil {
		log.Fatal("Failed to initialize chunk store:", err)
	}

	interval, err := time.ParseDuration(cfg.Chunk.SweepInterval)
	if err != nil {
		log.Fatal("Invalid sweep interval:", err)
	}

	cleaner := NewChunksCleaner(store, interval)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Received shutdown signal")
		cancel()
	}()

	// Start the cleaner
	cleaner.Start(ctx)

	slog.Info("Chunks cleaner stopped")
}

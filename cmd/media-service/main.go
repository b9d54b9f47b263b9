package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/messicms/media-service/internal/config"
	"github.com/messicms/media-service/internal/events"
	mediaHandlers "github.com/messicms/media-service/internal/http/handlers/media"
	"github.com/messicms/media-service/internal/http/handlers/ws"
	"github.com/messicms/media-service/internal/http/middleware"
	"github.com/messicms/media-service/internal/services/chunks"
	"github.com/messicms/media-service/internal/services/media"
	"github.com/messicms/media-service/internal/services/thumbnail"
	"github.com/messicms/media-service/internal/settings"
	"github.com/messicms/media-service/internal/storage/backend"
	"github.com/messicms/media-service/internal/storage/postgres"
	"github.com/messicms/media-service/internal/websocket"
)

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
	// load config
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// database setup
	db, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	// redis-backed runtime settings
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		slog.Warn("Redis unavailable, runtime settings fall back to static config",
			slog.String("error", err.Error()))
	}
	settingsStore := settings.NewStore(redisClient)

	// storage backend
	fileBackend, err := newBackend(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage backend:", err)
	}
	slog.Info("Storage backend ready", slog.String("driver", cfg.Storage.Driver))

	chunkStore, err := chunks.New(fileBackend, cfg.Chunk)
	if err != nil {
		log.Fatal("Failed to initialize chunk store:", err)
	}

	// websocket hub for media events
	hub := websocket.NewHub()
	go hub.Run()
	publisher := events.NewEventPublisher(hub)

	generator := thumbnail.NewGenerator(fileBackend, settingsStore, cfg, logger)
	mediaSvc := media.NewService(cfg, fileBackend, db, db.Folders(), generator, settingsStore, publisher, logger)

	// setup server
	router := http.NewServeMux()

	router.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Media Service"))
	})

	mh := mediaHandlers.NewMediaHandlers(mediaSvc, db, chunkStore)
	router.HandleFunc("POST /media/files/upload", mh.Upload())
	router.HandleFunc("POST /media/files/upload-from-url", mh.UploadFromURL())
	router.HandleFunc("GET /media/files", mh.List())
	router.Handle("DELETE /media/files/{id}", middleware.RequireAuth(mh.Delete()))
	router.HandleFunc("POST /media/folders", mh.CreateFolder())
	router.HandleFunc("GET /media/url", mh.ResolveURL())
	router.Handle("POST /media/chunks/sweep", middleware.RequireAuth(mh.SweepChunks(publisher)))

	wsh := ws.NewWSHandlers(hub)
	router.HandleFunc("GET /ws", wsh.HandleWebSocket())

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: middleware.Authenticate(cfg.JWTSecret)(router),
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}

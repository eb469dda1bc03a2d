package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrimeme/backend/internal/cache"
	"github.com/agrimeme/backend/internal/comments"
	"github.com/agrimeme/backend/internal/config"
	"github.com/agrimeme/backend/internal/database"
	"github.com/agrimeme/backend/internal/events"
	"github.com/agrimeme/backend/internal/server"
	"github.com/agrimeme/backend/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	db, err := database.New(cfg.DSN(), cfg.DBName)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	var commentCache comments.Cache = comments.NopCache{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		commentCache = cache.NewCommentCache(rdb, cfg.CacheTTL)
		log.Printf("✅ Comment cache enabled (%s, ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
	}

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer publisher.Close()

	srv, err := server.NewServer(cfg, db, commentCache, publisher)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracing shutdown: %v", err)
	}
	if err := db.Close(); err != nil {
		log.Printf("Database close: %v", err)
	}
}

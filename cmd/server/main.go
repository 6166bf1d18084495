package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/draft-guard/internal/api"
	"github.com/ignite/draft-guard/internal/config"
	"github.com/ignite/draft-guard/internal/guard"
	"github.com/ignite/draft-guard/internal/pkg/logger"
	"github.com/ignite/draft-guard/internal/rejection"
	"github.com/ignite/draft-guard/internal/rotation"
	"github.com/ignite/draft-guard/internal/storage"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if _, err := os.Stat(configPath); err != nil {
		// No config file is fine; env vars and defaults carry everything
		configPath = ""
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	ctx := context.Background()

	// Fast tier: Redis, optional
	var fast storage.Store
	if cfg.Storage.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.RedisAddr,
			Password: cfg.Storage.RedisPassword,
			DB:       cfg.Storage.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout())
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis unreachable, running on durable store only", "addr", cfg.Storage.RedisAddr, "error", err.Error())
		} else {
			fast = storage.NewRedisStore(client, cfg.Memory.Retention())
			logger.Info("fast store connected", "addr", cfg.Storage.RedisAddr)
		}
		cancel()
	}

	// Durable tier: Postgres when configured, local files otherwise
	var durable storage.Store
	if cfg.Storage.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.Storage.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		pg, err := storage.NewPostgresStore(ctx, db)
		if err != nil {
			log.Fatalf("Failed to initialize postgres store: %v", err)
		}
		durable = pg
		logger.Info("durable store ready", "backend", "postgres")
	} else {
		fs, err := storage.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("Failed to initialize file store: %v", err)
		}
		durable = fs
		logger.Info("durable store ready", "backend", "file", "dir", cfg.Storage.DataDir)
	}

	dual := storage.NewDualStore(fast, durable, cfg.Storage.Timeout())

	mem := rejection.New(dual, rejection.Config{
		Retention:       cfg.Memory.Retention(),
		MaxRejections:   cfg.Memory.MaxRejections,
		MaxSubjects:     cfg.Memory.MaxSubjects,
		MaxFingerprints: cfg.Memory.MaxFingerprints,
		MaxFeedback:     cfg.Memory.MaxFeedback,
	})
	g := guard.New(mem, cfg.Guard.Enabled, guard.ParseMode(cfg.Guard.Mode))
	selector := rotation.NewSelector(mem)

	handlers := api.NewHandlers(g, mem, selector, rotation.DefaultCatalog)
	server := api.NewServer(handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	logger.Info("draft guard listening",
		"addr", addr,
		"guard_enabled", fmt.Sprintf("%t", cfg.Guard.Enabled),
		"guard_mode", cfg.Guard.Mode)

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe(addr) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err.Error())
		}
	}
}

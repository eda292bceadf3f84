package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/courtside/internal/api/rest"
	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/store"
)

const (
	serviceName    = "courtside"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting service", "service", serviceName, "version", serviceVersion)

	db, err := store.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("failed to connect to database", "driver", cfg.DatabaseDriver, "error", err)
	}
	defer db.Close()
	log.Info("connected to database", "driver", db.Driver())

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("failed to run database migrations", "error", err)
	}
	log.Info("database migrations applied")

	opts := rest.Options{CacheTTL: cfg.CacheTTL}
	if cfg.RedisURL != "" {
		redisCache := connectRedis(cfg.RedisURL, log)
		defer redisCache.Close()

		opts.Cache = redisCache
		opts.CacheHealth = redisCache.HealthCheck
		opts.Publisher = publisher.NewRedisStreamPublisher(redisCache.Client())
		log.Info("connected to Redis", "stream", publisher.StatsStream)
	} else {
		log.Warn("REDIS_URL not set, caching and stat events are disabled")
	}

	handler := rest.NewHandler(db, opts, log)
	restServer := rest.NewServer(cfg.RESTPort, handler, log)
	go func() {
		log.Info("starting REST API server", "port", cfg.RESTPort)
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("REST server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	log.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Error("REST API server shutdown error", "error", err)
	}

	log.Info("stopped", "service", serviceName)
}

// connectRedis retries while Redis comes up alongside the service.
func connectRedis(url string, log *logger.Logger) *cache.RedisCache {
	const (
		maxRetries = 30
		retryDelay = 2 * time.Second
	)

	for i := 0; ; i++ {
		redisCache, err := cache.NewRedisCache(url)
		if err == nil {
			return redisCache
		}
		if i == maxRetries-1 {
			log.Fatal("failed to connect to Redis", "attempts", maxRetries, "error", err)
		}
		log.Warn("Redis connection attempt failed", "attempt", i+1, "max", maxRetries, "retry_in", retryDelay, "error", err)
		time.Sleep(retryDelay)
	}
}

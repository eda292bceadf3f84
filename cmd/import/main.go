package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fortuna/courtside/internal/cache"
	"github.com/fortuna/courtside/internal/config"
	"github.com/fortuna/courtside/internal/ingest"
	"github.com/fortuna/courtside/internal/ingest/boxhtml"
	"github.com/fortuna/courtside/internal/ingest/espn"
	"github.com/fortuna/courtside/internal/logger"
	"github.com/fortuna/courtside/internal/publisher"
	"github.com/fortuna/courtside/internal/service"
	"github.com/fortuna/courtside/internal/store"
)

const (
	appName    = "courtside-import"
	appVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	var (
		espnIDs     = flag.String("espn", "", "Comma-separated ESPN event IDs")
		espnBase    = flag.String("espn-url", cfg.ESPNAPIBase, "ESPN API base URL")
		htmlFiles   = flag.String("html", "", "Comma-separated saved box-score HTML files")
		pageURLs    = flag.String("url", "", "Comma-separated box-score page URLs")
		render      = flag.Bool("render", false, "Render -url pages in headless Chrome before parsing")
		concurrency = flag.Int("concurrency", cfg.ImportConcurrency, "Box scores imported in parallel")
	)
	flag.Parse()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting import", "app", appName, "version", appVersion)

	var renderer *boxhtml.Renderer
	if *render {
		renderer = boxhtml.NewRenderer()
		defer renderer.Close()
	}
	sources := buildSources(espn.New(*espnBase, nil), renderer, *espnIDs, *htmlFiles, *pageURLs)
	if len(sources) == 0 {
		log.Fatal("specify -espn, -html or -url")
	}

	db, err := store.NewDatabase(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("connect database", "error", err)
	}
	defer db.Close()
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("migrate database", "error", err)
	}

	// Imports share the server's cache and stream so its aggregates stay
	// current without waiting for the TTL.
	statsCache, events := service.NopCache(), service.NopPublisher()
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Fatal("connect Redis", "error", err)
		}
		defer redisCache.Close()
		statsCache = redisCache
		events = publisher.NewRedisStreamPublisher(redisCache.Client())
	}

	stats := service.NewStatsService(db, statsCache, cfg.CacheTTL, events, log)
	runner := ingest.NewRunner(ingest.NewImporter(db, stats, log), *concurrency)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := runner.Run(ctx, sources, &consoleReporter{log: log}); err != nil {
		log.Fatal("import failed", "error", err)
	}
	log.Info("import completed")
}

func buildSources(client *espn.Client, renderer *boxhtml.Renderer, espnIDs, htmlFiles, pageURLs string) []ingest.Source {
	var sources []ingest.Source
	for _, id := range splitList(espnIDs) {
		sources = append(sources, espn.NewSource(client, id))
	}
	for _, path := range splitList(htmlFiles) {
		sources = append(sources, boxhtml.FileSource{Path: path})
	}
	for _, url := range splitList(pageURLs) {
		if renderer != nil {
			sources = append(sources, boxhtml.RenderedSource{URL: url, Renderer: renderer})
			continue
		}
		sources = append(sources, boxhtml.URLSource{URL: url})
	}
	return sources
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type consoleReporter struct {
	log *logger.Logger
}

func (c *consoleReporter) OnRunStart(total int) {
	c.log.Info("importing box scores", "total", total)
}

func (c *consoleReporter) OnImported(source string, res *ingest.Result) {
	c.log.Info("imported", "source", source, "game_id", res.GameID, "new_game", res.GameCreated, "players", res.Players)
}

func (c *consoleReporter) OnFailed(source string, err error) {
	c.log.Error("import error", "source", source, "error", err)
}

func (c *consoleReporter) OnRunComplete(imported, failed int) {
	c.log.Info("run complete", "imported", imported, "failed", failed)
}

// Command prefetch runs a single cache-warming pass over all registered
// stations and the configured day horizon, then exits. It is meant for cron
// or manual runs ahead of user traffic.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/yunseo-dev/weatherdish/internal/config"
	"github.com/yunseo-dev/weatherdish/internal/log"
	"github.com/yunseo-dev/weatherdish/internal/prefetch"
	"github.com/yunseo-dev/weatherdish/internal/store"
	"github.com/yunseo-dev/weatherdish/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := log.Init(cfg.Debug); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	fileStore := store.NewFileStore(cfg.CacheFile)
	client := weather.NewClient(httpClient, cfg.KMAServiceKey)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stats := prefetch.New(fileStore, client, cfg.PrefetchDays).Run(ctx)
	log.Infof("prefetch complete: fetched=%d skipped=%d failed=%d",
		stats.Fetched, stats.Skipped, stats.Failed)

	if stats.Fetched == 0 && stats.Failed > 0 {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"os"

	"cheesemate/internal/app"
	"cheesemate/internal/config"
	"cheesemate/internal/logger"
	"cheesemate/internal/scraper"
)

// Runs the full catalog ingestion: scrape the storefront, enrich every
// product with a generated summary, embed, and upsert into the index.
// Set REUSE_RAW=true to skip the browser and re-ingest the persisted
// catalog file instead.
func main() {
	slog.SetDefault(slog.New(logger.NewContextHandler(slog.NewJSONHandler(os.Stdout, nil))))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	deps, err := app.Bootstrap(cfg)
	if err != nil {
		slog.Error("failed to bootstrap", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	reuseRaw := os.Getenv("REUSE_RAW") == "true"

	var driver scraper.Driver
	if !reuseRaw {
		driver, err = scraper.NewChromeDriver(ctx, cfg.ScrapeHeadless)
		if err != nil {
			slog.Error("failed to start render session", "error", err)
			os.Exit(1)
		}
	}

	pipeline := app.NewIngestPipeline(cfg, deps, driver, reuseRaw)
	stats, err := pipeline.Run(ctx)
	if err != nil {
		slog.Error("ingestion failed", "error", err, "stats", stats)
		os.Exit(1)
	}

	slog.Info("ingestion finished",
		"scraped", stats.Scraped,
		"enriched", stats.Enriched,
		"embedded", stats.Embedded,
		"upserted", stats.Upserted,
	)
}

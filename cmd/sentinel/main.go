package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Houeta/price-sentinel/internal/catalog"
	"github.com/Houeta/price-sentinel/internal/config"
	"github.com/Houeta/price-sentinel/internal/logger"
	"github.com/Houeta/price-sentinel/internal/metrics"
	"github.com/Houeta/price-sentinel/internal/notifier"
	"github.com/Houeta/price-sentinel/internal/repository/postgres"
	"github.com/Houeta/price-sentinel/internal/scraper"
	"github.com/Houeta/price-sentinel/internal/services/monitor"
)

// main runs one monitoring batch: sync the catalog, check every product,
// exit. Scheduling is external (cron or similar).
func main() {
	// Create a context that will be canceled when an interrupt signal is
	// received, so a half-finished batch can stop cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logg := logger.Setup(cfg.Env)

	repo, err := postgres.NewRepository(ctx, logg, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to init repository: %v", err)
	}
	defer repo.Close()

	tg, err := notifier.NewTelegram(logg, cfg.Tg.Token, cfg.Tg.ChatID, cfg.Tg.Timeout)
	if err != nil {
		log.Fatalf("Failed to init notifier: %v", err)
	}

	metrics.StartServer(logg, cfg.HTTP.MetricsPort)

	sentinel := monitor.NewMonitor(
		logg,
		catalog.NewClient(logg, cfg.CatalogURL()),
		repo,
		scraper.NewScraper(logg, cfg.Scrape.Timeout),
		tg,
		cfg.MinPctChange,
	)

	logg.InfoContext(ctx, "Starting monitoring run", "store", cfg.StoreName)

	summary, err := sentinel.Run(ctx)
	if err != nil {
		logg.ErrorContext(ctx, "Monitoring run failed", "error", err)
		repo.Close()
		os.Exit(1)
	}

	logg.InfoContext(ctx, "Monitoring run finished",
		"checked", summary.Checked, "changed", summary.Changed, "failed", summary.Failed)
}

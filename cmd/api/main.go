package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Houeta/price-sentinel/internal/api"
	"github.com/Houeta/price-sentinel/internal/config"
	"github.com/Houeta/price-sentinel/internal/logger"
	"github.com/Houeta/price-sentinel/internal/repository/postgres"
)

const shutdownTimeout = 5 * time.Second

// main serves the read-only dashboard API.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logg := logger.Setup(cfg.Env)

	repo, err := postgres.NewRepository(ctx, logg, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to init repository: %v", err)
	}
	defer repo.Close()

	handler := api.NewHandler(logg, repo, cfg.StoreName)
	router := api.NewRouter(logg, handler, cfg.HTTP.CORSOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logg.InfoContext(ctx, "API server starting", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve API: %v", err)
		}
	}()

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()
	logg.Info("Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("Failed to shut down server gracefully", "error", err)
	}

	logg.Info("Application stopped gracefully.")
}

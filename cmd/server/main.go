package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/baxromumarov/job-tracker/internal/api"
	"github.com/baxromumarov/job-tracker/internal/config"
	"github.com/baxromumarov/job-tracker/internal/httpx"
	"github.com/baxromumarov/job-tracker/internal/scraper"
	"github.com/baxromumarov/job-tracker/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dbStore, err := store.NewStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to store", "error", err)
		os.Exit(1)
	}
	defer dbStore.Close()

	if err := dbStore.RunMigrations(cfg.SchemaPath); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// One fetcher shares the per-host limiters between parse-job and the feed.
	fetcher := httpx.NewCollyFetcher(cfg.FetcherOptions())
	parser := scraper.NewParser(fetcher)
	feed := scraper.NewRemoteOKFeed(fetcher, cfg.RemoteOKURL)

	srv := api.NewServer(dbStore, parser, feed, cfg.CORSOrigins)

	slog.Info("starting server", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

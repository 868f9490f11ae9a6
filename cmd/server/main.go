package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"olist-insights/internal/config"
	"olist-insights/internal/dataset"
	"olist-insights/internal/httpx"
	"olist-insights/internal/obs"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("config", slog.String("err", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	start := time.Now()
	ds, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		logger.Error("load dataset", slog.String("path", cfg.DatasetPath), slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.Info("dataset loaded", slog.Int("rows", ds.Len()), slog.Duration("took", time.Since(start)))

	m := obs.New()
	m.DatasetRows.Set(float64(ds.Len()))
	m.DatasetLoadSec.Set(time.Since(start).Seconds())

	r := httpx.NewRouter(logger, ds, m, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: cfg.ReadTimeout,
	}

	logger.Info("starting server", slog.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

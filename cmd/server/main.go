package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/web3-frozen/traffic-dashboard/internal/config"
	"github.com/web3-frozen/traffic-dashboard/internal/handler"
	"github.com/web3-frozen/traffic-dashboard/internal/history"
	"github.com/web3-frozen/traffic-dashboard/internal/middleware"
	"github.com/web3-frozen/traffic-dashboard/internal/traffic"
	"github.com/web3-frozen/traffic-dashboard/internal/traffic/sources"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	creds := cfg.Credentials()
	logger.Info("traffic mode resolved", "mode", traffic.ResolveMode(creds).String())

	// Recent lookups (optional)
	var (
		recent  *history.Recent
		opts    []traffic.Option
		lister  handler.RecentLister
		clearer handler.RecentClearer
		pingers []handler.Pinger
	)
	if cfg.RedisURL != "" {
		recent, err = history.New(cfg.RedisURL, cfg.RedisPassword, cfg.RecentLookupsLimit)
		if err != nil {
			logger.Warn("redis unavailable, recent lookups disabled", "error", err)
		} else {
			defer recent.Close()
			opts = append(opts, traffic.WithRecorder(recent))
			lister = recent
			clearer = recent
			pingers = append(pingers, recent)
			logger.Info("redis connected for recent lookups")
		}
	}

	svc := traffic.NewService(creds,
		sources.NewSynthetic(cfg.SyntheticDelay),
		sources.NewProvider(sources.ProviderConfig{
			Credentials: creds,
			Scheme:      cfg.TrafficAPIScheme,
			Method:      cfg.TrafficAPIMethod,
			Path:        cfg.TrafficAPIPath,
			DomainParam: cfg.TrafficAPIDomainParam,
			Timeout:     cfg.TrafficAPITimeout,
		}),
		logger,
		opts...,
	)

	// HTTP routes
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.FrontendOrigin))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", handler.Health())
	r.Get("/readyz", handler.Ready(pingers...))

	r.Route("/api", func(r chi.Router) {
		r.Post("/traffic", handler.LookupTraffic(svc, logger))
		r.Get("/traffic", handler.GetTraffic(svc))
		r.Get("/recent", handler.Recent(lister, logger))
		r.Delete("/recent", handler.ClearRecent(clearer, logger))
		r.Get("/meta", handler.Meta(svc))
	})

	// WriteTimeout leaves room for the synthetic delay and a slow provider.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}

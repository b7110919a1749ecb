// Package main wires together the shorts-radar service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dotblossom/shorts-radar/internal/api"
	"github.com/dotblossom/shorts-radar/internal/config"
	"github.com/dotblossom/shorts-radar/internal/fetcher/headless"
	"github.com/dotblossom/shorts-radar/internal/logging"
	"github.com/dotblossom/shorts-radar/internal/metadata"
	"github.com/dotblossom/shorts-radar/internal/metrics"
	"github.com/dotblossom/shorts-radar/internal/notifier"
	"github.com/dotblossom/shorts-radar/internal/shorts"
	"github.com/dotblossom/shorts-radar/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewShortsStore(ctx, postgres.StoreConfig{
		DSN:            cfg.DB.DSN,
		Table:          cfg.DB.Table,
		MaxConns:       cfg.DB.MaxConns,
		MinConns:       cfg.DB.MinConns,
		InitRetries:    cfg.DB.InitRetries,
		InitRetryDelay: cfg.DB.InitRetryDelay(),
	}, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		logger.Fatal("database not ready", zap.Error(err))
	}

	fetcher := headless.New(headless.Config{
		UserAgent:         cfg.Browser.UserAgent,
		NavigationTimeout: time.Duration(cfg.Browser.NavTimeoutSeconds) * time.Second,
		SettleDelay:       time.Duration(cfg.Browser.SettleSeconds) * time.Second,
		ScrollCount:       cfg.Browser.ScrollCount,
		ScrollPause:       time.Duration(cfg.Browser.ScrollPauseSeconds) * time.Second,
		MaxSessions:       cfg.Browser.MaxSessions,
	}, logger)
	defer fetcher.Close()

	meta := metadata.NewClient(metadata.Config{
		APIKey:  cfg.YouTube.APIKey,
		BaseURL: cfg.YouTube.BaseURL,
		Timeout: time.Duration(cfg.YouTube.TimeoutSeconds) * time.Second,
		QPS:     cfg.YouTube.QPS,
	}, logger)

	notify := notifier.NewClient(notifier.Config{
		BaseURL: cfg.Notifier.BaseURL,
		Timeout: time.Duration(cfg.Notifier.TimeoutSeconds) * time.Second,
	}, logger)

	shortsCfg := shorts.ShortFormConfig()
	shortsCfg.MaxResults = cfg.Search.MaxResults
	shortsCfg.MaxRetries = cfg.Search.MaxRetries
	shortsCfg.MinSurvivors = cfg.Search.MinSurvivors
	shortsCfg.TopN = cfg.Search.TopN

	standardCfg := shorts.StandardConfig()
	standardCfg.MaxResults = cfg.Search.StandardMaxResults

	shortsPipeline := shorts.NewPipeline(fetcher, meta, shortsCfg, logger)
	videosPipeline := shorts.NewPipeline(fetcher, meta, standardCfg, logger)
	persister := shorts.NewPersister(store, notify, logger)

	server := api.NewServer(shortsPipeline, videosPipeline, persister, store, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}
}

// Package main provides the API server entry point for the pool reporter
// service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pool-reporter/internal/api"
	"github.com/pool-reporter/internal/config"
	"github.com/pool-reporter/internal/indexer"
	"github.com/pool-reporter/internal/logging"
	"github.com/pool-reporter/internal/report"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("Failed to load configuration")
	}

	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"pool":    cfg.Pool.ID,
		"indexer": cfg.Indexer.URL,
	}).Info("Starting pool reporter")

	// The Redis raw-response cache is optional; without it every report
	// derivation hits the indexer directly.
	var indexerOpts []indexer.Option
	if cfg.Redis.Host != "" {
		cache, err := indexer.NewRedisCache(&cfg.Redis)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, raw responses will not be cached")
		} else {
			defer cache.Close()
			indexerOpts = append(indexerOpts, indexer.WithRawCache(cache, cfg.Cache.RawTTL))
			logger.Info("Raw response cache enabled")
		}
	}

	client := indexer.NewClient(cfg.Indexer, indexerOpts...)

	reports := report.NewReports(cfg.Pool.ID, client,
		report.WithCacheTTL(cfg.Cache.ReportTTL),
		report.WithLogger(logger),
	)

	server := api.NewServer(&cfg.Server, cfg.Pool.ID, reports, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.WithError(err).Fatal("Server failed")
	case sig := <-stop:
		logger.WithField("signal", sig.String()).Info("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}

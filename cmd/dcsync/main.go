// Command dcsync periodically fetches enriched Data Commons rows for a
// configured query and publishes them to Kafka.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/datacommons-client/internal/adapter/datacommons"
	httpadapter "github.com/couchcryptid/datacommons-client/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/datacommons-client/internal/adapter/kafka"
	"github.com/couchcryptid/datacommons-client/internal/config"
	"github.com/couchcryptid/datacommons-client/internal/observability"
	"github.com/couchcryptid/datacommons-client/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateSync(); err != nil {
		slog.Error("invalid sync config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	source := datacommons.NewClient(cfg.APIRoot, cfg.APITimeout, logger, metrics)
	client := pipeline.NewClient(source, cfg.FacetOverride, logger, metrics)
	writer := kafkaadapter.NewWriter(cfg, logger)

	syncer := pipeline.NewSyncer(client, writer, pipeline.RowsParams{
		Selector:           cfg.Selector(),
		Variables:          cfg.Variables,
		Date:               cfg.Date,
		PerCapitaVariables: cfg.PerCapitaVariables,
	}, cfg.SyncInterval, logger, metrics, nil)

	srv := httpadapter.NewServer(cfg.HTTPAddr, syncer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := syncer.Run(ctx); err != nil {
			logger.Error("sync error", "error", err)
		}
	}()

	logger.Info("dcsync started", "api_root", source.APIRoot(), "topic", cfg.KafkaSinkTopic)
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"findash/internal/amqp"
	"findash/internal/backend"
	"findash/internal/cli"
	"findash/internal/export"
	"findash/internal/log"
	"findash/internal/services"
	"findash/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the export worker")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	opts := export.Options{
		DateLayout:   cfg.ExportDateLayout,
		EscapeQuotes: cfg.ExportEscapeQuotes,
		Delay:        cfg.ExportDelay,
	}
	service := services.NewExportService(result.Store, result.Store, nil, opts,
		export.WithLogger(logger.WithComponent(log.ComponentExport)))
	exportWorker := worker.NewExportWorker(service, export.NewFileSink(cfg.ExportDir))

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close failed", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}
	})

	logger.Info("Starting findash-worker", "queue", cfg.AMQPQueue, "export_dir", cfg.ExportDir)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeExportRequests(gctx, exportWorker.HandleExportRequest)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/adapter/archive"
	httpadapter "github.com/couchcryptid/rainfall-anomaly-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/rainfall-anomaly-service/internal/adapter/kafka"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/adapter/rasterhttp"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/config"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/observability"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/pipeline"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A .env file is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	scenario := config.DefaultScenario()
	if cfg.ScenarioPath != "" {
		scenario, err = config.LoadScenario(cfg.ScenarioPath)
		if err != nil {
			logger.Error("failed to load scenario", "path", cfg.ScenarioPath, "error", err)
			return 1
		}
	}
	req, err := buildRequest(scenario)
	if err != nil {
		logger.Error("invalid scenario", "error", err)
		return 1
	}

	source, err := newSource(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to open raster source", "error", err)
		return 1
	}

	// Report publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher pipeline.ReportPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaReportTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	clock := clockwork.NewRealClock()
	analyzer := pipeline.NewAnalyzer(source, cfg.BaselineWorkers, clock, logger, metrics)
	svc := pipeline.NewService(analyzer, publisher, req, cfg.AnalysisInterval, clock, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the analysis loop. In single-run mode it returns after one report.
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	exitCode := 0
	select {
	case <-ctx.Done():
		<-done
	case err := <-done:
		if err != nil {
			logger.Error("anomaly service error", "error", err)
			exitCode = 1
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return exitCode
}

func buildRequest(s config.Scenario) (pipeline.Request, error) {
	region, err := s.DomainRegion()
	if err != nil {
		return pipeline.Request{}, err
	}
	current, err := s.CurrentWindow()
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Region:           region,
		BaselineStart:    s.Baseline.Start,
		BaselineEnd:      s.Baseline.End,
		Current:          current,
		HistogramBuckets: s.HistogramBuckets,
	}, nil
}

func newSource(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (pipeline.RasterSource, error) {
	if cfg.RasterSource == config.SourceHTTP {
		client := rasterhttp.NewClient(cfg.ArchiveURL, cfg.ArchiveToken, cfg.ArchiveTimeout, cfg.ArchiveRetries, logger, metrics)
		logger.Info("raster source: http archive", "url", cfg.ArchiveURL, "cache_size", cfg.ArchiveCacheSize, "timeout", cfg.ArchiveTimeout)
		return rasterhttp.NewCachedSource(client, cfg.ArchiveCacheSize, metrics), nil
	}

	a, err := archive.Load(cfg.ArchivePath)
	if err != nil {
		return nil, err
	}
	series := a.Series()
	logger.Info("raster source: file archive", "path", cfg.ArchivePath, "images", series.Len(), "grid", series.Grid().String())
	return a, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Raster source kinds accepted by RASTER_SOURCE.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers     []string
	KafkaReportTopic string
	KafkaEnabled     bool

	// Raster archive configuration.
	RasterSource     string
	ArchivePath      string
	ArchiveURL       string
	ArchiveToken     string
	ArchiveTimeout   time.Duration
	ArchiveRetries   int
	ArchiveCacheSize int

	ScenarioPath     string
	AnalysisInterval time.Duration // 0 runs a single analysis
	BaselineWorkers  int           // 0 uses runtime.NumCPU
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	archiveTimeout, err := parsePositiveDuration("ARCHIVE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	interval, err := time.ParseDuration(sharedcfg.EnvOrDefault("ANALYSIS_INTERVAL", "24h"))
	if err != nil || interval < 0 {
		return nil, errors.New("invalid ANALYSIS_INTERVAL: must be a non-negative duration")
	}

	archiveRetries, err := parseInt("ARCHIVE_RETRIES", 3, 0)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("ARCHIVE_CACHE_SIZE", 64, 1)
	if err != nil {
		return nil, err
	}
	workers, err := parseInt("BASELINE_WORKERS", 0, 0)
	if err != nil {
		return nil, err
	}

	brokers := sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:     brokers,
		KafkaReportTopic: sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "rainfall-anomaly-reports"),
		KafkaEnabled:     kafkaEnabled,

		RasterSource:     sharedcfg.EnvOrDefault("RASTER_SOURCE", SourceFile),
		ArchivePath:      sharedcfg.EnvOrDefault("ARCHIVE_PATH", "data/mock/chirps_pentad_archive.json"),
		ArchiveURL:       os.Getenv("ARCHIVE_URL"),
		ArchiveToken:     os.Getenv("ARCHIVE_TOKEN"),
		ArchiveTimeout:   archiveTimeout,
		ArchiveRetries:   archiveRetries,
		ArchiveCacheSize: cacheSize,

		ScenarioPath:     os.Getenv("SCENARIO_PATH"),
		AnalysisInterval: interval,
		BaselineWorkers:  workers,
	}

	switch cfg.RasterSource {
	case SourceFile:
		if cfg.ArchivePath == "" {
			return nil, errors.New("ARCHIVE_PATH is required")
		}
	case SourceHTTP:
		if cfg.ArchiveURL == "" {
			return nil, errors.New("RASTER_SOURCE is http but ARCHIVE_URL is not set")
		}
	default:
		return nil, fmt.Errorf("invalid RASTER_SOURCE %q: must be %s or %s", cfg.RasterSource, SourceFile, SourceHTTP)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaReportTopic == "" {
		return nil, errors.New("KAFKA_REPORT_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseInt(key string, fallback, minimum int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < minimum {
		return 0, fmt.Errorf("invalid %s: must be an integer >= %d", key, minimum)
	}
	return n, nil
}

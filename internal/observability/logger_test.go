package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"})
	require.NotNil(t, logger)

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewLogger_DefaultsToInfo(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := NewLogger(&config.Config{LogLevel: "verbose", LogFormat: "json"})
	require.NotNil(t, logger)

	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}

func TestNewMetricsForTesting(t *testing.T) {
	m := NewMetricsForTesting()
	require.NotNil(t, m)

	m.AnalysesTotal.WithLabelValues("success").Inc()
	m.StageDuration.WithLabelValues("baseline").Observe(0.5)
	m.SourceCache.WithLabelValues("hit").Inc()
	m.ImagesFetched.WithLabelValues("baseline").Add(72)
	m.ServiceRunning.Set(1)
}

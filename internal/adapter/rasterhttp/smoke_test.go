//go:build rasterhttp

package rasterhttp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit a live raster archive and require ARCHIVE_URL (and
// ARCHIVE_TOKEN when the endpoint is protected).
// Run with: go test -tags=rasterhttp ./internal/adapter/rasterhttp/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	baseURL := os.Getenv("ARCHIVE_URL")
	if baseURL == "" {
		t.Fatal("ARCHIVE_URL must be set to run smoke tests")
	}
	return &Client{
		token:      os.Getenv("ARCHIVE_TOKEN"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		retries:    2,
		backoff:    500 * time.Millisecond,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_FilterOneMonth(t *testing.T) {
	c := smokeClient(t)
	region, err := domain.RegionFromBound("india", 68, 6, 97, 37)
	require.NoError(t, err)

	window := domain.TimeRange{
		Start: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC),
	}
	series, err := c.Filter(context.Background(), window, &region)
	require.NoError(t, err)

	// Six pentads per month.
	assert.Equal(t, 6, series.Len())
	assert.Equal(t, domain.DefaultCRS, series.Grid().CRS)
}

func TestSmoke_CachedSource(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedSource(c, 10, observability.NewMetricsForTesting())

	r1, err := cached.Filter(context.Background(), domain.YearRange(2022), nil)
	require.NoError(t, err)
	r2, err := cached.Filter(context.Background(), domain.YearRange(2022), nil)
	require.NoError(t, err)
	assert.Equal(t, r1.Len(), r2.Len())
	assert.Equal(t, 72, r1.Len())
}

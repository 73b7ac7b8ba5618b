// Package rasterhttp fetches rainfall rasters from a remote archive service.
package rasterhttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/adapter/archive"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
)

const maxRetryBackoff = 5 * time.Second

// Client implements pipeline.RasterSource against an HTTP archive endpoint
// serving archive documents at GET {base}/images.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	retries    int
	backoff    time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a raster archive client. Each request is bounded by
// timeout; network errors and 5xx/429 responses are retried up to retries
// times with exponential backoff.
func NewClient(baseURL, token string, timeout time.Duration, retries int, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		retries: retries,
		backoff: 200 * time.Millisecond,
		logger:  logger,
		metrics: metrics,
	}
}

// Filter fetches the images dated within window whose footprint intersects
// region.
func (c *Client) Filter(ctx context.Context, window domain.TimeRange, region *domain.Region) (domain.TimeSeries, error) {
	params := url.Values{
		"start": {window.Start.UTC().Format(time.DateOnly)},
		"end":   {window.End.UTC().Format(time.DateOnly)},
	}
	if region != nil {
		b := region.Bound()
		params.Set("bbox", formatBBox(b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()))
	}

	doc, err := c.fetchWithRetry(ctx, c.baseURL+"/images?"+params.Encode())
	if err != nil {
		return domain.TimeSeries{}, err
	}
	series, err := doc.Series()
	if err != nil {
		return domain.TimeSeries{}, fmt.Errorf("invalid archive response: %w", err)
	}
	c.logger.Debug("raster images fetched", "window", window.String(), "images", series.Len())
	return series, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, fullURL string) (archive.Document, error) {
	backoff := c.backoff
	for attempt := 0; ; attempt++ {
		doc, err := c.doRequest(ctx, fullURL)
		if err == nil {
			c.metrics.SourceRequests.WithLabelValues("success").Inc()
			return doc, nil
		}

		var re *retryableError
		if !errors.As(err, &re) || attempt >= c.retries || ctx.Err() != nil {
			c.metrics.SourceRequests.WithLabelValues("error").Inc()
			return archive.Document{}, err
		}

		c.metrics.SourceRequests.WithLabelValues("retry").Inc()
		c.logger.Warn("raster request failed, retrying", "error", err, "attempt", attempt+1, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return archive.Document{}, ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxRetryBackoff)
	}
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (archive.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return archive.Document{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.SourceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return archive.Document{}, &retryableError{err: fmt.Errorf("raster request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("raster API error: status %d: %s", resp.StatusCode, body)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			return archive.Document{}, &retryableError{err: err}
		}
		return archive.Document{}, err
	}

	doc, err := archive.Decode(resp.Body)
	if err != nil {
		return archive.Document{}, fmt.Errorf("decode response: %w", err)
	}
	return doc, nil
}

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func formatBBox(minLon, minLat, maxLon, maxLat float64) string {
	parts := []float64{minLon, minLat, maxLon, maxLat}
	out := make([]string, len(parts))
	for i, v := range parts {
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(out, ",")
}

package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/rainfall-anomaly-service/internal/domain"
	"github.com/couchcryptid/rainfall-anomaly-service/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// ReportAnalyzer produces an anomaly report for a request.
type ReportAnalyzer interface {
	Analyze(ctx context.Context, req Request) (Report, error)
}

// ReportPublisher delivers finished reports downstream.
type ReportPublisher interface {
	Publish(ctx context.Context, report Report) error
}

// Service runs analyses on a fixed interval and publishes the reports.
type Service struct {
	analyzer  ReportAnalyzer
	publisher ReportPublisher
	request   Request
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	latest    atomic.Pointer[Report]
}

// NewService creates a Service. A nil publisher keeps reports local. An
// interval of zero runs a single successful analysis and returns. When the
// request has no current window, each run analyzes the previous calendar year.
func NewService(analyzer ReportAnalyzer, publisher ReportPublisher, req Request, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		analyzer:  analyzer,
		publisher: publisher,
		request:   req,
		interval:  interval,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once an analysis has completed, or an error
// describing why the service is not yet ready.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no anomaly report has been produced yet")
	}
	return nil
}

// Latest returns the most recent report.
func (s *Service) Latest() (Report, bool) {
	r := s.latest.Load()
	if r == nil {
		return Report{}, false
	}
	return *r, true
}

// Run executes the analysis loop until the context is cancelled. Source and
// publish failures are retried with exponential backoff; other failures wait
// for the next interval. In single-run mode the first non-retryable error is
// returned.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("anomaly service started", "interval", s.interval)
	s.metrics.ServiceRunning.Set(1)
	defer s.metrics.ServiceRunning.Set(0)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			s.logger.Info("anomaly service stopping", "reason", ctx.Err())
			return nil
		}

		err := s.runOnce(ctx)
		if err != nil && ctx.Err() != nil {
			s.logger.Info("anomaly service stopping", "reason", ctx.Err())
			return nil
		}
		if err != nil && retryable(err) {
			s.logger.Error("analysis failed, retrying", "error", err, "backoff", backoff)
			if !sleepWithContext(ctx, s.clock, backoff) {
				return nil
			}
			backoff = retry.NextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = initialBackoff

		if err != nil {
			s.logger.Error("analysis failed", "error", err)
			if s.interval <= 0 {
				return err
			}
		}
		if s.interval <= 0 {
			return nil
		}
		if !sleepWithContext(ctx, s.clock, s.interval) {
			s.logger.Info("anomaly service stopping", "reason", ctx.Err())
			return nil
		}
	}
}

func (s *Service) runOnce(ctx context.Context) error {
	req := s.request
	if req.Current.IsZero() {
		req.Current = domain.YearRange(s.clock.Now().UTC().Year() - 1)
	}

	report, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, report); err != nil {
			return &publishError{err: err}
		}
		s.metrics.ReportsPublished.Inc()
	}

	s.latest.Store(&report)
	s.ready.Store(true)
	s.logger.Info("anomaly report produced",
		"report_id", report.ID,
		"region", report.Summary.Region,
		"current", req.Current.String(),
		"valid_pixels", report.Summary.ValidPixels,
		"duration", report.Duration,
	)
	return nil
}

type publishError struct{ err error }

func (e *publishError) Error() string { return "publish report: " + e.err.Error() }
func (e *publishError) Unwrap() error { return e.err }

// retryable reports whether err comes from I/O that may succeed on retry.
func retryable(err error) bool {
	var se *SourceError
	var pe *publishError
	return errors.As(err, &se) || errors.As(err, &pe)
}

// sleepWithContext mirrors retry.SleepWithContext on an injectable clock.
func sleepWithContext(ctx context.Context, clock clockwork.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

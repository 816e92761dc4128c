package extract

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Outcome values recorded on the autoschema.extract.* instruments.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeExhausted = "exhausted"
)

// extractMetrics holds the instruments for the extraction loop. They are
// created once in New and shared by every run.
type extractMetrics struct {
	// attempts counts generator calls by outcome
	attempts metric.Int64Counter

	// runs counts Extract calls by outcome
	runs metric.Int64Counter

	// attemptDuration records generator latency in milliseconds
	attemptDuration metric.Float64Histogram
}

func newExtractMetrics(meter metric.Meter) (*extractMetrics, error) {
	m := &extractMetrics{}
	var err error

	m.attempts, err = meter.Int64Counter(
		"autoschema.extract.attempts",
		metric.WithDescription("Generator calls made by the extraction loop"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create attempts counter: %w", err)
	}

	m.runs, err = meter.Int64Counter(
		"autoschema.extract.runs",
		metric.WithDescription("Extraction runs by final outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create runs counter: %w", err)
	}

	m.attemptDuration, err = meter.Float64Histogram(
		"autoschema.extract.attempt.duration",
		metric.WithDescription("Generator call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}
	return m, nil
}

// noopMetrics is used when the configured meter cannot create instruments.
func noopMetrics() *extractMetrics {
	m, _ := newExtractMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}

func (m *extractMetrics) recordAttempt(ctx context.Context, mode Mode, outcome string, d time.Duration) {
	opts := metric.WithAttributes(
		attribute.String("mode", mode.String()),
		attribute.String("outcome", outcome),
	)
	m.attempts.Add(ctx, 1, opts)
	m.attemptDuration.Record(ctx, float64(d.Milliseconds()), opts)
}

func (m *extractMetrics) recordRun(ctx context.Context, mode Mode, outcome string) {
	m.runs.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode.String()),
		attribute.String("outcome", outcome),
	))
}

package rankservice

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	opSentences = "rank_sentences"
	opContexts  = "rank_contexts"

	statusOK    = "ok"
	statusError = "error"

	fallbackLanguage  = "language"
	fallbackSelection = "selection"
)

type metrics struct {
	operations    metric.Int64Counter
	duration      metric.Float64Histogram
	selectedRatio metric.Float64Histogram
	fallbacks     metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}
	var err error

	m.operations, err = meter.Int64Counter(
		"contextrank.rank.operations_total",
		metric.WithDescription("Total number of ranking operations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create operations counter: %w", err)
	}

	m.duration, err = meter.Float64Histogram(
		"contextrank.rank.duration_seconds",
		metric.WithDescription("Time spent ranking"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	m.selectedRatio, err = meter.Float64Histogram(
		"contextrank.rank.selected_ratio",
		metric.WithDescription("Share of sentences kept by LexRank selection"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create selected ratio histogram: %w", err)
	}

	m.fallbacks, err = meter.Int64Counter(
		"contextrank.rank.fallbacks_total",
		metric.WithDescription("Language and selection fallbacks taken"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallbacks counter: %w", err)
	}

	return m, nil
}

func (m *metrics) operation(ctx context.Context, op, lang, status string, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("language", lang),
		attribute.String("status", status),
	)
	m.operations.Add(ctx, 1, attrs)
	if status == statusOK {
		m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("operation", op)))
	}
}

func (m *metrics) selected(ctx context.Context, lang string, ratio float64) {
	m.selectedRatio.Record(ctx, ratio, metric.WithAttributes(attribute.String("language", lang)))
}

func (m *metrics) fallback(ctx context.Context, kind, lang string) {
	m.fallbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("language", lang),
	))
}

package repair

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// inspectionMetrics holds the OpenTelemetry metric instruments for repair
// inspections. These are created once during construction and reused for
// all inspections.
type inspectionMetrics struct {
	// inspectionCounter increments for each inspection performed
	inspectionCounter metric.Int64Counter

	// durationHistogram records inspection duration in milliseconds
	durationHistogram metric.Float64Histogram

	// createdCounter increments for each issue raised
	createdCounter metric.Int64Counter

	// deletedCounter increments for each issue cleared
	deletedCounter metric.Int64Counter

	// unknownHistogram records unknown references found per dashboard
	unknownHistogram metric.Float64Histogram
}

// newInspectionMetrics creates and initializes all OpenTelemetry metric
// instruments. A nil meter yields nil metrics, which every record method
// tolerates.
func newInspectionMetrics(meter metric.Meter) (*inspectionMetrics, error) {
	if meter == nil {
		return nil, nil
	}

	metrics := &inspectionMetrics{}
	var err error

	metrics.inspectionCounter, err = meter.Int64Counter(
		"hearthwatch.inspections",
		metric.WithDescription("Number of inspections performed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create inspection counter: %w", err)
	}

	metrics.durationHistogram, err = meter.Float64Histogram(
		"hearthwatch.inspection.duration",
		metric.WithDescription("Inspection duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	metrics.createdCounter, err = meter.Int64Counter(
		"hearthwatch.issues.created",
		metric.WithDescription("Number of issues raised by inspections"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create created counter: %w", err)
	}

	metrics.deletedCounter, err = meter.Int64Counter(
		"hearthwatch.issues.deleted",
		metric.WithDescription("Number of issues cleared by inspections"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create deleted counter: %w", err)
	}

	metrics.unknownHistogram, err = meter.Float64Histogram(
		"hearthwatch.unknown_refs",
		metric.WithDescription("Unknown entity references found per dashboard"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create unknown histogram: %w", err)
	}

	return metrics, nil
}

// recordInspection records the metrics for a completed inspection.
// It returns silently when metrics are not configured.
func (m *inspectionMetrics) recordInspection(ctx context.Context, repair string, duration time.Duration, created, deleted int) {
	if m == nil {
		return
	}

	opts := metric.WithAttributes(
		attribute.String("repair", repair),
	)

	if m.inspectionCounter != nil {
		m.inspectionCounter.Add(ctx, 1, opts)
	}
	if m.durationHistogram != nil {
		m.durationHistogram.Record(ctx, float64(duration.Milliseconds()), opts)
	}
	if m.createdCounter != nil && created > 0 {
		m.createdCounter.Add(ctx, int64(created), opts)
	}
	if m.deletedCounter != nil && deleted > 0 {
		m.deletedCounter.Add(ctx, int64(deleted), opts)
	}
}

// recordUnknown records the number of unknown references found on a
// single dashboard.
func (m *inspectionMetrics) recordUnknown(ctx context.Context, repair, urlPath string, count int) {
	if m == nil || m.unknownHistogram == nil {
		return
	}

	m.unknownHistogram.Record(ctx, float64(count), metric.WithAttributes(
		attribute.String("repair", repair),
		attribute.String("dashboard", urlPath),
	))
}

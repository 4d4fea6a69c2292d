// Package telemetry instruments the request router with op/query latency
// and count metrics, exported via the stdout metrics exporter in dev mode.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder wraps the instruments the router updates on every dispatch.
type Recorder struct {
	opDuration    metric.Float64Histogram
	queryDuration metric.Float64Histogram
	opCount       metric.Int64Counter
	queryCount    metric.Int64Counter
	errorCount    metric.Int64Counter
}

// New builds a Recorder bound to meter. Pass noop.NewMeterProvider().Meter("")
// when metrics are disabled; every call below becomes a cheap no-op.
func New(meter metric.Meter) (*Recorder, error) {
	opDuration, err := meter.Float64Histogram("planner.op.duration_ms",
		metric.WithDescription("operation handler latency in milliseconds"))
	if err != nil {
		return nil, err
	}
	queryDuration, err := meter.Float64Histogram("planner.query.duration_ms",
		metric.WithDescription("view query latency in milliseconds"))
	if err != nil {
		return nil, err
	}
	opCount, err := meter.Int64Counter("planner.op.count")
	if err != nil {
		return nil, err
	}
	queryCount, err := meter.Int64Counter("planner.query.count")
	if err != nil {
		return nil, err
	}
	errorCount, err := meter.Int64Counter("planner.error.count")
	if err != nil {
		return nil, err
	}
	return &Recorder{
		opDuration:    opDuration,
		queryDuration: queryDuration,
		opCount:       opCount,
		queryCount:    queryCount,
		errorCount:    errorCount,
	}, nil
}

// ObserveOp records one operation dispatch by name, its duration, and
// whether it succeeded.
func (r *Recorder) ObserveOp(ctx context.Context, name string, start time.Time, ok bool) {
	attrs := metric.WithAttributes(attrName(name))
	r.opDuration.Record(ctx, elapsedMillis(start), attrs)
	r.opCount.Add(ctx, 1, attrs)
	if !ok {
		r.errorCount.Add(ctx, 1, attrs)
	}
}

// ObserveQuery records one query dispatch by name, its duration, and
// whether it succeeded.
func (r *Recorder) ObserveQuery(ctx context.Context, name string, start time.Time, ok bool) {
	attrs := metric.WithAttributes(attrName(name))
	r.queryDuration.Record(ctx, elapsedMillis(start), attrs)
	r.queryCount.Add(ctx, 1, attrs)
	if !ok {
		r.errorCount.Add(ctx, 1, attrs)
	}
}

func elapsedMillis(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

func attrName(name string) attribute.KeyValue {
	return attribute.String("name", name)
}

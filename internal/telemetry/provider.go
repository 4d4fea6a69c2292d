package telemetry

import (
	"context"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider owns the lifecycle of the metrics pipeline behind a Recorder.
type Provider struct {
	mp *sdkmetric.MeterProvider
}

// Setup builds a Recorder backed by the stdout metrics exporter, printing
// one aggregated batch every interval to w. Pass enabled=false for a noop
// Recorder that costs nothing on every op/query dispatch.
func Setup(enabled bool, w io.Writer, interval time.Duration) (*Recorder, *Provider, error) {
	if !enabled {
		rec, err := New(noop.NewMeterProvider().Meter("planner"))
		return rec, nil, err
	}
	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	rec, err := New(mp.Meter("planner"))
	if err != nil {
		return nil, nil, err
	}
	return rec, &Provider{mp: mp}, nil
}

// Shutdown flushes and stops the metrics pipeline. Safe to call on a nil
// Provider (the disabled/noop case).
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.mp.Shutdown(ctx)
}

package core

import (
	"context"
	"time"

	"latticegen/pkg/lattice"
)

// MetricsRecorder receives run outcomes and per-class cluster counts.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	ObserveClusters(ctx context.Context, pipeline Pipeline, class lattice.RadiusClass, count int)
}

// Tracer starts a span around one generator operation.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// TraceSpan is ended exactly once with the operation's error, if any.
type TraceSpan interface {
	End(err error)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

func (noopMetrics) ObserveClusters(context.Context, Pipeline, lattice.RadiusClass, int) {}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, TraceSpan) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error) {}

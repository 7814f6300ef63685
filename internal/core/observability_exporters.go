package core

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"latticegen/pkg/lattice"
)

var expvarSeq uint64

// ExpvarMetricsRecorder publishes run timings and cluster totals via expvar,
// for deployments that scrape /debug/vars instead of Prometheus.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
	clusters  map[string]map[string]int64
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	Clusters    map[string]map[string]int64 `json:"clusters_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder publishes a recorder under name. An empty name
// generates a unique one, since expvar panics on duplicates.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("latticegen_metrics_%d", id)
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
		clusters:  make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string {
	return r.name
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}
	return ExpvarMetricsSnapshot{
		DurationsMS: durations,
		Results:     copyNested(r.results),
		Clusters:    copyNested(r.clusters),
		RecordedAt:  time.Now().UTC(),
	}
}

func copyNested(in map[string]map[string]int64) map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(in))
	for k, inner := range in {
		cpy := make(map[string]int64, len(inner))
		for k2, v := range inner {
			cpy[k2] = v
		}
		out[k] = cpy
	}
	return out
}

// Observe records a run outcome.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := float64(duration) / float64(time.Millisecond)
	r.mu.Lock()
	r.durations[operation] += ms
	bump(r.results, operation, statusLabel(success), 1)
	r.mu.Unlock()
}

// ObserveClusters adds count clusters of class to the pipeline total.
func (r *ExpvarMetricsRecorder) ObserveClusters(_ context.Context, pipeline Pipeline, class lattice.RadiusClass, count int) {
	r.mu.Lock()
	bump(r.clusters, string(pipeline), string(class), int64(count))
	r.mu.Unlock()
}

func bump(m map[string]map[string]int64, outer, inner string, n int64) {
	if _, ok := m[outer]; !ok {
		m[outer] = make(map[string]int64, 2)
	}
	m[outer][inner] += n
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// JSONTraceEntry represents a serialized trace span emitted by JSONTraceTracer.
type JSONTraceEntry struct {
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	DurationMS float64   `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// JSONTraceTracer serializes spans to a writer and retains them for inspection.
type JSONTraceTracer struct {
	mu      sync.Mutex
	entries []JSONTraceEntry
	enc     *json.Encoder
	now     func() time.Time
}

// NewJSONTracer writes spans as JSON lines to w (which may be nil) and keeps
// them for Entries.
func NewJSONTracer(w io.Writer) *JSONTraceTracer {
	var enc *json.Encoder
	if w != nil {
		enc = json.NewEncoder(w)
	}
	return &JSONTraceTracer{
		enc: enc,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Entries returns a copy of all recorded spans.
func (t *JSONTraceTracer) Entries() []JSONTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]JSONTraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Start implements Tracer.
func (t *JSONTraceTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &jsonTraceSpan{tracer: t, operation: operation, started: t.now()}
}

type jsonTraceSpan struct {
	tracer    *JSONTraceTracer
	operation string
	started   time.Time
	once      sync.Once
}

func (s *jsonTraceSpan) End(err error) {
	s.once.Do(func() {
		var errMsg string
		if err != nil {
			errMsg = err.Error()
		}
		ended := s.tracer.now()
		entry := JSONTraceEntry{
			Operation:  s.operation,
			Status:     statusLabel(err == nil),
			DurationMS: float64(ended.Sub(s.started)) / float64(time.Millisecond),
			Error:      errMsg,
			StartedAt:  s.started,
			EndedAt:    ended,
		}
		s.tracer.mu.Lock()
		s.tracer.entries = append(s.tracer.entries, entry)
		if s.tracer.enc != nil {
			_ = s.tracer.enc.Encode(entry)
		}
		s.tracer.mu.Unlock()
	})
}

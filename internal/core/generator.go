// Package core validates run configurations, scans lattice geometry into
// clusters and drives one generation from staging through publish and the
// run ledger.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"latticegen/internal/artifact"
	"latticegen/internal/blob"
	"latticegen/internal/emit"
	"latticegen/pkg/domain"
	"latticegen/pkg/lattice"
)

const operationGenerate = "generate"

// Result summarizes one generation run. Counters are local to the run.
type Result struct {
	RunID       string
	Pipeline    Pipeline
	Shape       string
	Total       int
	Topological int
	Defects     int
	Points      int
	Diagnostics []string
	Artifacts   []blob.Info
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Generator runs the validate, scan, emit and publish pass for one
// configuration at a time. It holds no per-run state, so a single Generator
// may serve sequential runs.
type Generator struct {
	blobs    blob.Store
	runs     RunStore
	metrics  MetricsRecorder
	tracer   Tracer
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
	stageDir string
}

// Option configures a Generator.
type Option func(*Generator)

// WithRunStore records every successful run in store.
func WithRunStore(store RunStore) Option {
	return func(g *Generator) { g.runs = store }
}

// WithMetricsRecorder installs a metrics sink; nil restores the no-op recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(g *Generator) {
		if m == nil {
			m = noopMetrics{}
		}
		g.metrics = m
	}
}

// WithTracer installs a tracer; nil restores the no-op tracer.
func WithTracer(t Tracer) Option {
	return func(g *Generator) {
		if t == nil {
			t = noopTracer{}
		}
		g.tracer = t
	}
}

// WithLogger sets the structured logger; nil restores zap.NewNop.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l == nil {
			l = zap.NewNop()
		}
		g.logger = l
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithIDGenerator overrides run id generation.
func WithIDGenerator(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// WithStagingDir sets the directory for in-flight artifacts ("" uses the system temp dir).
func WithStagingDir(dir string) Option {
	return func(g *Generator) { g.stageDir = dir }
}

// NewGenerator returns a generator publishing artifacts to blobs.
func NewGenerator(blobs blob.Store, opts ...Option) *Generator {
	g := &Generator{
		blobs:   blobs,
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		logger:  zap.NewNop(),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run validates cfg, scans the supercell, and publishes the .cell and .ctl
// artifacts. On any fatal error nothing is published. An unknown particle
// type is not fatal: both files are written with empty geometry and the
// problem is reported in Result.Diagnostics.
func (g *Generator) Run(ctx context.Context, cfg Config) (res Result, err error) {
	started := g.now()
	ctx, span := g.tracer.Start(ctx, operationGenerate)
	defer func() {
		span.End(err)
		g.metrics.Observe(ctx, operationGenerate, err == nil, g.now().Sub(started))
		if err != nil {
			g.logger.Error("generation failed", zap.String("pipeline", string(cfg.Pipeline)), zap.Error(err))
		}
	}()

	if err := Validate(cfg); err != nil {
		return Result{}, err
	}
	if g.blobs == nil {
		return Result{}, newStorageError("no artifact store configured", nil)
	}

	p := newPlan(cfg)
	res = Result{
		RunID:     g.newID(),
		Pipeline:  cfg.Pipeline,
		Shape:     cfg.ParticleType,
		StartedAt: started,
	}

	cellSink, err := artifact.Open(g.blobs, cfg.Output.CellKey, g.stageDir)
	if err != nil {
		return Result{}, newStorageError("stage cell artifact", err)
	}
	defer cellSink.Abort()
	ctlSink, err := artifact.Open(g.blobs, cfg.Output.CtlKey, g.stageDir)
	if err != nil {
		return Result{}, newStorageError("stage ctl artifact", err)
	}
	defer ctlSink.Abort()

	em := emit.New(cellSink, ctlSink, layoutFor(cfg))
	if err := em.Begin(); err != nil {
		return Result{}, newStorageError("write headers", err)
	}

	if p.known() {
		if err := g.scan(ctx, p, em, &res); err != nil {
			return Result{}, err
		}
		if want, ok := p.window.Expected(); ok && res.Total != want {
			return Result{}, newConsistencyError("occupied cell count does not match the supercell", map[string]any{
				"expected": want,
				"actual":   res.Total,
			})
		}
	} else {
		diag := &GenerationError{
			Kind:    KindUnknownShape,
			Message: fmt.Sprintf("particle type %q is not one of [%s]", cfg.ParticleType, strings.Join(ShapeSelectors(cfg.Pipeline), " ")),
			Details: map[string]any{"pipeline": string(cfg.Pipeline)},
		}
		res.Diagnostics = append(res.Diagnostics, diag.Error())
		g.logger.Warn("unknown particle type, writing empty geometry",
			zap.String("pipeline", string(cfg.Pipeline)),
			zap.String("particle_type", cfg.ParticleType))
	}

	if err := em.End(); err != nil {
		return Result{}, newStorageError("write tails", err)
	}
	res.Points = em.Points()

	if err := g.publish(ctx, cellSink, ctlSink, &res); err != nil {
		return Result{}, err
	}
	res.FinishedAt = g.now()

	if err := g.record(ctx, cfg, res); err != nil {
		return res, err
	}
	g.observeClusters(ctx, res)
	g.logSummary(cfg, res)
	return res, nil
}

// scan classifies and occupies every cell of the window in order.
func (g *Generator) scan(ctx context.Context, p plan, em *emit.Emitter, res *Result) error {
	return p.window.Scan(ctx, func(cell lattice.Cell) error {
		class := p.classify(cell)
		cluster := lattice.Occupy(p.radiusFor(class), class, cell)
		res.Total++
		if cluster.Topological() {
			res.Topological++
		}
		if class == lattice.ClassDefect {
			res.Defects++
		}
		if err := em.Emit(cluster); err != nil {
			return newStorageError("write geometry", err)
		}
		return nil
	})
}

// publish commits both artifacts. If the control file cannot be published
// the freshly committed cell file is removed again.
func (g *Generator) publish(ctx context.Context, cell, ctl *artifact.Sink, res *Result) error {
	meta := map[string]string{
		"run-id":        res.RunID,
		"pipeline":      string(res.Pipeline),
		"particle-type": res.Shape,
	}
	cellInfo, err := cell.Commit(ctx, meta)
	if err != nil {
		return newStorageError("publish cell artifact", err)
	}
	ctlInfo, err := ctl.Commit(ctx, meta)
	if err != nil {
		if _, derr := g.blobs.Delete(ctx, cellInfo.Key); derr != nil {
			g.logger.Warn("could not roll back cell artifact", zap.String("key", cellInfo.Key), zap.Error(derr))
		}
		return newStorageError("publish ctl artifact", err)
	}
	res.Artifacts = []blob.Info{cellInfo, ctlInfo}
	return nil
}

func (g *Generator) record(ctx context.Context, cfg Config, res Result) error {
	if g.runs == nil {
		return nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return newStorageError("encode run config", err)
	}
	rec := domain.RunRecord{
		ID:           res.RunID,
		Pipeline:     string(res.Pipeline),
		ParticleType: res.Shape,
		Config:       raw,
		Total:        res.Total,
		Topological:  res.Topological,
		Defects:      res.Defects,
		Points:       res.Points,
		Diagnostics:  res.Diagnostics,
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
	}
	kinds := []domain.ArtifactKind{domain.ArtifactCell, domain.ArtifactCtl}
	for i, info := range res.Artifacts {
		rec.Artifacts = append(rec.Artifacts, domain.ArtifactRecord{
			Kind: kinds[i],
			Key:  info.Key,
			ETag: info.ETag,
			Size: info.Size,
			URL:  info.URL,
		})
	}
	if err := g.runs.SaveRun(ctx, rec); err != nil {
		return newStorageError("record run", err)
	}
	return nil
}

func (g *Generator) observeClusters(ctx context.Context, res Result) {
	plain := res.Topological - res.Defects
	g.metrics.ObserveClusters(ctx, res.Pipeline, lattice.ClassTopological, plain)
	g.metrics.ObserveClusters(ctx, res.Pipeline, lattice.ClassDefect, res.Defects)
	g.metrics.ObserveClusters(ctx, res.Pipeline, lattice.ClassTrivial, res.Total-res.Topological)
}

func (g *Generator) logSummary(cfg Config, res Result) {
	fields := []zap.Field{
		zap.String("run_id", res.RunID),
		zap.String("pipeline", string(res.Pipeline)),
		zap.String("particle_type", res.Shape),
		zap.Float64("topological_cluster_radius", cfg.TopologicalClusterRadius),
		zap.Float64("trivial_cluster_radius", cfg.TrivialClusterRadius),
		zap.Int("clusters", res.Total),
		zap.Int("topological_clusters", res.Topological),
		zap.Duration("elapsed", res.FinishedAt.Sub(res.StartedAt)),
	}
	switch cfg.Pipeline {
	case PipelineRibbon:
		fields = append(fields,
			zap.Int("particle_radius", cfg.Ribbon.ParticleRadius),
			zap.Int("supercell_x", cfg.Ribbon.SupercellX),
			zap.Int("supercell_y", cfg.Ribbon.SupercellY))
	case PipelineEmbedded:
		fields = append(fields,
			zap.Int("topological_radius", cfg.Embedded.TopologicalRadius),
			zap.Int("supercell_size", cfg.Embedded.SupercellSize),
			zap.Int("defect_clusters", res.Defects))
	}
	g.logger.Info("generation complete", fields...)
}

func layoutFor(cfg Config) emit.Layout {
	if cfg.Pipeline == PipelineEmbedded {
		e := cfg.Embedded
		return emit.MPB{
			Size:            e.SupercellSize,
			CylinderEpsilon: cfg.CylinderEpsilon,
			CylinderRadius:  cfg.CylinderRadius(),
			Bands:           e.Bands,
			Resolution:      e.Resolution,
			CenterOffset:    e.CenterOffset(),
		}
	}
	r := cfg.Ribbon
	return emit.Meep{
		SupercellX:      r.SupercellX,
		SupercellY:      r.SupercellY,
		CylinderEpsilon: cfg.CylinderEpsilon,
		CylinderRadius:  cfg.CylinderRadius(),
		PMLThickness:    r.Meep.PMLThickness,
		Resolution:      r.Meep.Resolution,
		NFreq:           r.Meep.NFreq,
		FCen:            r.Meep.FCen,
		DF:              r.Meep.DF,
		RunTime:         r.Meep.RunTime,
	}
}

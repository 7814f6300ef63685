package core

import (
	"context"

	"latticegen/pkg/lattice"
)

// Classifier decides which radius class a scanned cell receives.
type Classifier func(cell lattice.Cell) lattice.RadiusClass

// Window enumerates the cells a pipeline occupies, in emission order.
type Window interface {
	// Scan visits every cell of the window, outer index first. The context is
	// checked once per outer row.
	Scan(ctx context.Context, visit func(lattice.Cell) error) error
	// Expected is the exact number of cells Scan must visit, when the window
	// enforces one.
	Expected() (int, bool)
}

// plan binds a window to the classifier selected by the particle type.
type plan struct {
	window    Window
	classify  Classifier // nil when the particle type is unknown
	radiusFor func(lattice.RadiusClass) float64
	particle  string
	pipeline  Pipeline
}

// newPlan resolves the scan for an already validated configuration.
func newPlan(cfg Config) plan {
	p := plan{
		particle: cfg.ParticleType,
		pipeline: cfg.Pipeline,
		radiusFor: func(class lattice.RadiusClass) float64 {
			switch class {
			case lattice.ClassTopological:
				return cfg.TopologicalClusterRadius
			case lattice.ClassDefect:
				return cfg.TopologicalClusterRadius + cfg.Embedded.DefectEpsilon
			default:
				return cfg.TrivialClusterRadius
			}
		},
	}
	switch cfg.Pipeline {
	case PipelineRibbon:
		p.window = newRibbonWindow(cfg.Ribbon)
		p.classify = ribbonShapes(cfg.Ribbon)[cfg.ParticleType]
	case PipelineEmbedded:
		p.window = embeddedWindow{size: cfg.Embedded.SupercellSize}
		p.classify = embeddedShapes(cfg.Embedded)[cfg.ParticleType]
	}
	return p
}

// known reports whether the particle type selected a classifier.
func (p plan) known() bool { return p.classify != nil }

// ShapeSelectors lists the particle types accepted by a pipeline.
func ShapeSelectors(p Pipeline) []string {
	switch p {
	case PipelineRibbon:
		return []string{ShapeHexagon, ShapeRibbon}
	case PipelineEmbedded:
		return []string{ShapeHexagon, ShapeTriangle, ShapeParallelogram, ShapeRectangle}
	}
	return nil
}

func classOf(topological bool) lattice.RadiusClass {
	if topological {
		return lattice.ClassTopological
	}
	return lattice.ClassTrivial
}

package core

import (
	"latticegen/pkg/lattice"
)

// Pipeline selects the scan domain, classifier family, and control-file flavour.
type Pipeline string

const (
	PipelineRibbon   Pipeline = "ribbon"   // skewed dummy lattice, MEEP time-domain control file
	PipelineEmbedded Pipeline = "embedded" // size x size parallelogram, MPB band-structure control file
)

// Particle-type selectors.
const (
	ShapeHexagon       = "h"
	ShapeRibbon        = "r" // half-plane in the ribbon pipeline
	ShapeRectangle     = "r" // fixed-bounds rectangle in the embedded pipeline
	ShapeTriangle      = "t"
	ShapeParallelogram = "p"
)

// Wu & Hu cluster radii and the dielectric constant of silicon.
const (
	DefaultTopologicalClusterRadius = 1.0 / 2.9
	DefaultTrivialClusterRadius     = 1.0 / 3.125
	DefaultCylinderEpsilon          = 11.7
	DefaultDefectEpsilon            = 1e-5
)

// Config is the full parameter set of one generation run.
type Config struct {
	Environment string   `yaml:"environment" json:"environment" validate:"omitempty,oneof=development production"`
	LogLevel    string   `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Pipeline    Pipeline `yaml:"pipeline" json:"pipeline" validate:"required,oneof=ribbon embedded"`
	// ParticleType is intentionally unconstrained; unknown selectors are a soft error.
	ParticleType string `yaml:"particle_type" json:"particle_type"`

	TopologicalClusterRadius float64 `yaml:"topological_cluster_radius" json:"topological_cluster_radius" validate:"topologicalradius"`
	TrivialClusterRadius     float64 `yaml:"trivial_cluster_radius" json:"trivial_cluster_radius" validate:"trivialradius"`
	CylinderEpsilon          float64 `yaml:"cylinder_epsilon" json:"cylinder_epsilon" validate:"gt=0"`

	Ribbon   RibbonConfig   `yaml:"ribbon" json:"ribbon" validate:"-"`
	Embedded EmbeddedConfig `yaml:"embedded" json:"embedded" validate:"-"`
	Output   OutputConfig   `yaml:"output" json:"output"`
}

// RibbonConfig parameterises the MEEP pipeline.
type RibbonConfig struct {
	DummySizeX     int        `yaml:"dummy_size_x" json:"dummy_size_x" validate:"gt=2"`
	DummySizeY     int        `yaml:"dummy_size_y" json:"dummy_size_y" validate:"gt=2"`
	SupercellX     int        `yaml:"supercell_x" json:"supercell_x" validate:"gt=0"`
	SupercellY     int        `yaml:"supercell_y" json:"supercell_y" validate:"gt=0"`
	ParticleRadius int        `yaml:"particle_radius" json:"particle_radius" validate:"gte=0"`
	Meep           MeepConfig `yaml:"meep" json:"meep"`
}

// MeepConfig holds the constants of the time-domain tail.
type MeepConfig struct {
	PMLThickness float64 `yaml:"pml_thickness" json:"pml_thickness" validate:"gt=0"`
	Resolution   int     `yaml:"resolution" json:"resolution" validate:"gt=0"`
	NFreq        int     `yaml:"nfreq" json:"nfreq" validate:"gt=0"`
	FCen         float64 `yaml:"fcen" json:"fcen" validate:"gt=0"`
	DF           float64 `yaml:"df" json:"df" validate:"gt=0"`
	RunTime      float64 `yaml:"run_time" json:"run_time" validate:"gt=0"`
}

// EmbeddedConfig parameterises the MPB pipeline.
type EmbeddedConfig struct {
	SupercellSize     int     `yaml:"supercell_size" json:"supercell_size" validate:"gt=0"`
	TopologicalRadius int     `yaml:"topological_radius" json:"topological_radius" validate:"gte=0"`
	Bands             int     `yaml:"bands" json:"bands" validate:"gt=0"`
	Resolution        int     `yaml:"resolution" json:"resolution" validate:"gt=0"`
	DefectEpsilon     float64 `yaml:"defect_epsilon" json:"defect_epsilon" validate:"gte=0"`
	// DefectCells marks the cells of a hexagonal supercluster that receive
	// the perturbed radius. Nil derives the default triple from the
	// supercell size; an empty list disables the defect.
	DefectCells []lattice.Cell `yaml:"defect_cells" json:"defect_cells"`
	Rectangle   RectBounds     `yaml:"rectangle" json:"rectangle"`
}

// RectBounds are the open intervals of the embedded rectangle shape, measured
// along (sqrt(3)/2*(i+j)) and across (0.5*(i-j)) the supercell diagonal.
type RectBounds struct {
	MinAlong  float64 `yaml:"min_along" json:"min_along"`
	MaxAlong  float64 `yaml:"max_along" json:"max_along" validate:"gtfield=MinAlong"`
	MinAcross float64 `yaml:"min_across" json:"min_across"`
	MaxAcross float64 `yaml:"max_across" json:"max_across" validate:"gtfield=MinAcross"`
}

// OutputConfig names the two artifacts inside the blob store.
type OutputConfig struct {
	CellKey string `yaml:"cell" json:"cell" validate:"required,nefield=CtlKey"`
	CtlKey  string `yaml:"ctl" json:"ctl" validate:"required"`
}

// DefaultConfig returns the reference parameter set of the given pipeline.
// Unknown pipelines fall back to the ribbon defaults with the pipeline kept,
// so validation reports the bad value.
func DefaultConfig(p Pipeline) Config {
	cfg := Config{
		Environment:              "development",
		LogLevel:                 "info",
		Pipeline:                 p,
		TopologicalClusterRadius: DefaultTopologicalClusterRadius,
		TrivialClusterRadius:     DefaultTrivialClusterRadius,
		CylinderEpsilon:          DefaultCylinderEpsilon,
		Ribbon: RibbonConfig{
			DummySizeX:     60,
			DummySizeY:     60,
			SupercellX:     13,
			SupercellY:     13,
			ParticleRadius: 3,
			Meep: MeepConfig{
				PMLThickness: 1.0,
				Resolution:   20,
				NFreq:        200,
				FCen:         0.473,
				DF:           0.05,
				RunTime:      500,
			},
		},
		Embedded: EmbeddedConfig{
			SupercellSize:     21,
			TopologicalRadius: 5,
			Bands:             1350,
			Resolution:        32,
			DefectEpsilon:     DefaultDefectEpsilon,
			Rectangle:         RectBounds{MinAlong: 4, MaxAlong: 24, MinAcross: -1, MaxAcross: 1.5},
		},
	}
	switch p {
	case PipelineEmbedded:
		cfg.ParticleType = ShapeHexagon
		cfg.Output = OutputConfig{CellKey: "output_silicon_embedded.cell", CtlKey: "output_silicon_embedded.ctl"}
	default:
		cfg.ParticleType = ShapeHexagon
		cfg.Output = OutputConfig{CellKey: "output_meep_coords.cell", CtlKey: "output_meep_coords.ctl"}
	}
	return cfg
}

// CylinderRadius is the radius of every individual cylinder, a third of the topological cluster radius.
func (c Config) CylinderRadius() float64 {
	return c.TopologicalClusterRadius / 3
}

// ResolveDefectCells returns the defect set of the embedded hexagon.
func (c EmbeddedConfig) ResolveDefectCells() []lattice.Cell {
	if c.DefectCells != nil {
		out := make([]lattice.Cell, len(c.DefectCells))
		copy(out, c.DefectCells)
		return out
	}
	return DefaultDefectCells(c.SupercellSize)
}

// DefaultDefectCells returns the three-cell defect next to the supercell
// center index m = (size-1)/2: (m+2,m+2), (m+3,m+2), (m+2,m+3).
// At size 21 this is {(12,12), (13,12), (12,13)}; it was only checked against
// a topological radius of 5.
func DefaultDefectCells(size int) []lattice.Cell {
	m := (size - 1) / 2
	return []lattice.Cell{
		{One: m + 2, Two: m + 2},
		{One: m + 3, Two: m + 2},
		{One: m + 2, Two: m + 3},
	}
}

// CenterOffset is the shift applied to oblique coordinates in the embedded
// control file so the supercell is centered on the origin: (3(size-1)/2+1)/3,
// 31/3 for the 21x21 reference supercell.
func (c EmbeddedConfig) CenterOffset() float64 {
	return float64(3*(c.SupercellSize-1)/2+1) / 3
}

package core

import (
	"context"
	"errors"
	"testing"

	"latticegen/pkg/lattice"
)

// scanPlan collects the class of every visited cell.
func scanPlan(t *testing.T, cfg Config) map[lattice.Cell]lattice.RadiusClass {
	t.Helper()
	p := newPlan(cfg)
	if !p.known() {
		t.Fatalf("particle type %q not known for %s", cfg.ParticleType, cfg.Pipeline)
	}
	out := make(map[lattice.Cell]lattice.RadiusClass)
	err := p.window.Scan(context.Background(), func(c lattice.Cell) error {
		if _, dup := out[c]; dup {
			t.Fatalf("cell %s visited twice", c)
		}
		out[c] = p.classify(c)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func countClass(cells map[lattice.Cell]lattice.RadiusClass, classes ...lattice.RadiusClass) int {
	n := 0
	for _, got := range cells {
		for _, want := range classes {
			if got == want {
				n++
			}
		}
	}
	return n
}

func TestRibbonWindowKeepsCellsInsideSupercell(t *testing.T) {
	cells := scanPlan(t, DefaultConfig(PipelineRibbon))
	// |j| <= 5 rows; 9 sites on even rows, 10 on odd rows.
	if len(cells) != 105 {
		t.Fatalf("expected 105 cells in the 13x13 supercell, got %d", len(cells))
	}
	for c := range cells {
		pos := lattice.CellPosition(c)
		if pos.X <= -5 || pos.X >= 5 || pos.Y <= -5 || pos.Y >= 5 {
			t.Fatalf("cell %s at %v outside the supercell", c, pos)
		}
	}
	p := newPlan(DefaultConfig(PipelineRibbon))
	if _, ok := p.window.Expected(); ok {
		t.Fatalf("ribbon window must not enforce a count")
	}
}

func TestRibbonDiskAroundOrigin(t *testing.T) {
	cells := scanPlan(t, DefaultConfig(PipelineRibbon))
	if cells[lattice.Cell{}] != lattice.ClassTopological {
		t.Fatalf("origin cell must be topological")
	}
	for c, class := range cells {
		norm := c.One*c.One + c.One*c.Two + c.Two*c.Two
		switch {
		case norm < 9 && class != lattice.ClassTopological:
			t.Fatalf("cell %s (norm %d) inside R=3 classified %s", c, norm, class)
		case norm > 9 && class != lattice.ClassTrivial:
			t.Fatalf("cell %s (norm %d) outside R=3 classified %s", c, norm, class)
		}
	}
	// the six lattice sites at distance exactly R are kept by the strict '>'
	for _, c := range []lattice.Cell{
		{One: 3, Two: 0}, {One: -3, Two: 0}, {One: 0, Two: 3},
		{One: 0, Two: -3}, {One: 3, Two: -3}, {One: -3, Two: 3},
	} {
		if cells[c] != lattice.ClassTopological {
			t.Fatalf("cell %s at exactly R classified %s", c, cells[c])
		}
	}
	// norms 0, 1, 3, 4, 7, 9 hold 1+6+6+6+12+6 sites
	if topo := countClass(cells, lattice.ClassTopological); topo != 37 {
		t.Fatalf("topological = %d, want 37", topo)
	}
}

func TestRibbonWindowCoverage(t *testing.T) {
	cases := []struct {
		dummy   int
		covered bool
	}{
		{60, true},
		{18, true},
		{16, false},
		{10, false},
	}
	for _, tc := range cases {
		r := DefaultConfig(PipelineRibbon).Ribbon
		r.DummySizeX, r.DummySizeY = tc.dummy, tc.dummy
		c, missed := newRibbonWindow(r).uncovered()
		if missed == tc.covered {
			t.Fatalf("dummy %d: uncovered=%v (cell %s)", tc.dummy, missed, c)
		}
	}

	cfg := DefaultConfig(PipelineRibbon)
	cfg.Ribbon.DummySizeX, cfg.Ribbon.DummySizeY = 18, 18
	if got := len(scanPlan(t, cfg)); got != 105 {
		t.Fatalf("smallest covering window scanned %d cells, want 105", got)
	}
}

func TestRibbonHalfPlane(t *testing.T) {
	cfg := DefaultConfig(PipelineRibbon)
	cfg.ParticleType = ShapeRibbon
	cells := scanPlan(t, cfg)
	for c, class := range cells {
		if (c.Two < 0) != (class == lattice.ClassTopological) {
			t.Fatalf("cell %s classified %s", c, class)
		}
	}
	if got := countClass(cells, lattice.ClassTopological); got != 48 {
		t.Fatalf("expected 48 cells below the axis, got %d", got)
	}
}

func TestEmbeddedShapes(t *testing.T) {
	cases := []struct {
		shape   string
		topo    int
		defects int
	}{
		{ShapeHexagon, 91, 3},
		{ShapeTriangle, 21, 0},
		{ShapeParallelogram, 36, 0},
		{ShapeRectangle, 46, 0},
	}
	for _, tc := range cases {
		t.Run(tc.shape, func(t *testing.T) {
			cfg := DefaultConfig(PipelineEmbedded)
			cfg.ParticleType = tc.shape
			cells := scanPlan(t, cfg)
			if len(cells) != 441 {
				t.Fatalf("expected every cell of 21x21, got %d", len(cells))
			}
			if got := countClass(cells, lattice.ClassTopological, lattice.ClassDefect); got != tc.topo {
				t.Fatalf("topological = %d, want %d", got, tc.topo)
			}
			if got := countClass(cells, lattice.ClassDefect); got != tc.defects {
				t.Fatalf("defects = %d, want %d", got, tc.defects)
			}
		})
	}
}

func TestEmbeddedHexagonDefects(t *testing.T) {
	cells := scanPlan(t, DefaultConfig(PipelineEmbedded))
	for _, c := range []lattice.Cell{{One: 12, Two: 12}, {One: 13, Two: 12}, {One: 12, Two: 13}} {
		if cells[c] != lattice.ClassDefect {
			t.Fatalf("cell %s = %s, want defect", c, cells[c])
		}
	}
	if cells[lattice.Cell{One: 10, Two: 10}] != lattice.ClassTopological {
		t.Fatalf("center must be topological")
	}
	if cells[lattice.Cell{One: 15, Two: 10}] != lattice.ClassTopological {
		t.Fatalf("cell at distance R must be topological")
	}
	if cells[lattice.Cell{One: 16, Two: 10}] != lattice.ClassTrivial {
		t.Fatalf("cell beyond R must be trivial")
	}

	cfg := DefaultConfig(PipelineEmbedded)
	cfg.Embedded.DefectCells = []lattice.Cell{}
	if got := countClass(scanPlan(t, cfg), lattice.ClassDefect); got != 0 {
		t.Fatalf("empty defect list must disable the defect, got %d", got)
	}
}

func TestPlanRadiusPerClass(t *testing.T) {
	cfg := DefaultConfig(PipelineEmbedded)
	p := newPlan(cfg)
	if p.radiusFor(lattice.ClassTrivial) != DefaultTrivialClusterRadius {
		t.Fatalf("trivial radius")
	}
	if p.radiusFor(lattice.ClassTopological) != DefaultTopologicalClusterRadius {
		t.Fatalf("topological radius")
	}
	if p.radiusFor(lattice.ClassDefect) != DefaultTopologicalClusterRadius+DefaultDefectEpsilon {
		t.Fatalf("defect radius")
	}
}

func TestUnknownShapeHasNoClassifier(t *testing.T) {
	cfg := DefaultConfig(PipelineRibbon)
	cfg.ParticleType = ShapeTriangle
	if newPlan(cfg).known() {
		t.Fatalf("triangle is not a ribbon shape")
	}
	if len(ShapeSelectors(PipelineEmbedded)) != 4 || len(ShapeSelectors("other")) != 0 {
		t.Fatalf("unexpected selectors")
	}
}

func TestScanHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := newPlan(DefaultConfig(PipelineEmbedded))
	visited := 0
	err := p.window.Scan(ctx, func(lattice.Cell) error { visited++; return nil })
	if !errors.Is(err, context.Canceled) || visited != 0 {
		t.Fatalf("expected immediate cancellation, got %v after %d cells", err, visited)
	}
}

package core

import (
	"context"
	"math"

	"latticegen/pkg/lattice"
)

// ribbonWindow scans a centered window of the oversized dummy lattice and
// keeps the cells whose Cartesian site lies strictly inside the supercell.
// The half extents use integer division.
type ribbonWindow struct {
	iMin, iMax int
	jMin, jMax int
	xLo, xHi   float64
	yLo, yHi   float64
}

func newRibbonWindow(r RibbonConfig) ribbonWindow {
	return ribbonWindow{
		iMin: -r.DummySizeX/2 + 1,
		iMax: r.DummySizeX/2 - 1,
		jMin: -r.DummySizeY/2 + 1,
		jMax: r.DummySizeY/2 - 1,
		xLo:  float64(-r.SupercellX/2 + 1),
		xHi:  float64(r.SupercellX/2 - 1),
		yLo:  float64(-r.SupercellY/2 + 1),
		yHi:  float64(r.SupercellY/2 - 1),
	}
}

func (w ribbonWindow) inside(c lattice.Cell) bool {
	pos := lattice.CellPosition(c)
	return pos.X < w.xHi && pos.X > w.xLo && pos.Y < w.yHi && pos.Y > w.yLo
}

// uncovered returns a cell inside the supercell that the dummy window never
// visits, if there is one.
func (w ribbonWindow) uncovered() (lattice.Cell, bool) {
	jSpan := int(math.Ceil(math.Max(-w.yLo, w.yHi)*2/math.Sqrt(3))) + 1
	iSpan := int(math.Ceil(math.Max(-w.xLo, w.xHi))) + jSpan
	for j := -jSpan; j <= jSpan; j++ {
		for i := -iSpan; i <= iSpan; i++ {
			c := lattice.Cell{One: i, Two: j}
			if !w.inside(c) {
				continue
			}
			if i < w.iMin || i >= w.iMax || j < w.jMin || j >= w.jMax {
				return c, true
			}
		}
	}
	return lattice.Cell{}, false
}

func (w ribbonWindow) Scan(ctx context.Context, visit func(lattice.Cell) error) error {
	for i := w.iMin; i < w.iMax; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j := w.jMin; j < w.jMax; j++ {
			c := lattice.Cell{One: i, Two: j}
			if !w.inside(c) {
				continue
			}
			if err := visit(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Expected is unchecked: the filtered count depends on the window shape.
func (ribbonWindow) Expected() (int, bool) { return 0, false }

// ribbonShapes maps the ribbon particle types onto classifiers.
func ribbonShapes(r RibbonConfig) map[string]Classifier {
	rr := float64(r.ParticleRadius * r.ParticleRadius)
	return map[string]Classifier{
		// lower half-plane is topological
		ShapeRibbon: func(c lattice.Cell) lattice.RadiusClass {
			return classOf(lattice.CellPosition(c).Y < 0)
		},
		// Disk around the origin. Only checked against a particle radius of 5.
		ShapeHexagon: func(c lattice.Cell) lattice.RadiusClass {
			pos := lattice.CellPosition(c)
			return classOf(!(pos.X*pos.X+pos.Y*pos.Y > rr))
		},
	}
}

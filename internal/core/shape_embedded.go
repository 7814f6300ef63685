package core

import (
	"context"
	"math"

	"latticegen/pkg/lattice"
)

// hexagonMargin widens the embedded hexagon threshold so cells exactly on
// the R^2 shell stay topological.
const hexagonMargin = 0.01

// embeddedWindow covers every cell of the size x size parallelogram.
type embeddedWindow struct {
	size int
}

func (w embeddedWindow) Scan(ctx context.Context, visit func(lattice.Cell) error) error {
	for i := 0; i < w.size; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j := 0; j < w.size; j++ {
			if err := visit(lattice.Cell{One: i, Two: j}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w embeddedWindow) Expected() (int, bool) { return w.size * w.size, true }

// embeddedShapes maps the embedded particle types onto classifiers.
func embeddedShapes(e EmbeddedConfig) map[string]Classifier {
	size := float64(e.SupercellSize)
	radius := e.TopologicalRadius
	threshold := float64(radius*radius) + hexagonMargin
	defects := make(map[lattice.Cell]struct{})
	for _, c := range e.ResolveDefectCells() {
		defects[c] = struct{}{}
	}
	rect := e.Rectangle

	return map[string]Classifier{
		ShapeHexagon: func(c lattice.Cell) lattice.RadiusClass {
			di := float64(c.One) - size*0.5 + 0.5
			dj := float64(c.Two) - size*0.5 + 0.5
			if lattice.ObliqueNormSq(di, dj) > threshold {
				return lattice.ClassTrivial
			}
			if _, ok := defects[c]; ok {
				return lattice.ClassDefect
			}
			return lattice.ClassTopological
		},
		ShapeTriangle: func(c lattice.Cell) lattice.RadiusClass {
			return classOf(c.One+c.Two <= radius)
		},
		ShapeParallelogram: func(c lattice.Cell) lattice.RadiusClass {
			return classOf(c.One <= radius && c.Two <= radius)
		},
		ShapeRectangle: func(c lattice.Cell) lattice.RadiusClass {
			along := math.Sqrt(3) * 0.5 * float64(c.One+c.Two)
			across := 0.5 * float64(c.One-c.Two)
			return classOf(along < rect.MaxAlong && along > rect.MinAlong &&
				across < rect.MaxAcross && across > rect.MinAcross)
		},
	}
}

package lattice

import (
	"math"

	"github.com/jbeda/geom"
)

// HalfSqrt3 is the height of a unit equilateral triangle.
var HalfSqrt3 = 0.5 * math.Sqrt(3)

// Skewed basis of the ribbon pipeline: a1 along x, a2 at 60 degrees.
var (
	SkewedA1 = geom.Coord{X: 1, Y: 0}
	SkewedA2 = geom.Coord{X: 0.5, Y: HalfSqrt3}
)

// Cartesian maps an oblique point onto the skewed basis.
func Cartesian(p Point) geom.Coord {
	return SkewedA1.Times(p.One).Plus(SkewedA2.Times(p.Two))
}

// CellPosition returns the Cartesian position of a cell's lattice site as
// used by the ribbon classifier: x = i + 0.5j, y = j*0.5*sqrt(3).
func CellPosition(c Cell) geom.Coord {
	i, j := float64(c.One), float64(c.Two)
	return geom.Coord{X: i + j*0.5, Y: j * 0.5 * math.Sqrt(3)}
}

// ObliqueNormSq is the squared norm of (di, dj) in the embedded pipeline's
// oblique metric: di^2 + dj^2 + di*dj.
func ObliqueNormSq(di, dj float64) float64 {
	return di*di + dj*dj + di*dj
}

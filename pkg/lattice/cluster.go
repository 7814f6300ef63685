// Package lattice defines the triangular-lattice value types and the cluster
// occupation kernel shared by every generator pipeline.
package lattice

import "fmt"

// RadiusClass identifies which material a cluster belongs to.
type RadiusClass string

const (
	// ClassTrivial marks a cluster with radius in (0, 1/3).
	ClassTrivial RadiusClass = "trivial"
	// ClassTopological marks a cluster with radius in (1/3, 1/2).
	ClassTopological RadiusClass = "topological"
	// ClassDefect marks a topological cluster whose radius is perturbed to flag a point defect.
	ClassDefect RadiusClass = "defect"
)

// PointsPerCluster is the number of cylinders in one hexagonal cluster.
const PointsPerCluster = 6

// Cell identifies a unit cell by its index along the two lattice basis vectors.
type Cell struct {
	One int `json:"one" yaml:"one"`
	Two int `json:"two" yaml:"two"`
}

func (c Cell) String() string { return fmt.Sprintf("(%d,%d)", c.One, c.Two) }

// Point is a cylinder center in oblique lattice units.
type Point struct {
	One float64
	Two float64
}

// Cluster is the six-cylinder unit occupying one lattice cell.
type Cluster struct {
	Cell   Cell
	Radius float64
	Class  RadiusClass
	Points [PointsPerCluster]Point
}

// Topological reports whether the cluster counts towards the topological region.
// Defect clusters are topological clusters with a perturbed radius.
func (c Cluster) Topological() bool {
	return c.Class == ClassTopological || c.Class == ClassDefect
}

// hexagon offsets per point as multiples of the cluster radius.
var hexagon = [PointsPerCluster][2]float64{
	{0, -1},
	{1, -1},
	{-1, 1},
	{-1, 0},
	{1, 0},
	{0, 1},
}

// Occupy builds the cluster of the given radius at cell. Every point sits at
// (one + 2/3 + a*radius, two + 2/3 + b*radius) with (a, b) taken from the
// fixed hexagon template above.
func Occupy(radius float64, class RadiusClass, cell Cell) Cluster {
	cl := Cluster{Cell: cell, Radius: radius, Class: class}
	for k, off := range hexagon {
		cl.Points[k] = Point{
			One: shift(cell.One, off[0], radius),
			Two: shift(cell.Two, off[1], radius),
		}
	}
	return cl
}

// shift evaluates n + (1/3 + sign*r) + 1/3 in the same operation order the
// downstream tools were validated against, so emitted digits stay stable.
func shift(n int, sign, r float64) float64 {
	third := 1.0 / 3.0
	switch {
	case sign > 0:
		return float64(n) + (third + r) + third
	case sign < 0:
		return float64(n) + (third - r) + third
	default:
		return float64(n) + third + third
	}
}

// Clusters is an ordered sequence of clusters in scan order.
type Clusters []Cluster

// Points flattens the sequence, preserving cluster order and point order within a cluster.
func (cs Clusters) Points() []Point {
	out := make([]Point, 0, len(cs)*PointsPerCluster)
	for _, c := range cs {
		out = append(out, c.Points[:]...)
	}
	return out
}

// Count returns the number of clusters in the given class.
func (cs Clusters) Count(class RadiusClass) int {
	n := 0
	for _, c := range cs {
		if c.Class == class {
			n++
		}
	}
	return n
}

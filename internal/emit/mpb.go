package emit

import (
	"bufio"
	"fmt"
	"math"

	"latticegen/pkg/lattice"
)

// MPB lays out the embedded pipeline: an oblique size x size supercell and an
// MPB TM band computation at the Gamma point.
type MPB struct {
	Size            int
	CylinderEpsilon float64
	CylinderRadius  float64
	Bands           int
	Resolution      int
	// CenterOffset is subtracted from both oblique coordinates of every
	// control-file center.
	CenterOffset float64
}

func (MPB) Name() string { return "mpb" }

func (m MPB) writeCellLattice(w *bufio.Writer) {
	n := 10 * m.Size
	fmt.Fprintf(w, "%s %s 0 \n", FormatNumber(float64(n)*math.Sqrt(3)/2), FormatNumber(float64(n)*0.5))
	fmt.Fprintf(w, "%s %s 0 \n", FormatNumber(float64(n)*math.Sqrt(3)/2), FormatNumber(float64(-n)*0.5))
}

func (m MPB) writeCtlHeader(w *bufio.Writer) {
	fmt.Fprintf(w, "(define cylinder_epsilon %s) \n (set! num-bands %d) \n", FormatNumber(m.CylinderEpsilon), m.Bands)
	fmt.Fprintf(w, "(set! geometry-lattice (make lattice (size %d %d no-size) \n (basis1 (/ (sqrt 3) 2) 0.5) (basis2 (/ (sqrt 3) 2) -0.5))) \n", m.Size, m.Size)
	fmt.Fprintf(w, "(define cylinder_radius %s ) \n", FormatNumber(m.CylinderRadius))
	w.WriteString("(set! geometry (list \n")
}

func (m MPB) cellPosition(p lattice.Point) (float64, float64) {
	return p.One / float64(m.Size), p.Two / float64(m.Size)
}

func (m MPB) ctlCenter(p lattice.Point) (float64, float64) {
	return p.One - m.CenterOffset, p.Two - m.CenterOffset
}

func (m MPB) writeCtlTail(w *bufio.Writer) {
	w.WriteString("(set! k-points (list (vector3 0 0 0) )) \n ")
	fmt.Fprintf(w, "(set! resolution %d) \n ", m.Resolution)
	w.WriteString("(run-tm (output-at-kpoint (vector3 0 0 0) fix-efield-phase output-efield-z))")
}

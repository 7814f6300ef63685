package emit

import (
	"bufio"
	"fmt"
	"strconv"

	"latticegen/pkg/lattice"
)

// Meep lays out the ribbon pipeline: a rectangular supercell in Cartesian
// units and a MEEP time-domain run with two circularly phased dipoles and a
// pair of flux monitors.
type Meep struct {
	SupercellX      int
	SupercellY      int
	CylinderEpsilon float64
	CylinderRadius  float64
	PMLThickness    float64
	Resolution      int
	NFreq           int
	FCen            float64
	DF              float64
	RunTime         float64
}

func (Meep) Name() string { return "meep" }

func (m Meep) writeCellLattice(w *bufio.Writer) {
	fmt.Fprintf(w, "%d 0 0 \n", 10*m.SupercellX)
	fmt.Fprintf(w, "0 %d 0 \n", 10*m.SupercellY)
}

func (m Meep) writeCtlHeader(w *bufio.Writer) {
	fmt.Fprintf(w, "(define cylinder_epsilon %s) \n", FormatNumber(m.CylinderEpsilon))
	fmt.Fprintf(w, "(set! geometry-lattice (make lattice (size %d %d no-size))) \n", m.SupercellX, m.SupercellY)
	fmt.Fprintf(w, "(define cylinder_radius %s ) \n", FormatNumber(m.CylinderRadius))
	w.WriteString("(set! geometry (list \n")
}

func (m Meep) cellPosition(p lattice.Point) (float64, float64) {
	c := lattice.Cartesian(p)
	return c.X / float64(m.SupercellX), c.Y / float64(m.SupercellY)
}

func (m Meep) ctlCenter(p lattice.Point) (float64, float64) {
	c := lattice.Cartesian(p)
	return c.X, c.Y
}

func (m Meep) writeCtlTail(w *bufio.Writer) {
	fmt.Fprintf(w, "(set! pml-layers (list (make pml (thickness %s)))) \n ", formatDecimal(m.PMLThickness))
	fmt.Fprintf(w, "(set! resolution %d) \n ", m.Resolution)
	fmt.Fprintf(w, "(define-param nfreq %d) \n ", m.NFreq)
	fmt.Fprintf(w, "(define-param fcen %s) \n ", FormatNumber(m.FCen))
	fmt.Fprintf(w, "(define-param df %s) \n ", FormatNumber(m.DF))
	w.WriteString("(set! sources (list \n ")
	writeDipole(w, "Hx", "1")
	writeDipole(w, "Hy", "(exp (* 0+1i 1.570796327)) ")
	w.WriteString(")) \n ")
	writeFluxRegion(w, "left", -3)
	writeFluxRegion(w, "right", 4)
	fmt.Fprintf(w, "(run-sources+ %s (at-beginning output-epsilon)) \n \n ", FormatNumber(m.RunTime))
	w.WriteString("(display-fluxes left right)")
}

func writeDipole(w *bufio.Writer, component, amplitude string) {
	w.WriteString("(make source \n ")
	w.WriteString("(src (make gaussian-src (frequency fcen) (fwidth df))) \n ")
	w.WriteString("(component " + component + ") \n ")
	w.WriteString("(center 0.5 0.0) \n ")
	w.WriteString("(amplitude " + amplitude + ")) ")
}

func writeFluxRegion(w *bufio.Writer, name string, x int) {
	w.WriteString("(define " + name + " \n ")
	w.WriteString("(add-flux fcen df nfreq \n ")
	w.WriteString("(make flux-region \n ")
	w.WriteString("(center " + strconv.Itoa(x) + " 0 1) (size 0 2 2)))) \n \n ")
}

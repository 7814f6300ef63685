package emit

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"latticegen/pkg/lattice"
)

// ErrClosed is returned when writing to an emitter after End.
var ErrClosed = errors.New("emit: emitter closed")

// Layout supplies the pipeline-specific parts of both files.
type Layout interface {
	// Name identifies the control-file flavour (meep, mpb).
	Name() string
	writeCellLattice(w *bufio.Writer)
	writeCtlHeader(w *bufio.Writer)
	writeCtlTail(w *bufio.Writer)
	cellPosition(p lattice.Point) (x, y float64)
	ctlCenter(p lattice.Point) (x, y float64)
}

// Emitter appends clusters to the .cell and .ctl streams in the order they
// are received. Each cluster is flushed before Emit returns. The first write
// error is sticky.
type Emitter struct {
	layout Layout
	cell   *bufio.Writer
	ctl    *bufio.Writer
	err    error
	begun  bool
	closed bool
	points int
}

// New returns an emitter writing the .cell file to cell and the control file to ctl.
func New(cell, ctl io.Writer, layout Layout) *Emitter {
	return &Emitter{layout: layout, cell: bufio.NewWriter(cell), ctl: bufio.NewWriter(ctl)}
}

// Begin writes both headers.
func (e *Emitter) Begin() error {
	if e.closed {
		return ErrClosed
	}
	if e.begun {
		return e.err
	}
	e.begun = true
	e.cell.WriteString("%block lattice_cart \n")
	e.layout.writeCellLattice(e.cell)
	e.cell.WriteString("0 0 10 \n")
	e.cell.WriteString("%endblock lattice_cart \n %block positions_frac \n")
	e.layout.writeCtlHeader(e.ctl)
	return e.flush()
}

// Emit appends the six points of c to both streams.
func (e *Emitter) Emit(c lattice.Cluster) error {
	if e.closed {
		return ErrClosed
	}
	if !e.begun {
		if err := e.Begin(); err != nil {
			return err
		}
	}
	if e.err != nil {
		return e.err
	}
	for _, p := range c.Points {
		x, y := e.layout.cellPosition(p)
		fmt.Fprintf(e.cell, "C %s %s 0 \n", FormatNumber(x), FormatNumber(y))
		cx, cy := e.layout.ctlCenter(p)
		fmt.Fprintf(e.ctl, "(make cylinder \n (center %s %s 0) (radius cylinder_radius) (height infinity) \n (material (make dielectric (epsilon cylinder_epsilon)))) \n",
			FormatNumber(cx), FormatNumber(cy))
	}
	e.points += len(c.Points)
	return e.flush()
}

// End closes the position block and the geometry list and writes the control tail.
func (e *Emitter) End() error {
	if e.closed {
		return ErrClosed
	}
	if !e.begun {
		if err := e.Begin(); err != nil {
			return err
		}
	}
	e.closed = true
	if e.err != nil {
		return e.err
	}
	e.cell.WriteString("%endblock positions_frac \n")
	e.ctl.WriteString(")) \n")
	e.layout.writeCtlTail(e.ctl)
	return e.flush()
}

// Points is the number of cylinder points emitted so far.
func (e *Emitter) Points() int { return e.points }

func (e *Emitter) flush() error {
	if e.err != nil {
		return e.err
	}
	if err := e.cell.Flush(); err != nil {
		e.err = fmt.Errorf("emit cell: %w", err)
		return e.err
	}
	if err := e.ctl.Flush(); err != nil {
		e.err = fmt.Errorf("emit %s ctl: %w", e.layout.Name(), err)
		return e.err
	}
	return nil
}

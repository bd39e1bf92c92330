package iohelpers

import (
	"bufio"
	"fmt"
	"os"

	"github.com/notargets/gocfd2d/internal/errs"
	"github.com/notargets/gocfd2d/internal/integrate"
	"github.com/notargets/gocfd2d/internal/residue"
)

// DiagnosticWriter appends the periodic text outputs (resnorms and
// mass_residue, spec.md §4.7) as plain fixed-width columns, in the
// teacher's own console-table style (model_problems/Euler2D.euler.go's
// "%8d%8.5f%8.5f" step/time/dt line), but to a file instead of stdout so
// a run's history survives past its console.
type DiagnosticWriter struct {
	resFile  *os.File
	massFile *os.File
	resW     *bufio.Writer
	massW    *bufio.Writer
}

// NewDiagnosticWriter opens (or creates) resnorms and mass_residue under
// dir, appending to any existing history from a prior run.
func NewDiagnosticWriter(dir string) (*DiagnosticWriter, error) {
	resFile, err := os.OpenFile(dir+"/resnorms", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errs.IOErr("iohelpers", "NewDiagnosticWriter", "opening resnorms: %v", err)
	}
	massFile, err := os.OpenFile(dir+"/mass_residue", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		resFile.Close()
		return nil, errs.IOErr("iohelpers", "NewDiagnosticWriter", "opening mass_residue: %v", err)
	}
	return &DiagnosticWriter{
		resFile: resFile, massFile: massFile,
		resW: bufio.NewWriter(resFile), massW: bufio.NewWriter(massFile),
	}, nil
}

// WriteResnorm appends one iteration's residual norms.
func (d *DiagnosticWriter) WriteResnorm(iter int, n residue.Norms) error {
	_, err := fmt.Fprintf(d.resW, "%10d%16.8e%16.8e%16.8e%16.8e%16.8e\n", iter, n.N1, n.N2, n.N3, n.N4, n.Combined())
	if err != nil {
		return errs.IOErr("iohelpers", "WriteResnorm", "writing: %v", err)
	}
	return d.resW.Flush()
}

// WriteMassResidue appends one iteration's per-boundary mass-flux
// diagnostic: iteration, left, right, bottom, top (5 numbers, spec.md §6).
func (d *DiagnosticWriter) WriteMassResidue(iter int, m integrate.MassFlux) error {
	if _, err := fmt.Fprintf(d.massW, "%10d%16.8e%16.8e%16.8e%16.8e\n", iter, m.Left, m.Right, m.Bottom, m.Top); err != nil {
		return errs.IOErr("iohelpers", "WriteMassResidue", "writing: %v", err)
	}
	return d.massW.Flush()
}

// Close flushes and closes both diagnostic files.
func (d *DiagnosticWriter) Close() error {
	d.resW.Flush()
	d.massW.Flush()
	if err := d.resFile.Close(); err != nil {
		return err
	}
	return d.massFile.Close()
}

// WritePressureProfile writes the bottom-wall (j=1) surface pressure, one
// value per cell, to "pressure-<interpolant>" (spec.md §4.7), the
// left/right eta-face pressures the recon package already carries.
func WritePressureProfile(dir, interpolant string, yPressLeft, yPressRight interface {
	At(i, j int) float64
}, imx int) error {
	path := dir + "/pressure-" + interpolant
	f, err := os.Create(path)
	if err != nil {
		return errs.IOErr("iohelpers", "WritePressureProfile", "creating %q: %v", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for i := 1; i <= imx-1; i++ {
		p := 0.5 * (yPressLeft.At(i, 1) + yPressRight.At(i, 1))
		if _, err := fmt.Fprintf(w, "%10d%16.8e\n", i, p); err != nil {
			return errs.IOErr("iohelpers", "WritePressureProfile", "writing: %v", err)
		}
	}
	return w.Flush()
}

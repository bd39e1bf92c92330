package iohelpers

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/notargets/gocfd2d/internal/errs"
	"github.com/notargets/gocfd2d/internal/field"
	"github.com/notargets/gocfd2d/internal/mesh"
)

// WriteStateVTK writes the interior cell state (rho,u,v,p) as a VTK legacy
// ASCII STRUCTURED_GRID file (spec.md §7 checkpoint format). The write is
// atomic: the file is built at path+".part" and renamed into place only
// once fully flushed, so a crash mid-write never leaves a truncated
// checkpoint for a restart to pick up.
func WriteStateVTK(path string, m *mesh.Mesh, s *field.State) (err error) {
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return errs.IOErr("iohelpers", "WriteStateVTK", "creating %q: %v", tmp, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(f)
	imx, jmx := m.Imx, m.Jmx
	ncells := (imx - 1) * (jmx - 1)

	fmt.Fprintln(w, "# vtk DataFile Version 3.0")
	fmt.Fprintln(w, "gocfd2d state checkpoint")
	fmt.Fprintln(w, "ASCII")
	fmt.Fprintln(w, "DATASET STRUCTURED_GRID")
	fmt.Fprintf(w, "DIMENSIONS %d %d 1\n", imx, jmx)
	fmt.Fprintf(w, "POINTS %d float\n", imx*jmx)
	for j := 0; j < jmx; j++ {
		for i := 0; i < imx; i++ {
			fmt.Fprintf(w, "%.10g %.10g 0\n", m.X[i][j], m.Y[i][j])
		}
	}
	fmt.Fprintf(w, "CELL_DATA %d\n", ncells)
	writeScalar(w, "rho", s.Rho, imx, jmx)
	writeScalar(w, "u", s.U, imx, jmx)
	writeScalar(w, "v", s.V, imx, jmx)
	writeScalar(w, "p", s.P, imx, jmx)

	if err = w.Flush(); err != nil {
		return errs.IOErr("iohelpers", "WriteStateVTK", "flushing %q: %v", tmp, err)
	}
	if err = f.Close(); err != nil {
		return errs.IOErr("iohelpers", "WriteStateVTK", "closing %q: %v", tmp, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return errs.IOErr("iohelpers", "WriteStateVTK", "renaming %q to %q: %v", tmp, path, err)
	}
	return nil
}

func writeScalar(w *bufio.Writer, name string, data interface{ At(i, j int) float64 }, imx, jmx int) {
	fmt.Fprintf(w, "SCALARS %s float 1\n", name)
	fmt.Fprintln(w, "LOOKUP_TABLE default")
	for j := 1; j <= jmx-1; j++ {
		for i := 1; i <= imx-1; i++ {
			fmt.Fprintf(w, "%.10g\n", data.At(i, j))
		}
	}
}

// ReadStateVTK loads a checkpoint written by WriteStateVTK. Ghost cells
// are not stored and must be repopulated by field.SetGhostCellData after
// loading.
func ReadStateVTK(path string, imx, jmx int) (*field.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.IOErr("iohelpers", "ReadStateVTK", "opening %q: %v", path, err)
	}
	defer f.Close()
	return readStateVTK(f, imx, jmx)
}

func readStateVTK(r io.Reader, imx, jmx int) (*field.State, error) {
	s := field.NewState(imx, jmx)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	var dims [3]int
	for sc.Scan() {
		line := sc.Text()
		switch {
		case len(line) >= 10 && line[:10] == "DIMENSIONS":
			if n, err := fmt.Sscanf(line, "DIMENSIONS %d %d %d", &dims[0], &dims[1], &dims[2]); err != nil || n < 3 {
				return nil, errs.IOErr("iohelpers", "readStateVTK", "malformed DIMENSIONS line %q", line)
			}
			if dims[0] != imx || dims[1] != jmx {
				return nil, errs.IOErr("iohelpers", "readStateVTK", "grid mismatch: file has %dx%d, expected %dx%d", dims[0], dims[1], imx, jmx)
			}
		case len(line) >= 6 && line[:6] == "POINTS":
			var n int
			fmt.Sscanf(line, "POINTS %d", &n)
			if err := skipValueLines(sc, n); err != nil {
				return nil, err
			}
		case len(line) >= 7 && line[:7] == "SCALARS":
			var name, typ string
			var comps int
			if n, err := fmt.Sscanf(line, "SCALARS %s %s %d", &name, &typ, &comps); err != nil || n < 2 {
				return nil, errs.IOErr("iohelpers", "readStateVTK", "malformed SCALARS line %q", line)
			}
			if !sc.Scan() { // LOOKUP_TABLE line
				return nil, errs.IOErr("iohelpers", "readStateVTK", "unexpected EOF after %q", line)
			}
			dst := fieldByName(s, name)
			if dst == nil {
				if err := skipValueLines(sc, (imx-1)*(jmx-1)); err != nil {
					return nil, err
				}
				continue
			}
			for j := 1; j <= jmx-1; j++ {
				for i := 1; i <= imx-1; i++ {
					if !sc.Scan() {
						return nil, errs.IOErr("iohelpers", "readStateVTK", "truncated %q data", name)
					}
					var v float64
					if _, err := fmt.Sscanf(sc.Text(), "%f", &v); err != nil {
						return nil, errs.IOErr("iohelpers", "readStateVTK", "malformed %q value %q: %v", name, sc.Text(), err)
					}
					dst.Set(i, j, v)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errs.IOErr("iohelpers", "readStateVTK", "scanning: %v", err)
	}
	return s, nil
}

func skipValueLines(sc *bufio.Scanner, n int) error {
	for k := 0; k < n; k++ {
		if !sc.Scan() {
			return errs.IOErr("iohelpers", "skipValueLines", "unexpected EOF after %d of %d lines", k, n)
		}
	}
	return nil
}

func fieldByName(s *field.State, name string) interface {
	Set(i, j int, v float64)
} {
	switch name {
	case "rho":
		return s.Rho
	case "u":
		return s.U
	case "v":
		return s.V
	case "p":
		return s.P
	default:
		return nil
	}
}

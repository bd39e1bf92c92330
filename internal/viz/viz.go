// Package viz implements the optional live field plot (spec.md §4.7's
// "optional" visualization channel), gated like the teacher's
// InputParameters.PlotMeta: a nil *Viewer disables it. The solver itself
// never opens a Viewer (Solver.Viz stays nil). Grounded directly on readfiles.PlotMesh's
// TriMesh-building idiom (github.com/notargets/avs/chart2d +
// github.com/notargets/avs/geometry), adapted from the teacher's
// triangulated DG mesh to a structured quad grid by splitting each cell
// into two triangles.
package viz

import (
	"image/color"

	"github.com/notargets/avs/chart2d"
	graphics2D "github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"

	"github.com/notargets/gocfd2d/internal/field"
	"github.com/notargets/gocfd2d/internal/mesh"
)

// Viewer holds the live chart window. A nil *Viewer is always safe to call
// methods on (no-op), matching the teacher's pattern of a pm *PlotMeta
// that callers check before plotting.
type Viewer struct {
	chart *chart2d.Chart2D
	tris  graphics2D.TriMesh
}

// New opens a live chart window sized to m's bounding box; m must be
// non-nil. Visualization is disabled by leaving the *Viewer nil instead.
func New(m *mesh.Mesh, width, height int) *Viewer {
	imx, jmx := m.Imx, m.Jmx
	points := make([]graphics2D.Point, imx*jmx)
	idx := func(i, j int) int32 { return int32(i*jmx + j) }
	var xmin, xmax, ymin, ymax float32
	for i := 0; i < imx; i++ {
		for j := 0; j < jmx; j++ {
			x, y := float32(m.X[i][j]), float32(m.Y[i][j])
			points[idx(i, j)] = graphics2D.Point{X: [2]float32{x, y}}
			if i == 0 && j == 0 {
				xmin, xmax, ymin, ymax = x, x, y, y
			}
			if x < xmin {
				xmin = x
			}
			if x > xmax {
				xmax = x
			}
			if y < ymin {
				ymin = y
			}
			if y > ymax {
				ymax = y
			}
		}
	}

	ni, nj := imx-1, jmx-1
	tris := make([]graphics2D.Triangle, 0, 2*ni*nj)
	attrs := make([][]float32, 0, 2*ni*nj)
	for i := 0; i < ni; i++ {
		for j := 0; j < nj; j++ {
			a, b, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			tris = append(tris,
				graphics2D.Triangle{Nodes: [3]int32{a, b, c}},
				graphics2D.Triangle{Nodes: [3]int32{a, c, d}},
			)
			attrs = append(attrs, make([]float32, 3), make([]float32, 3))
		}
	}

	v := &Viewer{}
	v.tris = graphics2D.TriMesh{Geometry: points, Triangles: tris, Attributes: attrs}
	v.chart = chart2d.NewChart2D(width, height, xmin, xmax, ymin, ymax)
	go v.chart.Plot()
	return v
}

// PlotDensity refreshes the window with the current density field, one
// color per cell (both triangles of a cell share its value).
func (v *Viewer) PlotDensity(s *field.State) {
	if v == nil {
		return
	}
	var fmin, fmax float32
	ti := 0
	for i := 1; i <= s.Imx-1; i++ {
		for j := 1; j <= s.Jmx-1; j++ {
			val := float32(s.Rho.At(i, j))
			for k := 0; k < 3; k++ {
				v.tris.Attributes[ti][k] = val
				v.tris.Attributes[ti+1][k] = val
			}
			if ti == 0 {
				fmin, fmax = val, val
			}
			if val < fmin {
				fmin = val
			}
			if val > fmax {
				fmax = val
			}
			ti += 2
		}
	}
	v.chart.AddColorMap(utils2.NewColorMap(fmin, fmax, 1))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if err := v.chart.AddTriMesh("rho", v.tris, chart2d.NoGlyph, chart2d.Solid, white); err != nil {
		return
	}
}

// Close is safe on a nil *Viewer. It does not close or release the chart
// window.
func (v *Viewer) Close() {
	if v == nil {
		return
	}
}

// Package mesh implements C1 of the solver: the structured (imx x jmx)
// vertex grid and the geometry (face normals, face areas, cell volumes)
// derived once from it. Geometry is immutable after Setup, matching the
// teacher's convention of computing Jacobian/metric terms once at startup
// (DG2D.NewDFR2D) and never mutating them during the time-marching loop.
package mesh

import (
	"math"

	"github.com/notargets/gocfd2d/internal/errs"
)

// Mesh holds the vertex coordinates of a structured curvilinear grid.
// X, Y are indexed [i][j], i in [0,Imx-1], j in [0,Jmx-1].
type Mesh struct {
	Imx, Jmx int
	X, Y     [][]float64
}

// NewMesh allocates a mesh of the given vertex dimensions. Imx, Jmx must
// each be >= 2 (spec.md §8: imx=jmx=2 is the minimal one-interior-cell case).
func NewMesh(imx, jmx int) (*Mesh, error) {
	if imx < 2 || jmx < 2 {
		return nil, errs.ConfigErr("mesh", "NewMesh", "imx=%d, jmx=%d must each be >= 2", imx, jmx)
	}
	m := &Mesh{Imx: imx, Jmx: jmx}
	m.X = alloc2D(imx, jmx)
	m.Y = alloc2D(imx, jmx)
	return m, nil
}

func alloc2D(n, m int) [][]float64 {
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, m)
	}
	return a
}

// NCells returns the number of interior cells in each direction.
func (m *Mesh) NCells() (ni, nj int) {
	return m.Imx - 1, m.Jmx - 1
}

// Geometry holds the per-face outward unit normals and areas, and
// per-interior-cell volumes, derived once from a Mesh. Arrays are
// allocated with the same (Imx+1)x(Jmx+1) ghost padding as the state
// field, so geometry and state share index arithmetic; ghost-ring entries
// are left zero and must never be read.
//
// XiNx/XiNy, XiA live at ξ-faces: valid for i in [1,Imx], j in [1,Jmx-1].
// EtaNx/EtaNy, EtaA live at η-faces: valid for i in [1,Imx-1], j in [1,Jmx].
// Volume is valid for i in [1,Imx-1], j in [1,Jmx-1].
type Geometry struct {
	Imx, Jmx           int
	XiNx, XiNy, XiA    [][]float64
	EtaNx, EtaNy, EtaA [][]float64
	Volume             [][]float64
}

// NewGeometry computes face normals/areas and cell volumes from m.
// Invariant (spec.md §8 #2): once computed, these never change again.
func NewGeometry(m *Mesh) (*Geometry, error) {
	imx, jmx := m.Imx, m.Jmx
	g := &Geometry{Imx: imx, Jmx: jmx}
	g.XiNx = alloc2D(imx+1, jmx+1)
	g.XiNy = alloc2D(imx+1, jmx+1)
	g.XiA = alloc2D(imx+1, jmx+1)
	g.EtaNx = alloc2D(imx+1, jmx+1)
	g.EtaNy = alloc2D(imx+1, jmx+1)
	g.EtaA = alloc2D(imx+1, jmx+1)
	g.Volume = alloc2D(imx+1, jmx+1)

	// ξ-faces: i in [1,imx] (vertex column i-1, running from vertex
	// (i-1,j-1) to (i-1,j)), j in [1,jmx-1].
	for i := 1; i <= imx; i++ {
		for j := 1; j <= jmx-1; j++ {
			x0, y0 := m.X[i-1][j-1], m.Y[i-1][j-1]
			x1, y1 := m.X[i-1][j], m.Y[i-1][j]
			dx, dy := x1-x0, y1-y0
			length := math.Hypot(dx, dy)
			if length == 0 {
				return nil, errs.AllocErr("mesh", "NewGeometry", "degenerate xi-face at i=%d,j=%d", i, j)
			}
			// Outward normal for a face running in +eta direction points
			// in +xi direction: rotate the edge tangent by -90deg.
			g.XiNx[i][j] = dy / length
			g.XiNy[i][j] = -dx / length
			g.XiA[i][j] = length
		}
	}
	// η-faces: j in [1,jmx], i in [1,imx-1].
	for j := 1; j <= jmx; j++ {
		for i := 1; i <= imx-1; i++ {
			x0, y0 := m.X[i-1][j-1], m.Y[i-1][j-1]
			x1, y1 := m.X[i][j-1], m.Y[i][j-1]
			dx, dy := x1-x0, y1-y0
			length := math.Hypot(dx, dy)
			if length == 0 {
				return nil, errs.AllocErr("mesh", "NewGeometry", "degenerate eta-face at i=%d,j=%d", i, j)
			}
			g.EtaNx[i][j] = -dy / length
			g.EtaNy[i][j] = dx / length
			g.EtaA[i][j] = length
		}
	}
	// Cell volumes via the shoelace formula on the quad (i-1,j-1)-(i,j-1)-(i,j)-(i-1,j).
	for i := 1; i <= imx-1; i++ {
		for j := 1; j <= jmx-1; j++ {
			xs := [4]float64{m.X[i-1][j-1], m.X[i][j-1], m.X[i][j], m.X[i-1][j]}
			ys := [4]float64{m.Y[i-1][j-1], m.Y[i][j-1], m.Y[i][j], m.Y[i-1][j]}
			var area float64
			for k := 0; k < 4; k++ {
				kk := (k + 1) % 4
				area += xs[k]*ys[kk] - xs[kk]*ys[k]
			}
			area = 0.5 * math.Abs(area)
			if area <= 0 {
				return nil, errs.AllocErr("mesh", "NewGeometry", "non-positive volume at i=%d,j=%d", i, j)
			}
			g.Volume[i][j] = area
		}
	}
	return g, nil
}

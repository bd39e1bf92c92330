// Package ib implements the optional immersed-boundary collaborator
// (spec.md §5): a body descriptor loaded from YAML (repurposing the
// teacher's github.com/ghodss/yaml dependency from the run-parameters file
// to this new descriptor format), classification of mesh faces that
// straddle the body interface, and the two pipeline hooks
// (ResetStatesAtInterfaceFaces, ResetGradientsAtInterfaces) the sub-step
// pipeline calls around the viscous-flux stage. Interpolation from body
// points onto interface faces uses github.com/james-bowman/sparse, since
// the weight matrix is overwhelmingly zero (each face is only influenced
// by the handful of body points within its support radius).
package ib

import (
	"math"
	"os"

	"github.com/ghodss/yaml"
	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocfd2d/internal/errs"
	"github.com/notargets/gocfd2d/internal/mesh"
	"github.com/notargets/gocfd2d/internal/recon"
)

// Point is one sampled location on the immersed body surface.
type Point struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Nx float64 `json:"nx"`
	Ny float64 `json:"ny"`
	U  float64 `json:"u"` // surface velocity, 0 for a stationary body
	V  float64 `json:"v"`
}

// Descriptor is the YAML body-geometry file (spec.md §5), independent of
// the fixed-order directive file config.Config parses.
type Descriptor struct {
	Points []Point `json:"points"`
	Radius float64 `json:"radius"` // interpolation support radius, mesh units
}

func Load(path string) (*Descriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.IOErr("ib", "Load", "reading %q: %v", path, err)
	}
	var d Descriptor
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, errs.ConfigErr("ib", "Load", "parsing %q: %v", path, err)
	}
	if d.Radius <= 0 {
		return nil, errs.ConfigErr("ib", "Load", "%q: radius must be > 0", path)
	}
	if len(d.Points) == 0 {
		return nil, errs.ConfigErr("ib", "Load", "%q: no body points", path)
	}
	return &d, nil
}

// face identifies one classified interface face.
type face struct {
	i, j int
	xi   bool // true: xi-face, false: eta-face
}

// Collaborator holds the faces classified as straddling the immersed
// body, plus the sparse interpolation weights mapping descriptor points
// onto those faces (spec.md §5).
type Collaborator struct {
	desc    *Descriptor
	faces   []face
	weights *sparse.CSR // rows: faces (in the order of `faces`), cols: desc.Points
}

// NewCollaborator classifies every xi/eta face within desc.Radius of any
// body point as an interface face, and builds inverse-distance
// interpolation weights from body points onto each classified face.
func NewCollaborator(desc *Descriptor, geo *mesh.Geometry, m *mesh.Mesh) *Collaborator {
	c := &Collaborator{desc: desc}
	for i := 1; i <= m.Imx; i++ {
		for j := 1; j <= m.Jmx-1; j++ {
			if i > len(geo.XiNx)-1 {
				continue
			}
			x, y := faceCenterXi(m, i, j)
			if nearestDist(desc, x, y) <= desc.Radius {
				c.faces = append(c.faces, face{i: i, j: j, xi: true})
			}
		}
	}
	for i := 1; i <= m.Imx-1; i++ {
		for j := 1; j <= m.Jmx; j++ {
			x, y := faceCenterEta(m, i, j)
			if nearestDist(desc, x, y) <= desc.Radius {
				c.faces = append(c.faces, face{i: i, j: j, xi: false})
			}
		}
	}
	c.weights = buildWeights(desc, m, c.faces)
	return c
}

func faceCenterXi(m *mesh.Mesh, i, j int) (float64, float64) {
	x0, y0 := m.X[i-1][j-1], m.Y[i-1][j-1]
	x1, y1 := m.X[i-1][j], m.Y[i-1][j]
	return 0.5 * (x0 + x1), 0.5 * (y0 + y1)
}

func faceCenterEta(m *mesh.Mesh, i, j int) (float64, float64) {
	x0, y0 := m.X[i-1][j-1], m.Y[i-1][j-1]
	x1, y1 := m.X[i][j-1], m.Y[i][j-1]
	return 0.5 * (x0 + x1), 0.5 * (y0 + y1)
}

func nearestDist(desc *Descriptor, x, y float64) float64 {
	best := math.Inf(1)
	for _, p := range desc.Points {
		d := math.Hypot(x-p.X, y-p.Y)
		if d < best {
			best = d
		}
	}
	return best
}

// buildWeights assembles an inverse-distance-weighted sparse interpolation
// matrix, one row per classified face, normalized to sum to 1 across the
// contributing points within desc.Radius.
func buildWeights(desc *Descriptor, m *mesh.Mesh, faces []face) *sparse.CSR {
	dok := sparse.NewDOK(len(faces), len(desc.Points))
	for r, f := range faces {
		var x, y float64
		if f.xi {
			x, y = faceCenterXi(m, f.i, f.j)
		} else {
			x, y = faceCenterEta(m, f.i, f.j)
		}
		var sum float64
		type contrib struct {
			col int
			w   float64
		}
		var contribs []contrib
		for c, p := range desc.Points {
			d := math.Hypot(x-p.X, y-p.Y)
			if d > desc.Radius {
				continue
			}
			w := 1.0 / (d + 1e-9)
			contribs = append(contribs, contrib{c, w})
			sum += w
		}
		if sum == 0 {
			continue
		}
		for _, ct := range contribs {
			dok.Set(r, ct.col, ct.w/sum)
		}
	}
	return dok.ToCSR()
}

// ResetStatesAtInterfaceFaces overwrites the reconstructed left/right
// primitive velocity at every classified interface face with the
// body-surface velocity interpolated via the sparse weight matrix
// (spec.md §5's interface-face state reset hook).
func (c *Collaborator) ResetStatesAtInterfaceFaces(faces *recon.Faces) {
	if c == nil {
		return
	}
	uVec := pointVec(c.desc, func(p Point) float64 { return p.U })
	vVec := pointVec(c.desc, func(p Point) float64 { return p.V })
	var uInterp, vInterp mat.VecDense
	uInterp.MulVec(c.weights, uVec)
	vInterp.MulVec(c.weights, vVec)

	for r, f := range c.faces {
		u, v := uInterp.AtVec(r), vInterp.AtVec(r)
		if f.xi {
			faces.XiLeft.U.Set(f.i, f.j, u)
			faces.XiRight.U.Set(f.i, f.j, u)
			faces.XiLeft.V.Set(f.i, f.j, v)
			faces.XiRight.V.Set(f.i, f.j, v)
		} else {
			faces.EtaLeft.U.Set(f.i, f.j, u)
			faces.EtaRight.U.Set(f.i, f.j, u)
			faces.EtaLeft.V.Set(f.i, f.j, v)
			faces.EtaRight.V.Set(f.i, f.j, v)
		}
	}
}

// ResetGradientsAtInterfaces is called around the viscous-flux stage
// (spec.md §4.8 sub-step order). No separate face gradients are stored,
// so it re-applies ResetStatesAtInterfaceFaces, which changes nothing when
// the interface states were just reset; it exists as an explicit pipeline
// hook so a future higher-order IB treatment has a single call site.
func (c *Collaborator) ResetGradientsAtInterfaces(faces *recon.Faces) {
	if c == nil {
		return
	}
	c.ResetStatesAtInterfaceFaces(faces)
}

func pointVec(desc *Descriptor, sel func(Point) float64) *mat.VecDense {
	data := make([]float64, len(desc.Points))
	for i, p := range desc.Points {
		data[i] = sel(p)
	}
	return mat.NewVecDense(len(data), data)
}

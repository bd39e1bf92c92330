// Package recon implements C3: reconstruction of left/right primitive
// states at every xi- and eta-face from cell averages. Two variants are
// supported (spec.md §4.2): "none" (first-order copy) and a MUSCL-class
// minmod-limited reconstruction, grounded in the teacher's FluxType/InitType
// style of a small named-variant registry (Euler2D.fluxes.go, initialization.go).
package recon

import (
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocfd2d/internal/errs"
	"github.com/notargets/gocfd2d/internal/field"
)

// FaceState holds one side (left or right) of the four primitive
// components at every face of one family (xi or eta).
type FaceState struct {
	Rho, U, V, P *mat.Dense
}

func newFaceState(n, m int) *FaceState {
	return &FaceState{
		Rho: mat.NewDense(n, m, nil),
		U:   mat.NewDense(n, m, nil),
		V:   mat.NewDense(n, m, nil),
		P:   mat.NewDense(n, m, nil),
	}
}

// Faces holds left/right states at every xi- and eta-face, plus the
// sound-speed and pressure helper arrays the flux scheme and
// surface-pressure output consume (spec.md §4.2).
type Faces struct {
	Imx, Jmx int

	XiLeft, XiRight   *FaceState
	EtaLeft, EtaRight *FaceState

	XiSoundLeft, XiSoundRight *mat.Dense
	YPressLeft, YPressRight   *mat.Dense // eta-face pressure, used for bottom-wall surface-pressure output
}

// NewFaces allocates face arrays over the same ghost-padded index range as
// the state field, so face i/j indices line up directly with cell indices.
func NewFaces(imx, jmx int) *Faces {
	n, m := imx+1, jmx+1
	return &Faces{
		Imx: imx, Jmx: jmx,
		XiLeft: newFaceState(n, m), XiRight: newFaceState(n, m),
		EtaLeft: newFaceState(n, m), EtaRight: newFaceState(n, m),
		XiSoundLeft: mat.NewDense(n, m, nil), XiSoundRight: mat.NewDense(n, m, nil),
		YPressLeft: mat.NewDense(n, m, nil), YPressRight: mat.NewDense(n, m, nil),
	}
}

// Interpolant is the reconstruction variant tag.
type Interpolant uint8

const (
	None Interpolant = iota
	MUSCL
)

func NewInterpolant(name string) (Interpolant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "":
		return None, nil
	case "muscl", "musc", "limited", "minmod":
		return MUSCL, nil
	default:
		return 0, errs.ConfigErr("recon", "NewInterpolant", "unknown interpolant %q", name)
	}
}

func (it Interpolant) String() string {
	if it == MUSCL {
		return "MUSCL"
	}
	return "none"
}

// Reconstruct populates f's xi- and eta-face left/right states from s,
// using the first-order copy or the MUSCL-limited extrapolation.
func Reconstruct(it Interpolant, s *field.State, f *Faces, th field.Thermo) {
	reconstructXi(it, s.Rho, f.XiLeft.Rho, f.XiRight.Rho, s.Imx, s.Jmx)
	reconstructXi(it, s.U, f.XiLeft.U, f.XiRight.U, s.Imx, s.Jmx)
	reconstructXi(it, s.V, f.XiLeft.V, f.XiRight.V, s.Imx, s.Jmx)
	reconstructXi(it, s.P, f.XiLeft.P, f.XiRight.P, s.Imx, s.Jmx)

	reconstructEta(it, s.Rho, f.EtaLeft.Rho, f.EtaRight.Rho, s.Imx, s.Jmx)
	reconstructEta(it, s.U, f.EtaLeft.U, f.EtaRight.U, s.Imx, s.Jmx)
	reconstructEta(it, s.V, f.EtaLeft.V, f.EtaRight.V, s.Imx, s.Jmx)
	reconstructEta(it, s.P, f.EtaLeft.P, f.EtaRight.P, s.Imx, s.Jmx)

	for i := 1; i <= s.Imx; i++ {
		for j := 1; j <= s.Jmx-1; j++ {
			f.XiSoundLeft.Set(i, j, th.SoundSpeed(f.XiLeft.Rho.At(i, j), f.XiLeft.P.At(i, j)))
			f.XiSoundRight.Set(i, j, th.SoundSpeed(f.XiRight.Rho.At(i, j), f.XiRight.P.At(i, j)))
		}
	}
	for i := 1; i <= s.Imx-1; i++ {
		for j := 1; j <= s.Jmx; j++ {
			f.YPressLeft.Set(i, j, f.EtaLeft.P.At(i, j))
			f.YPressRight.Set(i, j, f.EtaRight.P.At(i, j))
		}
	}
}

// reconstructXi fills left/right at xi-faces i in [1,imx], j in [1,jmx-1].
func reconstructXi(it Interpolant, cell, left, right *mat.Dense, imx, jmx int) {
	for i := 1; i <= imx; i++ {
		for j := 1; j <= jmx-1; j++ {
			l := cell.At(i-1, j)
			r := cell.At(i, j)
			if it == MUSCL {
				if i-2 >= 0 {
					slopeL := minmod(cell.At(i-1, j)-cell.At(i-2, j), cell.At(i, j)-cell.At(i-1, j))
					l = cell.At(i-1, j) + 0.5*slopeL
				}
				if i+1 <= imx {
					slopeR := minmod(cell.At(i, j)-cell.At(i-1, j), cell.At(i+1, j)-cell.At(i, j))
					r = cell.At(i, j) - 0.5*slopeR
				}
			}
			left.Set(i, j, l)
			right.Set(i, j, r)
		}
	}
}

// reconstructEta fills left/right at eta-faces j in [1,jmx], i in [1,imx-1].
func reconstructEta(it Interpolant, cell, left, right *mat.Dense, imx, jmx int) {
	for j := 1; j <= jmx; j++ {
		for i := 1; i <= imx-1; i++ {
			l := cell.At(i, j-1)
			r := cell.At(i, j)
			if it == MUSCL {
				if j-2 >= 0 {
					slopeL := minmod(cell.At(i, j-1)-cell.At(i, j-2), cell.At(i, j)-cell.At(i, j-1))
					l = cell.At(i, j-1) + 0.5*slopeL
				}
				if j+1 <= jmx {
					slopeR := minmod(cell.At(i, j)-cell.At(i, j-1), cell.At(i, j+1)-cell.At(i, j))
					r = cell.At(i, j) - 0.5*slopeR
				}
			}
			left.Set(i, j, l)
			right.Set(i, j, r)
		}
	}
}

// minmod is the standard TVD slope limiter: returns 0 if a and b disagree
// in sign, else the smaller-magnitude of the two.
func minmod(a, b float64) float64 {
	if a*b <= 0 {
		return 0
	}
	if abs(a) < abs(b) {
		return a
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

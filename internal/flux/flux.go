// Package flux implements C4: the flux-vector-splitting schemes (Van Leer,
// LDFSS(0)) that turn left/right face states into 4-component conservative
// fluxes F (xi-faces) and G (eta-faces), plus the optional additive
// viscous flux contribution (Sutherland's law). Scheme selection follows
// the teacher's small named-variant pattern (Euler2D.FluxType /
// Euler2D.FluxCalc/AvgFlux/LaxFlux/RoeFlux), and LDFSS(0) is expressed
// exactly as spec.md requires: "call Van Leer, then adjust c+-" rather
// than as an independent formula.
package flux

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocfd2d/internal/errs"
	"github.com/notargets/gocfd2d/internal/field"
	"github.com/notargets/gocfd2d/internal/mesh"
	"github.com/notargets/gocfd2d/internal/recon"
)

// Scheme selects the flux-splitting variant.
type Scheme uint8

const (
	VanLeer Scheme = iota
	LDFSS0
)

func NewScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "van_leer":
		return VanLeer, nil
	case "ldfss0":
		return LDFSS0, nil
	default:
		return 0, errs.ConfigErr("flux", "NewScheme", "unknown scheme_name %q", name)
	}
}

func (s Scheme) String() string {
	if s == LDFSS0 {
		return "LDFSS(0)"
	}
	return "Van Leer"
}

// Fluxes holds the 4-component conservative fluxes at xi-faces (valid for
// i in [1,Imx], j in [1,Jmx-1]) and eta-faces (valid for i in [1,Imx-1],
// j in [1,Jmx]).
type Fluxes struct {
	Imx, Jmx int
	F, G     [5]*mat.Dense // index 1..4, component 0 unused
}

func NewFluxes(imx, jmx int) *Fluxes {
	n, m := imx+1, jmx+1
	fl := &Fluxes{Imx: imx, Jmx: jmx}
	for k := 1; k <= 4; k++ {
		fl.F[k] = mat.NewDense(n, m, nil)
		fl.G[k] = mat.NewDense(n, m, nil)
	}
	return fl
}

// Zero resets F and G to zero (sub-step step (i), spec.md §4.8).
func (fl *Fluxes) Zero() {
	for k := 1; k <= 4; k++ {
		fl.F[k].Zero()
		fl.G[k].Zero()
	}
}

// conservative converts (rho,u,v,p) to (rhoU, rhoV, E, H).
func conservative(rho, u, v, p, gamma float64) (rhoU, rhoV, energy, enthalpy float64) {
	rhoU = rho * u
	rhoV = rho * v
	energy = p/(gamma-1) + 0.5*rho*(u*u+v*v)
	enthalpy = (energy + p) / rho
	return
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// splitMach returns the dimensionless Van Leer split Mach coefficients
// mPlus (from the left state) and mMinus (from the right state), per
// spec.md §4.3: for |M|>=1 the branch is fully upwind, otherwise the
// classic (M+-1)^2/4 polynomial split.
func splitMach(mL, mR float64) (mPlus, mMinus float64) {
	switch {
	case mL <= -1:
		mPlus = 0
	case mL >= 1:
		mPlus = mL
	default:
		mPlus = 0.25 * (mL + 1) * (mL + 1)
	}
	switch {
	case mR >= 1:
		mMinus = 0
	case mR <= -1:
		mMinus = mR
	default:
		mMinus = -0.25 * (mR - 1) * (mR - 1)
	}
	return
}

// splitPressure returns the Van Leer split pressure coefficients (alpha=0
// polynomial form), used unmodified by both Van Leer and LDFSS(0) — only
// the convective c+- are adjusted by LDFSS.
func splitPressure(mL, mR, pL, pR float64) (pPlus, pMinus float64) {
	switch {
	case mL <= -1:
		pPlus = 0
	case mL >= 1:
		pPlus = pL
	default:
		pPlus = pL * (mL + 1) * (mL + 1) * (2 - mL) / 4
	}
	switch {
	case mR >= 1:
		pMinus = 0
	case mR <= -1:
		pMinus = pR
	default:
		pMinus = pR * (mR - 1) * (mR - 1) * (2 + mR) / 4
	}
	return
}

// ldfssCorrection implements spec.md §4.3's LDFSS(0) convective correction:
//
//	M_ldfss = (1/4) betaL betaR (sqrt((ML^2+MR^2)/2) - 1)^2
//
// scaled on each side by (1 - (pL-pR)/(2 rho_side a_avg^2)), where
// betaL = 1/2(1+sign(ML)), betaR = 1/2(1-sign(MR)) mirror the +/- split
// convention used for the convective coefficients themselves.
func ldfssCorrection(mL, mR, pL, pR, rhoL, rhoR, aAvg float64) (mPlusCorr, mMinusCorr float64) {
	betaL := 0.5 * (1 + sign(mL))
	betaR := 0.5 * (1 - sign(mR))
	base := 0.25 * betaL * betaR * sq(math.Sqrt((mL*mL+mR*mR)/2)-1)
	scaleL := 1 - (pL-pR)/(2*rhoL*aAvg*aAvg)
	scaleR := 1 - (pL-pR)/(2*rhoR*aAvg*aAvg)
	return base * scaleL, base * scaleR
}

func sq(v float64) float64 { return v * v }

// faceFlux assembles the 4-component conservative flux at one face given
// left/right primitive states, a unit normal, the scheme, and gamma.
func faceFlux(scheme Scheme, rhoL, uL, vL, pL, rhoR, uR, vR, pR, nx, ny, aL, aR, gamma float64) [5]float64 {
	aAvg := 0.5 * (aL + aR)
	unL := uL*nx + vL*ny
	unR := uR*nx + vR*ny
	mL := unL / aAvg
	mR := unR / aAvg

	mPlus, mMinus := splitMach(mL, mR)
	if scheme == LDFSS0 {
		corrPlus, corrMinus := ldfssCorrection(mL, mR, pL, pR, rhoL, rhoR, aAvg)
		mPlus -= corrPlus
		mMinus += corrMinus
	}
	pPlus, pMinus := splitPressure(mL, mR, pL, pR)

	cPlus := rhoL * aAvg * mPlus
	cMinus := rhoR * aAvg * mMinus

	_, _, _, hL := conservative(rhoL, uL, vL, pL, gamma)
	_, _, _, hR := conservative(rhoR, uR, vR, pR, gamma)

	var fl [5]float64
	fl[1] = cPlus + cMinus
	fl[2] = cPlus*uL + cMinus*uR + (pPlus+pMinus)*nx
	fl[3] = cPlus*vL + cMinus*vR + (pPlus+pMinus)*ny
	fl[4] = cPlus*hL + cMinus*hR
	return fl
}

// ComputeInviscid adds the inviscid flux-split contribution into fl.F/fl.G
// (additive per spec.md §4.3's viscous/inviscid ordering contract: viscous
// fluxes, if any, must already have been added by ComputeViscous).
func ComputeInviscid(scheme Scheme, faces *recon.Faces, geo *mesh.Geometry, gamma float64, fl *Fluxes) {
	imx, jmx := faces.Imx, faces.Jmx
	for i := 1; i <= imx; i++ {
		for j := 1; j <= jmx-1; j++ {
			nx, ny := geo.XiNx[i][j], geo.XiNy[i][j]
			rhoL, uL, vL, pL := faces.XiLeft.Rho.At(i, j), faces.XiLeft.U.At(i, j), faces.XiLeft.V.At(i, j), faces.XiLeft.P.At(i, j)
			rhoR, uR, vR, pR := faces.XiRight.Rho.At(i, j), faces.XiRight.U.At(i, j), faces.XiRight.V.At(i, j), faces.XiRight.P.At(i, j)
			aL, aR := faces.XiSoundLeft.At(i, j), faces.XiSoundRight.At(i, j)
			f := faceFlux(scheme, rhoL, uL, vL, pL, rhoR, uR, vR, pR, nx, ny, aL, aR, gamma)
			area := geo.XiA[i][j]
			for k := 1; k <= 4; k++ {
				fl.F[k].Set(i, j, fl.F[k].At(i, j)+f[k]*area)
			}
		}
	}
	for i := 1; i <= imx-1; i++ {
		for j := 1; j <= jmx; j++ {
			nx, ny := geo.EtaNx[i][j], geo.EtaNy[i][j]
			rhoL, uL, vL, pL := faces.EtaLeft.Rho.At(i, j), faces.EtaLeft.U.At(i, j), faces.EtaLeft.V.At(i, j), faces.EtaLeft.P.At(i, j)
			rhoR, uR, vR, pR := faces.EtaRight.Rho.At(i, j), faces.EtaRight.U.At(i, j), faces.EtaRight.V.At(i, j), faces.EtaRight.P.At(i, j)
			// Sound speed at eta faces, from the reconstructed eta-face
			// states (recon stores sound speeds for xi-faces only).
			aL := math.Sqrt(math.Abs(gamma * pL / rhoL))
			aR := math.Sqrt(math.Abs(gamma * pR / rhoR))
			f := faceFlux(scheme, rhoL, uL, vL, pL, rhoR, uR, vR, pR, nx, ny, aL, aR, gamma)
			area := geo.EtaA[i][j]
			for k := 1; k <= 4; k++ {
				fl.G[k].Set(i, j, fl.G[k].At(i, j)+f[k]*area)
			}
		}
	}
}

// ComputeViscous adds the Navier-Stokes viscous flux contribution into
// fl.F/fl.G, using a thin-layer (normal-gradient-only) approximation: the
// gradient normal to each face is estimated from the two adjoining cells'
// first-order (copy) states and a cell-width proxy h = V/A, matching
// spec.md's ordering requirement that viscous fluxes always use 1st-order
// reconstruction regardless of the inviscid interpolant.
func ComputeViscous(s *field.State, geo *mesh.Geometry, th field.Thermo, fl *Fluxes) {
	if !th.Viscous() {
		return
	}
	cp := th.Gamma * th.RGas / (th.Gamma - 1)
	imx, jmx := s.Imx, s.Jmx

	mu := func(rho, p float64) float64 {
		T := p / (rho * th.RGas)
		return th.MuRef * math.Pow(T/th.TRef, 1.5) * (th.TRef + th.SutherlandTemp) / (T + th.SutherlandTemp)
	}

	for i := 1; i <= imx; i++ {
		for j := 1; j <= jmx-1; j++ {
			rhoL, uL, vL, pL := s.Rho.At(i-1, j), s.U.At(i-1, j), s.V.At(i-1, j), s.P.At(i-1, j)
			rhoR, uR, vR, pR := s.Rho.At(i, j), s.U.At(i, j), s.V.At(i, j), s.P.At(i, j)
			vol := 0.5 * (volOrFace(geo.Volume, i-1, j) + volOrFace(geo.Volume, i, j))
			h := vol / geo.XiA[i][j]
			nx, ny := geo.XiNx[i][j], geo.XiNy[i][j]
			muFace := 0.5 * (mu(rhoL, pL) + mu(rhoR, pR))
			visc := viscousFlux(uL, vL, pL, rhoL, uR, vR, pR, rhoR, h, nx, ny, muFace, cp, th)
			area := geo.XiA[i][j]
			for k := 1; k <= 4; k++ {
				fl.F[k].Set(i, j, fl.F[k].At(i, j)+visc[k]*area)
			}
		}
	}
	for i := 1; i <= imx-1; i++ {
		for j := 1; j <= jmx; j++ {
			rhoL, uL, vL, pL := s.Rho.At(i, j-1), s.U.At(i, j-1), s.V.At(i, j-1), s.P.At(i, j-1)
			rhoR, uR, vR, pR := s.Rho.At(i, j), s.U.At(i, j), s.V.At(i, j), s.P.At(i, j)
			vol := 0.5 * (volOrFace(geo.Volume, i, j-1) + volOrFace(geo.Volume, i, j))
			h := vol / geo.EtaA[i][j]
			nx, ny := geo.EtaNx[i][j], geo.EtaNy[i][j]
			muFace := 0.5 * (mu(rhoL, pL) + mu(rhoR, pR))
			visc := viscousFlux(uL, vL, pL, rhoL, uR, vR, pR, rhoR, h, nx, ny, muFace, cp, th)
			area := geo.EtaA[i][j]
			for k := 1; k <= 4; k++ {
				fl.G[k].Set(i, j, fl.G[k].At(i, j)+visc[k]*area)
			}
		}
	}
}

func volOrFace(v [][]float64, i, j int) float64 {
	if i < 0 || j < 0 || i >= len(v) || j >= len(v[0]) {
		return 0
	}
	return v[i][j]
}

// viscousFlux returns the thin-layer viscous flux normal to a face with
// unit normal (nx,ny), using only the gradient in the normal direction
// (the cross-derivative terms are a deliberate thin-layer simplification;
// spec.md does not prescribe a particular gradient stencil).
func viscousFlux(uL, vL, pL, rhoL, uR, vR, pR, rhoR, h, nx, ny, mu, cp float64, th field.Thermo) [5]float64 {
	dudn := (uR - uL) / h
	dvdn := (vR - vL) / h
	TL := pL / (rhoL * th.RGas)
	TR := pR / (rhoR * th.RGas)
	dTdn := (TR - TL) / h

	k := mu * cp / th.Pr
	// Project the (assumed normal-only) velocity gradient onto x/y using
	// the face normal, giving a thin-layer stress tensor.
	dudx, dudy := dudn*nx, dudn*ny
	dvdx, dvdy := dvdn*nx, dvdn*ny

	tauXX := mu * ((4.0/3.0)*dudx - (2.0/3.0)*dvdy)
	tauYY := mu * ((4.0/3.0)*dvdy - (2.0/3.0)*dudx)
	tauXY := mu * (dudy + dvdx)
	qx := -k * dTdn * nx
	qy := -k * dTdn * ny

	uMid := 0.5 * (uL + uR)
	vMid := 0.5 * (vL + vR)

	var v [5]float64
	v[1] = 0
	v[2] = -(tauXX*nx + tauXY*ny)
	v[3] = -(tauXY*nx + tauYY*ny)
	v[4] = -((uMid*tauXX+vMid*tauXY-qx)*nx + (uMid*tauXY+vMid*tauYY-qy)*ny)
	return v
}

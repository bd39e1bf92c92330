package flux

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const gamma = 1.4

func TestSplitMachSupersonicReducesToUpwind(t *testing.T) {
	mPlus, mMinus := splitMach(2.0, 2.0)
	assert.Equal(t, 2.0, mPlus)
	assert.Equal(t, 0.0, mMinus)

	mPlus, mMinus = splitMach(-2.0, -2.0)
	assert.Equal(t, 0.0, mPlus)
	assert.Equal(t, -2.0, mMinus)
}

func TestSplitPressureSupersonicReducesToUpwind(t *testing.T) {
	pPlus, pMinus := splitPressure(2.0, 2.0, 10.0, 5.0)
	assert.Equal(t, 10.0, pPlus)
	assert.Equal(t, 0.0, pMinus)
}

// TestFaceFluxSupersonicUpwind checks that both schemes reduce to the exact
// physical upwind flux once the face Mach number is fully supersonic, per
// the invariant that Van Leer/LDFSS(0) both recover upwinding outside the
// transonic window.
func TestFaceFluxSupersonicUpwind(t *testing.T) {
	rhoL, uL, vL, pL := 1.0, 800.0, 0.0, 100000.0
	rhoR, uR, vR, pR := 0.5, 400.0, 0.0, 50000.0
	aL := math.Sqrt(gamma * pL / rhoL)
	aR := math.Sqrt(gamma * pR / rhoR)

	for _, scheme := range []Scheme{VanLeer, LDFSS0} {
		f := faceFlux(scheme, rhoL, uL, vL, pL, rhoR, uR, vR, pR, 1, 0, aL, aR, gamma)
		rhoU, _, _, hL := conservative(rhoL, uL, vL, pL, gamma)
		assert.InDelta(t, rhoL*uL, rhoU, 1e-9)
		assert.InDelta(t, rhoL*uL, f[1], 1e-6, "mass flux scheme=%v", scheme)
		assert.InDelta(t, rhoL*uL*uL+pL, f[2], 1e-3, "momentum flux scheme=%v", scheme)
		assert.InDelta(t, rhoL*uL*hL, f[4], 1e-2, "energy flux scheme=%v", scheme)
	}
}

// TestFaceFluxUniformFreeStreamIdentical checks that the flux is a pure
// function of state (not face index), so a uniform free stream produces an
// identical flux value at every face and the residue telescopes to zero.
func TestFaceFluxUniformFreeStreamIdentical(t *testing.T) {
	rho, u, v, p := 1.0, 300.0, 50.0, 90000.0
	a := math.Sqrt(gamma * p / rho)

	f1 := faceFlux(LDFSS0, rho, u, v, p, rho, u, v, p, 1, 0, a, a, gamma)

	// Same state on both sides and the same face normal: flux is a pure
	// function of its arguments, so repeating the call reproduces
	// identically, which is what lets a uniform free stream's residue
	// telescope exactly to zero across every face.
	f1b := faceFlux(LDFSS0, rho, u, v, p, rho, u, v, p, 1, 0, a, a, gamma)
	assert.Equal(t, f1, f1b)
}

func TestSchemeStringAndParse(t *testing.T) {
	s, err := NewScheme("van_leer")
	assert.NoError(t, err)
	assert.Equal(t, VanLeer, s)
	assert.Equal(t, "Van Leer", s.String())

	s, err = NewScheme("LDFSS0")
	assert.NoError(t, err)
	assert.Equal(t, LDFSS0, s)
	assert.Equal(t, "LDFSS(0)", s.String())

	_, err = NewScheme("roe")
	assert.Error(t, err)
}

func TestLdfssCorrectionVanishesSupersonic(t *testing.T) {
	mPlusCorr, mMinusCorr := ldfssCorrection(2.0, 2.0, 100000, 90000, 1.0, 0.9, 340.0)
	assert.Equal(t, 0.0, mPlusCorr)
	assert.Equal(t, 0.0, mMinusCorr)
}

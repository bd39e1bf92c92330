package integrate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gocfd2d/internal/field"
	"github.com/notargets/gocfd2d/internal/flux"
	"github.com/notargets/gocfd2d/internal/residue"
)

func uniformDEdx(imx, jmx int, drho, du, dv, dp float64) *residue.DEdx {
	d := residue.NewDEdx(imx, jmx)
	for i := 1; i <= imx-1; i++ {
		for j := 1; j <= jmx-1; j++ {
			d.DRho.Set(i, j, drho)
			d.DU.Set(i, j, du)
			d.DV.Set(i, j, dv)
			d.DP.Set(i, j, dp)
		}
	}
	return d
}

func TestEulerUpdateAppliesUniformStep(t *testing.T) {
	const imx, jmx = 4, 4
	s := field.NewState(imx, jmx)
	field.InitFreeStream(s, field.FreeStream{Rho: 1, U: 10, V: 0, P: 100000})

	d := uniformDEdx(imx, jmx, 0.1, 0, 0, 0)
	dt := UniformDt(imx, jmx, 0.5)

	assert.NoError(t, EulerUpdate(s, d, dt))
	assert.InDelta(t, 1.05, s.Rho.At(2, 2), 1e-12)
}

func TestEulerUpdateRejectsNegativeDensity(t *testing.T) {
	const imx, jmx = 4, 4
	s := field.NewState(imx, jmx)
	field.InitFreeStream(s, field.FreeStream{Rho: 1, U: 10, V: 0, P: 100000})

	d := uniformDEdx(imx, jmx, -10, 0, 0, 0)
	dt := UniformDt(imx, jmx, 1.0)

	// rho would become 1 - 10 = -9, so every cell keeps its previous state.
	assert.NoError(t, EulerUpdate(s, d, dt))
	assert.InDelta(t, 1.0, s.Rho.At(2, 2), 1e-12)
}

func TestRK4StageAndFinalReduceToEulerOnConstantDerivative(t *testing.T) {
	const imx, jmx = 4, 4
	qn := field.NewState(imx, jmx)
	field.InitFreeStream(qn, field.FreeStream{Rho: 1, U: 0, V: 0, P: 100000})

	d := uniformDEdx(imx, jmx, 1.0, 0, 0, 0)
	dt := UniformDt(imx, jmx, 0.2)

	dst := qn.Clone()
	assert.NoError(t, RK4Final(dst, qn, dt, d, d, d, d))
	// With every stage derivative identical, classic RK4's weighted
	// average (k1+2k2+2k3+k4)/6 collapses to the common value, so the
	// result must match a single forward-Euler step exactly.
	assert.InDelta(t, qn.Rho.At(2, 2)+0.2*1.0, dst.Rho.At(2, 2), 1e-12)
}

func TestMassResidualZeroForUniformFreeStream(t *testing.T) {
	const imx, jmx = 5, 5
	fl := flux.NewFluxes(imx, jmx)
	for k := 1; k <= 4; k++ {
		for i := 0; i <= imx; i++ {
			for j := 0; j <= jmx; j++ {
				fl.F[k].Set(i, j, 3.7)
				fl.G[k].Set(i, j, -1.2)
			}
		}
	}
	m := MassResidual(fl)
	assert.InDelta(t, 0.0, m.Net(), 1e-9)
}

func TestMassResidualSeparatesBoundaryComponents(t *testing.T) {
	const imx, jmx = 4, 4
	fl := flux.NewFluxes(imx, jmx)
	for j := 1; j <= jmx-1; j++ {
		fl.F[1].Set(1, j, 2.0)
		fl.F[1].Set(imx, j, 5.0)
	}
	for i := 1; i <= imx-1; i++ {
		fl.G[1].Set(i, 1, -1.0)
		fl.G[1].Set(i, jmx, 3.0)
	}

	m := MassResidual(fl)
	assert.InDelta(t, -2.0*float64(jmx-1), m.Left, 1e-9)
	assert.InDelta(t, 5.0*float64(jmx-1), m.Right, 1e-9)
	assert.InDelta(t, 1.0*float64(imx-1), m.Bottom, 1e-9)
	assert.InDelta(t, 3.0*float64(imx-1), m.Top, 1e-9)
}

func TestConvergedUsesRatioToFirstNorm(t *testing.T) {
	n0 := residue.Norms{N1: 1, N2: 1, N3: 1, N4: 1}
	nSmall := residue.Norms{N1: 1e-7, N2: 1e-7, N3: 1e-7, N4: 1e-7}
	assert.True(t, Converged(nSmall, n0, 1e-6))
	assert.False(t, Converged(n0, n0, 1e-6))
}

func TestCheckTimeStepRejectsNonPhysical(t *testing.T) {
	assert.Error(t, CheckTimeStep(0))
	assert.Error(t, CheckTimeStep(-1))
	assert.Error(t, CheckTimeStep(math.NaN()))
	assert.NoError(t, CheckTimeStep(0.001))
}

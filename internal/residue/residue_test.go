package residue

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/notargets/gocfd2d/internal/field"
	"github.com/notargets/gocfd2d/internal/flux"
	"github.com/notargets/gocfd2d/internal/mesh"
	"github.com/notargets/gocfd2d/internal/recon"
)

func uniformSquareGeo(t *testing.T, n int) *mesh.Geometry {
	t.Helper()
	m, err := mesh.NewMesh(n, n)
	assert.NoError(t, err)
	h := 1.0 / float64(n-1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.X[i][j] = float64(i) * h
			m.Y[i][j] = float64(j) * h
		}
	}
	geo, err := mesh.NewGeometry(m)
	assert.NoError(t, err)
	return geo
}

// TestComputeUniformFreeStreamResidueIsZero exercises the full
// flux-split-then-divergence path on a uniform free stream and checks the
// residue is exactly zero everywhere, per spec.md's free-stream-preservation
// invariant.
func TestComputeUniformFreeStreamResidueIsZero(t *testing.T) {
	const n = 6
	geo := uniformSquareGeo(t, n)
	imx, jmx := n-1, n-1

	fs := field.FreeStream{Rho: 1.0, U: 300, V: 0, P: 90000}
	s := field.NewState(imx, jmx)
	field.InitFreeStream(s, fs)
	th := field.Thermo{Gamma: 1.4, RGas: 287}

	faces := recon.NewFaces(imx, jmx)
	recon.Reconstruct(recon.None, s, faces, th)
	fl := flux.NewFluxes(imx, jmx)
	flux.ComputeInviscid(flux.LDFSS0, faces, geo, 1.4, fl)

	res := Compute(fl, geo)
	for i := 1; i <= imx-1; i++ {
		for j := 1; j <= jmx-1; j++ {
			for k := 1; k <= 4; k++ {
				assert.InDelta(t, 0.0, res.R[k].At(i, j), 1e-8)
			}
		}
	}
}

func TestGlobalTimeStepUsesOverrideWhenSet(t *testing.T) {
	geo := uniformSquareGeo(t, 4)
	local := LocalTimeStep(field.NewState(geo.Imx, geo.Jmx), geo, field.Thermo{Gamma: 1.4, RGas: 287}, 0.5)
	dt := GlobalTimeStep(local, geo.Imx, geo.Jmx, 0.001)
	assert.Equal(t, 0.001, dt)
}

func TestGlobalTimeStepIsMinOfLocalWhenNoOverride(t *testing.T) {
	geo := uniformSquareGeo(t, 4)
	s := field.NewState(geo.Imx, geo.Jmx)
	fs := field.FreeStream{Rho: 1, U: 100, V: 0, P: 100000}
	field.InitFreeStream(s, fs)
	th := field.Thermo{Gamma: 1.4, RGas: 287}
	local := LocalTimeStep(s, geo, th, 0.5)
	dt := GlobalTimeStep(local, geo.Imx, geo.Jmx, 0)

	minSeen := local.At(1, 1)
	for i := 1; i <= geo.Imx-1; i++ {
		for j := 1; j <= geo.Jmx-1; j++ {
			if v := local.At(i, j); v < minSeen {
				minSeen = v
			}
		}
	}
	assert.Equal(t, minSeen, dt)
}

func TestNormsCombinedIsEuclideanOfComponents(t *testing.T) {
	n := Norms{N1: 1, N2: 2, N3: 2, N4: 0}
	assert.InDelta(t, 3.0, n.Combined(), 1e-12)
}

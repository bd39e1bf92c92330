package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// unitSquareMesh builds an (n-1)x(n-1)-cell uniform unit-square grid, for
// geometry tests that want exactly known volumes/areas.
func unitSquareMesh(t *testing.T, n int) *Mesh {
	t.Helper()
	m, err := NewMesh(n, n)
	assert.NoError(t, err)
	h := 1.0 / float64(n-1)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.X[i][j] = float64(i) * h
			m.Y[i][j] = float64(j) * h
		}
	}
	return m
}

func TestNewMeshRejectsTooSmall(t *testing.T) {
	_, err := NewMesh(1, 2)
	assert.Error(t, err)
}

func TestNewGeometryUniformGridVolumesAndAreas(t *testing.T) {
	m := unitSquareMesh(t, 4)
	geo, err := NewGeometry(m)
	assert.NoError(t, err)

	h := 1.0 / 3.0
	for i := 1; i <= m.Imx-1; i++ {
		for j := 1; j <= m.Jmx-1; j++ {
			assert.InDelta(t, h*h, geo.Volume[i][j], 1e-12)
		}
	}
	for i := 1; i <= m.Imx; i++ {
		for j := 1; j <= m.Jmx-1; j++ {
			assert.InDelta(t, h, geo.XiA[i][j], 1e-12)
			assert.InDelta(t, 1.0, geo.XiNx[i][j], 1e-12)
			assert.InDelta(t, 0.0, geo.XiNy[i][j], 1e-12)
		}
	}
}

func TestNewGeometryDegenerateFaceErrors(t *testing.T) {
	m := unitSquareMesh(t, 3)
	m.X[0][1] = m.X[0][0]
	m.Y[0][1] = m.Y[0][0]
	_, err := NewGeometry(m)
	assert.Error(t, err)
}

package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDirective() string {
	return `
# comment line, skipped
van_leer
minmod
3.5
l
RK4
1e-6
grid.dat
~
~
1000
100
1
1.4
287.0
1.0
300.0
0.0
100000.0
0.0
288.0
110.4
0.72
`
}

func TestParseValidDirectiveFile(t *testing.T) {
	cfg, err := Parse(strings.NewReader(validDirective()))
	assert.NoError(t, err)
	assert.Equal(t, "van_leer", cfg.SchemeName)
	assert.Equal(t, "minmod", cfg.Interpolant)
	assert.InDelta(t, 3.5, cfg.CFL, 1e-12)
	assert.Equal(t, TimeStepLocal, cfg.TimeStepMethod)
	assert.Equal(t, AccuracyRK4, cfg.TimeAccuracy)
	assert.Equal(t, "grid.dat", cfg.GridFile)
	assert.Equal(t, "", cfg.IBFile)
	assert.Equal(t, "", cfg.StateLoadFile)
	assert.Equal(t, 1000, cfg.MaxIters)
	assert.Equal(t, "freestream", cfg.InitCase)
}

func TestParseRejectsUnknownScheme(t *testing.T) {
	bad := strings.Replace(validDirective(), "van_leer", "roe", 1)
	_, err := Parse(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestParseRejectsMissingGridFile(t *testing.T) {
	bad := strings.Replace(validDirective(), "grid.dat", "~", 1)
	_, err := Parse(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestParseRejectsTruncatedFile(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(validDirective()), "\n")
	truncated := strings.Join(lines[:5], "\n")
	_, err := Parse(strings.NewReader(truncated))
	assert.Error(t, err)
}

func TestParseGlobalTimeStepWithValue(t *testing.T) {
	withGlobal := strings.Replace(validDirective(), "\nl\n", "\ng 0.0005\n", 1)
	cfg, err := Parse(strings.NewReader(withGlobal))
	assert.NoError(t, err)
	assert.Equal(t, TimeStepGlobal, cfg.TimeStepMethod)
	assert.InDelta(t, 0.0005, cfg.GlobalTimeStep, 1e-12)
}

func TestSupersonicFlag(t *testing.T) {
	cfg := &Config{Gamma: 1.4, PInf: 100000, RhoInf: 1, UInf: 800, VInf: 0}
	assert.True(t, cfg.Supersonic())

	cfg.UInf = 50
	assert.False(t, cfg.Supersonic())
}

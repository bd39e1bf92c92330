// Package solver implements C8, the orchestration layer: Setup/Destroy
// resource lifecycle, the per-sub-step pipeline (spec.md §4.8), and the
// outer time-marching loop. Solver is an explicit value returned from
// Setup and threaded through every call — unlike the teacher's Euler
// struct, which is built once and lives as the sole owner of its fields
// for the process lifetime, this solver is also explicitly destroyed
// (closing its diagnostic files and optional viewer) so a caller can run
// more than one in a process (e.g. solve then a follow-on inspect), per
// spec.md §9's design note against module-level global state.
package solver

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocfd2d/internal/config"
	"github.com/notargets/gocfd2d/internal/errs"
	"github.com/notargets/gocfd2d/internal/field"
	"github.com/notargets/gocfd2d/internal/flux"
	"github.com/notargets/gocfd2d/internal/ib"
	"github.com/notargets/gocfd2d/internal/integrate"
	"github.com/notargets/gocfd2d/internal/iohelpers"
	"github.com/notargets/gocfd2d/internal/mesh"
	"github.com/notargets/gocfd2d/internal/recon"
	"github.com/notargets/gocfd2d/internal/residue"
	"github.com/notargets/gocfd2d/internal/viz"
)

// Solver bundles everything one solve needs: mesh, geometry, state,
// scratch face/flux arrays, and the resolved scheme/interpolant/ghost
// policy selections.
type Solver struct {
	RunID string

	Cfg   *config.Config
	Mesh  *mesh.Mesh
	Geo   *mesh.Geometry
	State *field.State

	FreeStream field.FreeStream
	Thermo     field.Thermo
	Supersonic bool

	Interpolant recon.Interpolant
	Scheme      flux.Scheme
	GhostPolicy field.GhostPolicy

	Faces  *recon.Faces
	Fluxes *flux.Fluxes

	IB   *ib.Collaborator
	Diag *iohelpers.DiagnosticWriter
	Viz  *viz.Viewer

	Log *logrus.Logger

	Iter     int
	SimClock float64
	Norms0   residue.Norms
	haveN0   bool
}

// Setup builds a Solver from a parsed directive file: loads the grid,
// computes geometry, initializes the state (from a checkpoint, free
// stream, or the supplemented shock-tube case), and resolves the scheme/
// interpolant/optional IB descriptor.
func Setup(cfg *config.Config, outDir string) (*Solver, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(levelFromDebug(cfg.DebugLevel))

	m, err := iohelpers.ReadGrid(cfg.GridFile)
	if err != nil {
		return nil, err
	}
	geo, err := mesh.NewGeometry(m)
	if err != nil {
		return nil, err
	}

	th := field.Thermo{
		Gamma: cfg.Gamma, RGas: cfg.RGas, MuRef: cfg.MuRef, TRef: cfg.TRef,
		SutherlandTemp: cfg.SutherlandTemp, Pr: cfg.Pr,
	}
	fs := field.FreeStream{Rho: cfg.RhoInf, U: cfg.UInf, V: cfg.VInf, P: cfg.PInf}
	supersonic := field.Supersonic(fs, th)

	var s *field.State
	switch {
	case cfg.StateLoadFile != "":
		if s, err = iohelpers.ReadStateVTK(cfg.StateLoadFile, m.Imx, m.Jmx); err != nil {
			return nil, err
		}
	case cfg.InitCase == "shocktube":
		s = field.NewState(m.Imx, m.Jmx)
		InitShockTube(s)
	default:
		s = field.NewState(m.Imx, m.Jmx)
		field.InitFreeStream(s, fs)
	}

	interp, err := recon.NewInterpolant(cfg.Interpolant)
	if err != nil {
		return nil, err
	}
	scheme, err := flux.NewScheme(cfg.SchemeName)
	if err != nil {
		return nil, err
	}

	var collaborator *ib.Collaborator
	if cfg.IBFile != "" {
		desc, err := ib.Load(cfg.IBFile)
		if err != nil {
			return nil, err
		}
		collaborator = ib.NewCollaborator(desc, geo, m)
	}

	diag, err := iohelpers.NewDiagnosticWriter(outDir)
	if err != nil {
		return nil, err
	}

	sol := &Solver{
		RunID: uuid.New().String(),
		Cfg:   cfg, Mesh: m, Geo: geo, State: s,
		FreeStream: fs, Thermo: th, Supersonic: supersonic,
		Interpolant: interp, Scheme: scheme, GhostPolicy: field.DefaultGhostPolicy(),
		Faces: recon.NewFaces(m.Imx, m.Jmx), Fluxes: flux.NewFluxes(m.Imx, m.Jmx),
		IB: collaborator, Diag: diag, Log: log,
	}
	log.Infof("run %s: grid %dx%d scheme=%s interpolant=%s viscous=%v", sol.RunID, m.Imx, m.Jmx, scheme, interp, th.Viscous())
	return sol, nil
}

// Destroy releases the solver's open resources.
func (s *Solver) Destroy() error {
	s.Viz.Close()
	return s.Diag.Close()
}

func levelFromDebug(level int) logrus.Level {
	switch {
	case level <= 0:
		return logrus.WarnLevel
	case level == 1:
		return logrus.InfoLevel
	default:
		return logrus.DebugLevel
	}
}

// SubStep runs one evaluation of the spatial operator (spec.md §4.8): it
// returns the flux divergence residue and the primitive-variable rate of
// change dQ/dt, leaving s.Faces/s.Fluxes populated for any diagnostic that
// wants the face-level detail (e.g. the surface-pressure output).
func (s *Solver) SubStep() (*residue.Residue, *residue.DEdx, error) {
	s.Fluxes.Zero()
	field.SetGhostCellData(s.State, s.FreeStream, s.Thermo, s.Supersonic, s.GhostPolicy)

	recon.Reconstruct(recon.None, s.State, s.Faces, s.Thermo)
	if s.IB != nil {
		s.IB.ResetStatesAtInterfaceFaces(s.Faces)
	}
	if s.Thermo.Viscous() {
		if s.IB != nil {
			s.IB.ResetGradientsAtInterfaces(s.Faces)
		}
		flux.ComputeViscous(s.State, s.Geo, s.Thermo, s.Fluxes)
	}
	if s.Interpolant != recon.None {
		recon.Reconstruct(s.Interpolant, s.State, s.Faces, s.Thermo)
		if s.IB != nil {
			s.IB.ResetStatesAtInterfaceFaces(s.Faces)
		}
	}
	flux.ComputeInviscid(s.Scheme, s.Faces, s.Geo, s.Thermo.Gamma, s.Fluxes)

	res := residue.Compute(s.Fluxes, s.Geo)
	dEdx := residue.ComputeDEdx(res, s.State, s.Thermo.Gamma)
	return res, dEdx, nil
}

// Dt returns the Δt field to use for the current state, per cfg's
// time-stepping method (spec.md §4.5) broadcast to a uniform per-cell
// field when global; RK4 callers call this once per outer step (not per
// stage), matching the classic RK4's single Δt per full step.
func (s *Solver) Dt() *mat.Dense {
	local := residue.LocalTimeStep(s.State, s.Geo, s.Thermo, s.Cfg.CFL)
	if s.Cfg.TimeStepMethod == config.TimeStepGlobal {
		g := residue.GlobalTimeStep(local, s.Mesh.Imx, s.Mesh.Jmx, s.Cfg.GlobalTimeStep)
		return integrate.UniformDt(s.Mesh.Imx, s.Mesh.Jmx, g)
	}
	return local
}

// StepForwardEuler advances the solver state by one forward-Euler step
// using the current dt selection, and returns the residue evaluated at
// the pre-update state (the conventional iterate on which convergence is
// judged).
func (s *Solver) StepForwardEuler() (*residue.Residue, error) {
	res, dEdx, err := s.SubStep()
	if err != nil {
		return nil, err
	}
	dtField := s.Dt()
	if err := integrate.EulerUpdate(s.State, dEdx, dtField); err != nil {
		return nil, err
	}
	s.advanceClock(dtField)
	return res, nil
}

// StepRK4 advances the solver state by one classic 4-stage Runge-Kutta
// step, running the full sub-step pipeline at each stage (spec.md §4.6),
// and returns the residue evaluated at the pre-update state Q^n (the k1
// stage). A non-physical state after the final update is not fatal: it is
// logged at debug level and the run continues.
func (s *Solver) StepRK4() (*residue.Residue, error) {
	qn := s.State.Clone()
	dtField := s.Dt()

	res0, k1, err := s.SubStep()
	if err != nil {
		return nil, err
	}
	s.State = integrate.RK4Stage(qn, k1, dtField, 0.5)
	_, k2, err := s.SubStep()
	if err != nil {
		return nil, err
	}
	s.State = integrate.RK4Stage(qn, k2, dtField, 0.5)
	_, k3, err := s.SubStep()
	if err != nil {
		return nil, err
	}
	s.State = integrate.RK4Stage(qn, k3, dtField, 1.0)
	_, k4, err := s.SubStep()
	if err != nil {
		return nil, err
	}

	if err := integrate.RK4Final(qn, qn, dtField, k1, k2, k3, k4); err != nil {
		s.Log.Debugf("RK4 update: %v", err)
	}
	s.State = qn
	s.advanceClock(dtField)
	return res0, nil
}

func (s *Solver) advanceClock(dt *mat.Dense) {
	s.SimClock += dt.At(1, 1)
	s.Iter++
}

// CheckConvergence records the first norms as the normalizer and reports
// whether the current residual has converged relative to it (spec.md
// §9(c)).
func (s *Solver) CheckConvergence(n residue.Norms) bool {
	if !s.haveN0 {
		s.Norms0 = n
		s.haveN0 = true
	}
	if integrate.Converged(n, s.Norms0, s.Cfg.Tolerance) {
		return true
	}
	return false
}

// InitShockTube fills s with Sod's shock-tube initial condition (the
// supplemented init_case alternative to free-stream, spec.md §3/§9):
// rho=1,p=1,u=0 for i <= imx/2, rho=0.125,p=0.1,u=0 otherwise, matching
// the teacher's sod_shock_tube.SOD_calc reference values exactly.
func InitShockTube(s *field.State) {
	mid := s.Imx / 2
	rows, cols := s.Rho.Dims()
	for i := 0; i < rows; i++ {
		rho, p := 1.0, 1.0
		if i > mid {
			rho, p = 0.125, 0.1
		}
		for j := 0; j < cols; j++ {
			s.Rho.Set(i, j, rho)
			s.U.Set(i, j, 0)
			s.V.Set(i, j, 0)
			s.P.Set(i, j, p)
		}
	}
}

// Checkpoint writes the current state to path as a VTK legacy ASCII file.
func (s *Solver) Checkpoint(path string) error {
	if err := field.CheckPositivity(s.State); err != nil {
		return errs.NumericalErr("solver", "Checkpoint", "refusing to checkpoint a non-physical state: %v", err)
	}
	return iohelpers.WriteStateVTK(path, s.Mesh, s.State)
}

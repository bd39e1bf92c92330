/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/notargets/gocfd2d/internal/config"
	"github.com/notargets/gocfd2d/internal/integrate"
	"github.com/notargets/gocfd2d/internal/iohelpers"
	"github.com/notargets/gocfd2d/internal/residue"
	"github.com/notargets/gocfd2d/internal/solver"
)

var (
	solveOutDir  string
	solveProfile bool
)

// solveCmd runs a directive file from a cold (free-stream or shock-tube)
// start to either max_iters or the convergence tolerance, per spec.md §4.
var solveCmd = &cobra.Command{
	Use:   "solve [directive-file]",
	Short: "Run the solver from a cold start using a directive file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if solveProfile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(solveOutDir)).Stop()
		}
		return runSolve(args[0])
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringVar(&solveOutDir, "out", ".", "directory for diagnostic and checkpoint output")
	solveCmd.Flags().BoolVar(&solveProfile, "profile", false, "collect a CPU profile of the run")
}

func runSolve(directivePath string) error {
	cfg, err := config.Load(directivePath)
	if err != nil {
		return err
	}
	return runSolveWithConfig(cfg, directivePath)
}

// runSolveWithConfig runs an already-parsed directive, letting a caller
// (restartCmd) override fields such as StateLoadFile before the run starts.
func runSolveWithConfig(cfg *config.Config, directivePath string) error {
	if err := os.MkdirAll(solveOutDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %q: %w", solveOutDir, err)
	}

	sol, err := solver.Setup(cfg, solveOutDir)
	if err != nil {
		return err
	}
	defer sol.Destroy()

	if err := writeManifest(solveOutDir, sol.RunID, cfg); err != nil {
		return err
	}

	for iter := 0; iter < cfg.MaxIters; iter++ {
		var res *residue.Residue
		var stepErr error
		if cfg.TimeAccuracy == config.AccuracyRK4 {
			res, stepErr = sol.StepRK4()
		} else {
			res, stepErr = sol.StepForwardEuler()
		}
		if stepErr != nil {
			return fmt.Errorf("iteration %d: %w", iter, stepErr)
		}

		norms := residue.L2(res, sol.FreeStream)
		if err := sol.Diag.WriteResnorm(sol.Iter, norms); err != nil {
			return err
		}
		mass := integrate.MassResidual(sol.Fluxes)
		if err := sol.Diag.WriteMassResidue(sol.Iter, mass); err != nil {
			return err
		}

		if cfg.CheckpointIter > 0 && sol.Iter%cfg.CheckpointIter == 0 {
			if err := sol.Checkpoint(filepath.Join(solveOutDir, "checkpoint.vtk")); err != nil {
				return err
			}
		}

		if sol.CheckConvergence(norms) {
			sol.Log.Infof("converged at iteration %d", sol.Iter)
			break
		}
	}

	if err := iohelpers.WritePressureProfile(solveOutDir, cfg.Interpolant, sol.Faces.YPressLeft, sol.Faces.YPressRight, sol.Mesh.Imx); err != nil {
		return err
	}
	return sol.Checkpoint(filepath.Join(solveOutDir, "final.vtk"))
}

// manifest is the supplemented per-run metadata file (spec.md §9
// supplement): a run's RunID and the directive values that produced it,
// so a checkpoint or diagnostic file can always be traced back to the
// configuration that generated it.
type manifest struct {
	RunID       string  `json:"run_id"`
	SchemeName  string  `json:"scheme_name"`
	Interpolant string  `json:"interpolant"`
	CFL         float64 `json:"cfl"`
	GridFile    string  `json:"grid_file"`
}

func writeManifest(dir, runID string, cfg *config.Config) error {
	m := manifest{RunID: runID, SchemeName: cfg.SchemeName, Interpolant: cfg.Interpolant, CFL: cfg.CFL, GridFile: cfg.GridFile}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o644)
}

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
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gocfd2d/internal/iohelpers"
	"github.com/notargets/gocfd2d/internal/mesh"
)

// inspectCmd is a parent for the read-only inspection subcommands
// (spec.md §3 supplement: tooling to check a grid or a checkpoint without
// running a solve).
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect a grid or checkpoint file",
}

var inspectGridCmd = &cobra.Command{
	Use:   "grid [grid-file]",
	Short: "Print grid dimensions and cell-volume summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := iohelpers.ReadGrid(args[0])
		if err != nil {
			return err
		}
		geo, err := mesh.NewGeometry(m)
		if err != nil {
			return err
		}
		minV, maxV := volumeRange(geo, m.Imx, m.Jmx)
		fmt.Printf("imx=%d jmx=%d  volume: min=%.6e max=%.6e\n", m.Imx, m.Jmx, minV, maxV)
		return nil
	},
}

func volumeRange(geo *mesh.Geometry, imx, jmx int) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for i := 1; i < imx; i++ {
		for j := 1; j < jmx; j++ {
			v := geo.Volume[i][j]
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}

func denseRange(d *mat.Dense) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	rows, cols := d.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := d.At(i, j)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	return min, max
}

var inspectStateCmd = &cobra.Command{
	Use:   "state [vtk-file] [imx] [jmx]",
	Short: "Print density and pressure ranges for a checkpoint",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var imx, jmx int
		if _, err := fmt.Sscanf(args[1], "%d", &imx); err != nil {
			return fmt.Errorf("parsing imx: %w", err)
		}
		if _, err := fmt.Sscanf(args[2], "%d", &jmx); err != nil {
			return fmt.Errorf("parsing jmx: %w", err)
		}
		s, err := iohelpers.ReadStateVTK(args[0], imx, jmx)
		if err != nil {
			return err
		}
		rmin, rmax := denseRange(s.Rho)
		pmin, pmax := denseRange(s.P)
		fmt.Printf("rho: min=%.6f max=%.6f  p: min=%.6f max=%.6f\n", rmin, rmax, pmin, pmax)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.AddCommand(inspectGridCmd)
	inspectCmd.AddCommand(inspectStateCmd)
}

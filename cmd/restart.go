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

	"github.com/spf13/cobra"

	"github.com/notargets/gocfd2d/internal/config"
)

var restartStateFile string

// restartCmd runs a directive file but overrides state_load_file with an
// explicit checkpoint path, so a run can resume without editing the
// directive file in place.
var restartCmd = &cobra.Command{
	Use:   "restart [directive-file]",
	Short: "Resume a run from a checkpoint file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		if restartStateFile == "" {
			return fmt.Errorf("restart requires --state-file")
		}
		cfg.StateLoadFile = restartStateFile
		return runSolveWithConfig(cfg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(restartCmd)
	restartCmd.Flags().StringVar(&restartStateFile, "state-file", "", "checkpoint VTK file to resume from (required)")
	restartCmd.Flags().StringVar(&solveOutDir, "out", ".", "directory for diagnostic and checkpoint output")
}

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
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd is the base command every subcommand attaches to, finishing
// the cobra+viper scaffold the teacher's own cmd/1D.go and cmd/2D.go were
// already built against but never wired to a root (no rootCmd definition
// shipped with them).
var rootCmd = &cobra.Command{
	Use:   "gocfd2d",
	Short: "A 2D cell-centered finite-volume compressible-flow solver",
	Long: `gocfd2d solves the 2D Euler/Navier-Stokes equations on a structured
curvilinear mesh using flux-vector-splitting (Van Leer / LDFSS(0)) schemes.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "viper-config", "", "viper config file (default is $HOME/.gocfd2d.yaml)")
}

// initConfig reads an optional viper config file and GOCFD2D_-prefixed
// environment variables into viper. The directive-file loader
// (config.Load) does not consult viper, so these values do not override
// any directive.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gocfd2d")
	}
	viper.SetEnvPrefix("GOCFD2D")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// Copyright 2025 Plantbench, Inc
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plantbench/setpointgen/internal/config"
	"github.com/plantbench/setpointgen/internal/exporters"
	"github.com/plantbench/setpointgen/internal/setpoint"
	"github.com/plantbench/setpointgen/internal/state"
)

var (
	traceSteps  int64
	traceOutput string
)

var TraceCmd = &cobra.Command{
	Use:   "trace <config.yaml>...",
	Short: "Dump one driver's trajectory as CSV",
	Long:  `Run the first configured driver standalone and write its trajectory as step,value CSV rows for offline plotting.`,
	RunE: func(_ *cobra.Command, args []string) error {
		if len(args) < 1 {
			return errors.New("no config files provided")
		}
		return Trace(args)
	},
}

func init() {
	TraceCmd.Flags().Int64Var(&traceSteps, "steps", config.DefaultSteps, "number of ticks to run")
	TraceCmd.Flags().StringVarP(&traceOutput, "output", "o", "", "output file (default stdout)")
}

func Trace(args []string) error {
	cfg, err := config.LoadConfigs(args)
	if err != nil {
		return fmt.Errorf("error loading config files: %w", err)
	}
	if len(cfg.Drivers) == 0 {
		return errors.New("no drivers found in config")
	}
	if traceSteps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", traceSteps)
	}

	d := cfg.Drivers[0]
	seed := state.ResolveSeed(cfg.Seed)
	g, err := setpoint.NewFromSpec(state.SubSeed(seed, d.Name), d.Spec)
	if err != nil {
		return fmt.Errorf("error creating driver %q: %w", d.Name, err)
	}

	values := make([]float64, traceSteps)
	for i := range values {
		values[i] = g.Step()
	}

	out := os.Stdout
	if traceOutput != "" {
		f, err := os.Create(traceOutput)
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return exporters.NewCSVWriter(out).WriteTrajectory("Time", "SetPoint [%]", values)
}

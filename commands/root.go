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

import "github.com/spf13/cobra"

// version is stamped by the release build.
var version = "dev"

var root = &cobra.Command{
	Use:     "setpointgen",
	Short:   "Setpointgen drives simulated industrial processes",
	Long:    `Setpointgen generates seedable, bounded, piecewise-linear setpoint trajectories for driving a simulated industrial process.`,
	Version: version,
}

func Execute() error {
	root.AddCommand(SimulateCmd)
	root.AddCommand(TraceCmd)

	return root.Execute()
}

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

package setpoint

import (
	"fmt"

	"github.com/plantbench/setpointgen/internal/driver"
)

var _ driver.Driver = (*Generator)(nil)

// Filter advances the generator one tick and publishes all four state
// fields into the host's state vector.
func (g *Generator) Filter(state driver.Vector) {
	state.SetValue(driver.FieldSetPoint, g.Step())
	state.SetValue(driver.FieldSetPointChangeRatePerStep, g.st.ChangeRatePerStep)
	state.SetValue(driver.FieldSetPointCurrentSteps, float64(g.st.CurrentSteps))
	state.SetValue(driver.FieldSetPointLastSequenceSteps, float64(g.st.LastSequenceSteps))
}

// SetConfiguration bulk-restores the generator state from the vector. All
// four fields must be present; the values themselves are trusted.
func (g *Generator) SetConfiguration(state driver.Vector) error {
	value, ok := state.Value(driver.FieldSetPoint)
	if !ok {
		return fmt.Errorf("%w: %s", driver.ErrMissingField, driver.FieldSetPoint)
	}
	rate, ok := state.Value(driver.FieldSetPointChangeRatePerStep)
	if !ok {
		return fmt.Errorf("%w: %s", driver.ErrMissingField, driver.FieldSetPointChangeRatePerStep)
	}
	current, ok := state.Value(driver.FieldSetPointCurrentSteps)
	if !ok {
		return fmt.Errorf("%w: %s", driver.ErrMissingField, driver.FieldSetPointCurrentSteps)
	}
	last, ok := state.Value(driver.FieldSetPointLastSequenceSteps)
	if !ok {
		return fmt.Errorf("%w: %s", driver.ErrMissingField, driver.FieldSetPointLastSequenceSteps)
	}
	g.Restore(State{
		Value:             value,
		ChangeRatePerStep: rate,
		CurrentSteps:      int(current),
		LastSequenceSteps: int(last),
	})
	return nil
}

// State snapshots the four state fields into a fresh vector.
func (g *Generator) State() driver.Vector {
	state := driver.NewMapVector()
	state.SetValue(driver.FieldSetPoint, g.st.Value)
	state.SetValue(driver.FieldSetPointChangeRatePerStep, g.st.ChangeRatePerStep)
	state.SetValue(driver.FieldSetPointCurrentSteps, float64(g.st.CurrentSteps))
	state.SetValue(driver.FieldSetPointLastSequenceSteps, float64(g.st.LastSequenceSteps))
	return state
}

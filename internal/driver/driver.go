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

// Package driver defines the contract between the simulation loop and a
// pluggable external driver, plus the named-value vector the two sides use
// to exchange state.
package driver

import "errors"

// Field names a setpoint driver publishes into the state vector.
const (
	FieldSetPoint                  = "SET_POINT"
	FieldSetPointChangeRatePerStep = "SET_POINT_CHANGE_RATE_PER_STEP"
	FieldSetPointCurrentSteps      = "SET_POINT_CURRENT_STEPS"
	FieldSetPointLastSequenceSteps = "SET_POINT_LAST_SEQUENCE_STEPS"
)

// ErrMissingField is returned when a state vector lacks a field the driver
// needs for a bulk restore.
var ErrMissingField = errors.New("missing field in state vector")

// Vector is a named-value state vector owned by the host simulator. The
// driver only needs get/set-by-name semantics on it.
type Vector interface {
	Value(name string) (float64, bool)
	SetValue(name string, value float64)
}

// Driver is the per-tick plug-in contract of the simulation loop.
type Driver interface {
	// SetSeed reseeds the driver's random source.
	SetSeed(seed uint64)
	// Filter advances the driver one tick and publishes its fields into
	// the state vector.
	Filter(state Vector)
	// SetConfiguration performs a bulk state restore from the vector.
	SetConfiguration(state Vector) error
	// State snapshots the driver's fields into a fresh vector.
	State() Vector
	// Reconfigure applies a partial spec map to the driver's configuration.
	Reconfigure(spec map[string]any) error
}

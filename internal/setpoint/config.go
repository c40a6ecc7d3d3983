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

// Stationary values are expressed as a percentage of process range.
const (
	stationaryMin = 0.0
	stationaryMax = 100.0
)

// Config is the immutable numeric configuration of a generator.
// StationaryValue is a pointer so "present" and "zero" stay distinguishable;
// it is required when Stationary is set.
type Config struct {
	Stationary           bool     `mapstructure:"stationary,omitempty" yaml:"stationary,omitempty" json:"stationary,omitempty"`
	StationaryValue      *float64 `mapstructure:"stationaryValue,omitempty" yaml:"stationaryValue,omitempty" json:"stationaryValue,omitempty"`
	MaxChangeRatePerStep float64  `mapstructure:"maxChangeRatePerStep" yaml:"maxChangeRatePerStep" json:"maxChangeRatePerStep"`
	MaxSequenceLength    int      `mapstructure:"maxSequenceLength" yaml:"maxSequenceLength" json:"maxSequenceLength"`
	MinSetpoint          float64  `mapstructure:"minSetpoint" yaml:"minSetpoint" json:"minSetpoint"`
	MaxSetpoint          float64  `mapstructure:"maxSetpoint" yaml:"maxSetpoint" json:"maxSetpoint"`
	StepSize             float64  `mapstructure:"stepSize" yaml:"stepSize" json:"stepSize"`
}

// Validate checks the construction-time constraints. A stationary config
// only needs a valid stationary value; everything else must always hold.
func (c Config) Validate() error {
	if c.Stationary {
		if c.StationaryValue == nil {
			return &ConfigError{Field: "stationaryValue", Err: ErrStationaryValueRequired}
		}
		if *c.StationaryValue < stationaryMin || *c.StationaryValue > stationaryMax {
			return &ConfigError{Field: "stationaryValue", Err: ErrStationaryValueRange}
		}
		return nil
	}
	if c.MaxChangeRatePerStep <= 0 {
		return &ConfigError{Field: "maxChangeRatePerStep", Err: ErrNonPositiveChangeRate}
	}
	if c.MaxSequenceLength < 2 {
		return &ConfigError{Field: "maxSequenceLength", Err: ErrSequenceLengthTooShort}
	}
	if c.MinSetpoint > c.MaxSetpoint {
		return &ConfigError{Field: "minSetpoint", Err: ErrBoundsReversed}
	}
	return nil
}

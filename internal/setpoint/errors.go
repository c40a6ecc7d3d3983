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
	"errors"
	"fmt"
)

var (
	ErrStationaryValueRequired = errors.New("stationary generator requires a stationary value")
	ErrStationaryValueRange    = errors.New("stationary value must be within [0, 100]")
	ErrNonPositiveChangeRate   = errors.New("maxChangeRatePerStep must be positive")
	ErrSequenceLengthTooShort  = errors.New("maxSequenceLength must be at least 2")
	ErrBoundsReversed          = errors.New("minSetpoint must not exceed maxSetpoint")
)

// ConfigError reports which configuration field failed validation.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("setpoint config field %q: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

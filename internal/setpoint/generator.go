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

// Package setpoint implements a seedable, bounded, piecewise-linear random
// signal used to drive an external input of a simulated industrial process.
// The signal advances one discrete tick at a time: each segment has a
// uniformly sampled duration and slope, the value clamps at the configured
// bounds, and a clamp flips the slope sign with probability one half, so the
// trajectory can press against a bound for several ticks before reflecting.
package setpoint

import (
	"fmt"

	"github.com/plantbench/setpointgen/internal/config"
	"github.com/plantbench/setpointgen/internal/state"
)

// Source is the randomness a generator consumes. *rand.Rand from
// math/rand/v2 satisfies it; tests inject scripted values.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// State is the mutable portion of a generator, the unit of
// snapshot/restore for checkpointing a simulation episode.
type State struct {
	Value             float64
	ChangeRatePerStep float64
	CurrentSteps      int
	LastSequenceSteps int
}

// Generator owns its state and its random source. It is not safe for
// concurrent use; the simulation loop steps one instance sequentially.
type Generator struct {
	cfg Config
	st  State
	rng Source
}

// New validates cfg, seeds the random source, and samples the first segment.
// A zero seed falls back to a time-derived one. A stationary generator pins
// its value and never samples.
func New(seed uint64, cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		cfg: cfg,
		rng: state.MakeRNG(seed),
	}
	if cfg.Stationary {
		g.st.Value = *cfg.StationaryValue
		return g, nil
	}
	g.st.ChangeRatePerStep, g.st.LastSequenceSteps = sampleSegment(cfg, g.rng)
	return g, nil
}

// NewFromSpec decodes a raw spec map into a Config and constructs a
// generator from it. Unknown keys in the spec are an error.
func NewFromSpec(seed uint64, spec map[string]any) (*Generator, error) {
	var cfg Config
	decoder, err := config.NewMapstructureDecoder(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(spec); err != nil {
		return nil, fmt.Errorf("unable to decode setpoint spec: %w", err)
	}
	return New(seed, cfg)
}

// Step advances the generator by exactly one tick and returns the new value.
func (g *Generator) Step() float64 {
	g.st = advance(g.cfg, g.st, g.rng)
	return g.st.Value
}

// advance is the one-tick transition. It is pure in (cfg, st); all
// randomness comes from rng.
func advance(cfg Config, st State, rng Source) State {
	if cfg.Stationary {
		return st
	}

	if st.CurrentSteps >= st.LastSequenceSteps {
		st.ChangeRatePerStep, st.LastSequenceSteps = sampleSegment(cfg, rng)
		st.CurrentSteps = 0
	}

	st.CurrentSteps++
	value := st.Value + st.ChangeRatePerStep*cfg.StepSize

	// Clamp first, then flip the slope with one fair coin draw. A flip is
	// not re-checked against the bounds on the same tick.
	if value > cfg.MaxSetpoint {
		value = cfg.MaxSetpoint
		if rng.Float64() < 0.5 {
			st.ChangeRatePerStep = -st.ChangeRatePerStep
		}
	} else if value < cfg.MinSetpoint {
		value = cfg.MinSetpoint
		if rng.Float64() < 0.5 {
			st.ChangeRatePerStep = -st.ChangeRatePerStep
		}
	}

	st.Value = value
	return st
}

// sampleSegment draws a new segment: a duration uniform over
// [1, maxSequenceLength) and a signed slope. The sign draw and the zero
// draw share one uniform and are applied in sequence; the net split is
// 45% negative, 10% zero, 45% positive.
func sampleSegment(cfg Config, rng Source) (rate float64, steps int) {
	steps = 1 + rng.IntN(cfg.MaxSequenceLength-1)
	rate = rng.Float64() * cfg.MaxChangeRatePerStep
	r := rng.Float64()
	if r < 0.45 {
		rate = -rate
	}
	if r > 0.9 {
		rate = 0
	}
	return rate, steps
}

// Setpoint returns the current signal value.
func (g *Generator) Setpoint() float64 {
	return g.st.Value
}

// ChangeRatePerStep returns the current segment's signed slope.
func (g *Generator) ChangeRatePerStep() float64 {
	return g.st.ChangeRatePerStep
}

// CurrentSteps returns the ticks elapsed in the current segment.
func (g *Generator) CurrentSteps() int {
	return g.st.CurrentSteps
}

// LastSequenceSteps returns the planned duration of the current segment.
func (g *Generator) LastSequenceSteps() int {
	return g.st.LastSequenceSteps
}

// Snapshot returns a copy of the mutable state.
func (g *Generator) Snapshot() State {
	return g.st
}

// Restore overwrites all four state fields. It bypasses sampling and
// validation; the caller supplies values from a prior snapshot.
func (g *Generator) Restore(st State) {
	g.st = st
}

// SetSeed reseeds the random source. Value and segment state are untouched.
func (g *Generator) SetSeed(seed uint64) {
	g.rng = state.MakeRNG(seed)
}

// Reconfigure decodes a partial spec over the current configuration,
// re-validates it, and resamples the current segment. The value is kept
// (clamped into the new bounds) so the trajectory stays continuous across
// a reconfiguration.
func (g *Generator) Reconfigure(spec map[string]any) error {
	next := g.cfg
	decoder, err := config.NewMapstructureDecoder(&next)
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(spec); err != nil {
		return fmt.Errorf("unable to decode setpoint spec: %w", err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	g.cfg = next

	if next.Stationary {
		g.st = State{Value: *next.StationaryValue}
		return nil
	}
	if g.st.Value > next.MaxSetpoint {
		g.st.Value = next.MaxSetpoint
	} else if g.st.Value < next.MinSetpoint {
		g.st.Value = next.MinSetpoint
	}
	g.st.ChangeRatePerStep, g.st.LastSequenceSteps = sampleSegment(next, g.rng)
	g.st.CurrentSteps = 0
	return nil
}

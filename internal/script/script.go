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

// Package script wires configured setpoint drivers into a tick loop:
// every tick each driver publishes into its state vector, exporters pick
// the samples up, and due script actions reconfigure drivers mid-run.
package script

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/cardinalhq/oteltools/signalbuilder"

	"github.com/plantbench/setpointgen/internal/config"
	"github.com/plantbench/setpointgen/internal/driver"
	"github.com/plantbench/setpointgen/internal/exporters"
	"github.com/plantbench/setpointgen/internal/setpoint"
	"github.com/plantbench/setpointgen/internal/state"
)

// Script action types understood by the loop.
const (
	ActionSetpoint = "setpoint"
	ActionReseed   = "reseed"
)

type Script struct {
	actions   []config.ScriptAction
	drivers   map[string]driver.Driver
	vectors   map[string]driver.MapVector
	exporters []*exporters.Trajectory
	steps     int64
	seed      uint64
}

func prepareScript(cfg *config.Config) (*Script, error) {
	if len(cfg.Drivers) == 0 {
		return nil, errors.New("no drivers found in config")
	}
	if cfg.Steps <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}

	s := &Script{
		actions: slices.Clone(cfg.Script),
		drivers: map[string]driver.Driver{},
		vectors: map[string]driver.MapVector{},
		steps:   cfg.Steps,
		// Resolve the run seed before sub-seeding: SubSeed never returns
		// zero, so an unresolved zero seed would pin every unseeded
		// episode to the same trajectory.
		seed: state.ResolveSeed(cfg.Seed),
	}

	for _, d := range cfg.Drivers {
		if d.Name == "" {
			return nil, errors.New("driver with empty name in config")
		}
		if _, ok := s.drivers[d.Name]; ok {
			return nil, errors.New("duplicate driver name: " + d.Name)
		}
		g, err := setpoint.NewFromSpec(state.SubSeed(s.seed, d.Name), d.Spec)
		if err != nil {
			return nil, fmt.Errorf("error creating driver %q: %w", d.Name, err)
		}
		s.drivers[d.Name] = g
		s.vectors[d.Name] = driver.NewMapVector()
	}

	for _, e := range cfg.Exports {
		if _, ok := s.drivers[e.Name]; !ok {
			return nil, errors.New("export references unknown driver: " + e.Name)
		}
		t, err := exporters.NewTrajectory(e.Name, e.Spec)
		if err != nil {
			return nil, fmt.Errorf("error creating export for %q: %w", e.Name, err)
		}
		s.exporters = append(s.exporters, t)
	}

	slices.SortFunc(s.actions, func(a, b config.ScriptAction) int {
		if v := cmp.Compare(a.At, b.At); v != 0 {
			return v
		}
		if v := strings.Compare(a.Type, b.Type); v != 0 {
			return v
		}
		return strings.Compare(a.Name, b.Name)
	})
	for _, action := range s.actions {
		if _, ok := s.drivers[action.Name]; !ok {
			return nil, errors.New("script action references unknown driver: " + action.Name)
		}
		switch action.Type {
		case ActionSetpoint, ActionReseed:
		default:
			return nil, errors.New("unknown script action type: " + action.Type)
		}
	}

	return s, nil
}

// Simulate runs one full episode described by cfg. When an OTLP endpoint
// is configured and dryrun is off, ticks are paced at cfg.Interval and each
// batch is posted to the collector.
func Simulate(ctx context.Context, cfg *config.Config) error {
	s, err := prepareScript(cfg)
	if err != nil {
		return err
	}

	rs := state.NewRunState(s.steps, s.seed)
	starttime := cfg.WallclockStart
	if starttime.IsZero() {
		starttime = time.Now()
	}
	interval := cfg.Interval.Duration

	var client *http.Client
	endpoint := cfg.OTLPDestination.Endpoint
	if endpoint != "" && !cfg.Dryrun {
		client = &http.Client{Timeout: cfg.OTLPDestination.Timeout.Duration}
	}

	driverNames := slices.Sorted(maps.Keys(s.drivers))

	slog.Info("Starting episode",
		slog.String("episodeID", rs.EpisodeID.String()),
		slog.Int64("steps", s.steps),
		slog.Int("drivers", len(driverNames)))

	for now := int64(0); now < s.steps; now++ {
		rs.Now = now
		rs.Wallclock = starttime.Add(time.Duration(now) * interval)

		if err := s.applyDueActions(rs); err != nil {
			return err
		}

		mb := signalbuilder.NewMetricsBuilder()
		for _, name := range driverNames {
			s.drivers[name].Filter(s.vectors[name])
			if cfg.Dryrun {
				logVector(slog.Default(), now, name, s.vectors[name])
			}
		}
		for _, t := range s.exporters {
			if err := t.Emit(rs, s.vectors[t.DriverName()], mb); err != nil {
				return fmt.Errorf("error emitting trajectory: %w", err)
			}
		}

		if client != nil {
			md := mb.Build()
			if err := exporters.SendMetrics(ctx, client, endpoint, cfg.OTLPDestination.Headers, md); err != nil {
				return fmt.Errorf("error sending metrics: %w", err)
			}
			if now < s.steps-1 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(interval):
				}
			}
		}
	}

	slog.Info("Episode complete", slog.String("episodeID", rs.EpisodeID.String()))
	return nil
}

func (s *Script) applyDueActions(rs *state.RunState) error {
	for rs.CurrentAction < len(s.actions) && s.actions[rs.CurrentAction].At <= rs.Now {
		action := s.actions[rs.CurrentAction]
		rs.CurrentAction++

		drv := s.drivers[action.Name]
		switch action.Type {
		case ActionSetpoint:
			if err := drv.Reconfigure(action.Spec); err != nil {
				return fmt.Errorf("error reconfiguring driver %q at tick %d: %w", action.Name, action.At, err)
			}
		case ActionReseed:
			seed, err := decodeReseed(action.Spec)
			if err != nil {
				return fmt.Errorf("error reseeding driver %q at tick %d: %w", action.Name, action.At, err)
			}
			drv.SetSeed(seed)
		}
		slog.Info("Applied script action",
			slog.Int64("at", action.At),
			slog.String("driver", action.Name),
			slog.String("type", action.Type))
	}
	return nil
}

// logVector dumps a driver's published fields, in stable name order.
func logVector(logger *slog.Logger, now int64, name string, vec driver.MapVector) {
	args := []any{
		slog.Int64("tick", now),
		slog.String("driver", name),
	}
	for _, field := range vec.Names() {
		value, _ := vec.Value(field)
		args = append(args, slog.Float64(field, value))
	}
	logger.Debug("Driver state", args...)
}

type reseedSpec struct {
	Seed uint64 `mapstructure:"seed"`
}

func decodeReseed(spec map[string]any) (uint64, error) {
	var rs reseedSpec
	decoder, err := config.NewMapstructureDecoder(&rs)
	if err != nil {
		return 0, err
	}
	if err := decoder.Decode(spec); err != nil {
		return 0, err
	}
	if rs.Seed == 0 {
		return 0, errors.New("reseed action requires a nonzero seed")
	}
	return rs.Seed, nil
}

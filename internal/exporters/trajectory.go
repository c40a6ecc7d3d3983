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

// Package exporters publishes generated setpoint samples: as OTLP gauge
// metrics for a collector, or as a CSV trajectory dump for offline plotting.
package exporters

import (
	"fmt"
	"log/slog"

	"github.com/cardinalhq/oteltools/signalbuilder"
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"

	"github.com/plantbench/setpointgen/internal/config"
	"github.com/plantbench/setpointgen/internal/driver"
	"github.com/plantbench/setpointgen/internal/state"
)

type Attributes struct {
	Resource  map[string]any `mapstructure:"resource,omitempty" yaml:"resource,omitempty" json:"resource,omitempty"`
	Scope     map[string]any `mapstructure:"scope,omitempty" yaml:"scope,omitempty" json:"scope,omitempty"`
	Datapoint map[string]any `mapstructure:"datapoint,omitempty" yaml:"datapoint,omitempty" json:"datapoint,omitempty"`
}

type TrajectorySpec struct {
	Metric     string     `mapstructure:"metric" yaml:"metric" json:"metric"`
	Unit       string     `mapstructure:"unit,omitempty" yaml:"unit,omitempty" json:"unit,omitempty"`
	Frequency  int64      `mapstructure:"frequency,omitempty" yaml:"frequency,omitempty" json:"frequency,omitempty"`
	Attributes Attributes `mapstructure:"attributes" yaml:"attributes" json:"attributes"`
}

// Trajectory emits one driver's current setpoint as an OTLP gauge
// datapoint, at most once per Frequency ticks.
type Trajectory struct {
	driverName  string
	spec        TrajectorySpec
	lastEmitted int64
}

func NewTrajectory(driverName string, spec map[string]any) (*Trajectory, error) {
	if driverName == "" {
		return nil, fmt.Errorf("invalid driver name: %q", driverName)
	}
	trajectorySpec := TrajectorySpec{
		Metric:    "process.setpoint",
		Unit:      "%",
		Frequency: 1,
	}
	decoder, err := config.NewMapstructureDecoder(&trajectorySpec)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(spec); err != nil {
		return nil, fmt.Errorf("unable to decode TrajectorySpec for %q: %w", driverName, err)
	}
	if trajectorySpec.Frequency < 1 {
		return nil, fmt.Errorf("invalid frequency %d for %q", trajectorySpec.Frequency, driverName)
	}
	return &Trajectory{
		driverName:  driverName,
		spec:        trajectorySpec,
		lastEmitted: -1,
	}, nil
}

// DriverName returns the name of the driver this exporter reads.
func (t *Trajectory) DriverName() string {
	return t.driverName
}

// Emit appends the driver's current SET_POINT value to the metrics builder.
func (t *Trajectory) Emit(rs *state.RunState, vec driver.Vector, mb *signalbuilder.MetricsBuilder) error {
	if t.lastEmitted >= 0 && rs.Now < t.lastEmitted+t.spec.Frequency {
		return nil
	}
	t.lastEmitted = rs.Now

	value, ok := vec.Value(driver.FieldSetPoint)
	if !ok {
		return fmt.Errorf("%w: %s", driver.ErrMissingField, driver.FieldSetPoint)
	}

	rattr := pcommon.NewMap()
	if err := rattr.FromRaw(t.spec.Attributes.Resource); err != nil {
		return fmt.Errorf("failed to create resource attributes: %w", err)
	}
	rattr.PutStr("episode.id", rs.EpisodeID.String())
	r := mb.Resource(rattr)

	sattr := pcommon.NewMap()
	if err := sattr.FromRaw(t.spec.Attributes.Scope); err != nil {
		return fmt.Errorf("failed to create scope attributes: %w", err)
	}
	s := r.Scope(sattr)

	mm, err := s.Metric(t.spec.Metric, t.spec.Unit, pmetric.MetricTypeGauge)
	if err != nil {
		return fmt.Errorf("failed to create metric: %w", err)
	}

	dattr := pcommon.NewMap()
	if err := dattr.FromRaw(t.spec.Attributes.Datapoint); err != nil {
		return fmt.Errorf("failed to create datapoint attributes: %w", err)
	}
	dattr.PutStr("driver", t.driverName)

	dp, _, _ := mm.Datapoint(dattr, pcommon.NewTimestampFromTime(rs.Wallclock))
	dp.SetDoubleValue(value)

	slog.Debug("Trajectory Emit",
		slog.Int64("tick", rs.Now),
		slog.String("metricName", t.spec.Metric),
		slog.Float64("value", value))

	return nil
}

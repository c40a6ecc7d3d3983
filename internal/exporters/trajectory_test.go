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

package exporters

import (
	"testing"
	"time"

	"github.com/cardinalhq/oteltools/signalbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantbench/setpointgen/internal/driver"
	"github.com/plantbench/setpointgen/internal/state"
)

func TestNewTrajectory(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tr, err := NewTrajectory("primary", map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, "process.setpoint", tr.spec.Metric)
		assert.Equal(t, "%", tr.spec.Unit)
		assert.Equal(t, int64(1), tr.spec.Frequency)
		assert.Equal(t, "primary", tr.DriverName())
	})

	t.Run("spec overrides", func(t *testing.T) {
		tr, err := NewTrajectory("primary", map[string]any{
			"metric":    "plant.setpoint",
			"frequency": 10,
			"attributes": map[string]any{
				"resource": map[string]any{"service.name": "setpointgen"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "plant.setpoint", tr.spec.Metric)
		assert.Equal(t, int64(10), tr.spec.Frequency)
	})

	t.Run("empty driver name", func(t *testing.T) {
		_, err := NewTrajectory("", map[string]any{})
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := NewTrajectory("primary", map[string]any{"bogus": 1})
		assert.Error(t, err)
	})

	t.Run("invalid frequency", func(t *testing.T) {
		_, err := NewTrajectory("primary", map[string]any{"frequency": 0})
		assert.Error(t, err)
	})
}

func TestTrajectory_Emit(t *testing.T) {
	tr, err := NewTrajectory("primary", map[string]any{"metric": "plant.setpoint"})
	require.NoError(t, err)

	rs := state.NewRunState(10, 1)
	rs.Wallclock = time.Now()

	vec := driver.NewMapVector()
	vec.SetValue(driver.FieldSetPoint, 42.5)

	mb := signalbuilder.NewMetricsBuilder()
	require.NoError(t, tr.Emit(rs, vec, mb))

	md := mb.Build()
	require.Equal(t, 1, md.DataPointCount())

	metric := md.ResourceMetrics().At(0).ScopeMetrics().At(0).Metrics().At(0)
	assert.Equal(t, "plant.setpoint", metric.Name())
	dp := metric.Gauge().DataPoints().At(0)
	assert.Equal(t, 42.5, dp.DoubleValue())

	driverAttr, ok := dp.Attributes().Get("driver")
	require.True(t, ok)
	assert.Equal(t, "primary", driverAttr.Str())

	episodeAttr, ok := md.ResourceMetrics().At(0).Resource().Attributes().Get("episode.id")
	require.True(t, ok)
	assert.Equal(t, rs.EpisodeID.String(), episodeAttr.Str())
}

func TestTrajectory_FrequencyThrottle(t *testing.T) {
	tr, err := NewTrajectory("primary", map[string]any{"frequency": 5})
	require.NoError(t, err)

	rs := state.NewRunState(20, 1)
	vec := driver.NewMapVector()
	vec.SetValue(driver.FieldSetPoint, 1.0)

	emitted := 0
	for now := int64(0); now < 12; now++ {
		rs.Now = now
		mb := signalbuilder.NewMetricsBuilder()
		require.NoError(t, tr.Emit(rs, vec, mb))
		emitted += mb.Build().DataPointCount()
	}

	// Ticks 0, 5 and 10.
	assert.Equal(t, 3, emitted)
}

func TestTrajectory_MissingSetpoint(t *testing.T) {
	tr, err := NewTrajectory("primary", map[string]any{})
	require.NoError(t, err)

	rs := state.NewRunState(10, 1)
	mb := signalbuilder.NewMetricsBuilder()
	err = tr.Emit(rs, driver.NewMapVector(), mb)
	assert.ErrorIs(t, err, driver.ErrMissingField)
}

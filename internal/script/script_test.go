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

package script

import (
	"bytes"
	"context"
	"log/slog"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantbench/setpointgen/internal/config"
	"github.com/plantbench/setpointgen/internal/driver"
	"github.com/plantbench/setpointgen/internal/setpoint"
)

func walkSpec() map[string]any {
	return map[string]any{
		"maxChangeRatePerStep": 1.0,
		"maxSequenceLength":    5,
		"minSetpoint":          0.0,
		"maxSetpoint":          100.0,
		"stepSize":             1.0,
	}
}

func testRunConfig() *config.Config {
	return &config.Config{
		Seed:   42,
		Steps:  50,
		Dryrun: true,
		Drivers: []config.DriverSpec{
			{Name: "primary", Spec: walkSpec()},
			{Name: "aux", Spec: map[string]any{
				"stationary":      true,
				"stationaryValue": 50.0,
			}},
		},
		Exports: []config.DriverSpec{
			{Name: "primary", Spec: map[string]any{
				"metric":    "plant.setpoint",
				"frequency": 5,
			}},
		},
		Script: []config.ScriptAction{
			{At: 25, Name: "primary", Type: ActionSetpoint, Spec: map[string]any{
				"stationary":      true,
				"stationaryValue": 60.0,
			}},
			{At: 10, Name: "aux", Type: ActionReseed, Spec: map[string]any{
				"seed": 99,
			}},
		},
	}
}

func TestSimulate(t *testing.T) {
	err := Simulate(context.Background(), testRunConfig())
	assert.NoError(t, err)
}

func TestPrepareScript(t *testing.T) {
	t.Run("builds drivers, exports and sorted actions", func(t *testing.T) {
		s, err := prepareScript(testRunConfig())
		require.NoError(t, err)
		assert.Len(t, s.drivers, 2)
		assert.Len(t, s.exporters, 1)
		require.Len(t, s.actions, 2)
		assert.Equal(t, int64(10), s.actions[0].At)
		assert.Equal(t, int64(25), s.actions[1].At)
	})

	t.Run("no drivers", func(t *testing.T) {
		cfg := testRunConfig()
		cfg.Drivers = nil
		_, err := prepareScript(cfg)
		assert.Error(t, err)
	})

	t.Run("non-positive steps", func(t *testing.T) {
		cfg := testRunConfig()
		cfg.Steps = 0
		_, err := prepareScript(cfg)
		assert.Error(t, err)
	})

	t.Run("duplicate driver name", func(t *testing.T) {
		cfg := testRunConfig()
		cfg.Drivers = append(cfg.Drivers, config.DriverSpec{Name: "primary", Spec: walkSpec()})
		_, err := prepareScript(cfg)
		assert.Error(t, err)
	})

	t.Run("invalid driver spec", func(t *testing.T) {
		cfg := testRunConfig()
		cfg.Drivers[0].Spec = map[string]any{"stationary": true}
		_, err := prepareScript(cfg)
		assert.ErrorIs(t, err, setpoint.ErrStationaryValueRequired)
	})

	t.Run("export references unknown driver", func(t *testing.T) {
		cfg := testRunConfig()
		cfg.Exports[0].Name = "ghost"
		_, err := prepareScript(cfg)
		assert.Error(t, err)
	})

	t.Run("action references unknown driver", func(t *testing.T) {
		cfg := testRunConfig()
		cfg.Script[0].Name = "ghost"
		_, err := prepareScript(cfg)
		assert.Error(t, err)
	})

	t.Run("unknown action type", func(t *testing.T) {
		cfg := testRunConfig()
		cfg.Script[0].Type = "explode"
		_, err := prepareScript(cfg)
		assert.Error(t, err)
	})
}

func TestPrepareScript_UnseededEpisodesDiffer(t *testing.T) {
	cfg := testRunConfig()
	cfg.Seed = 0

	first, err := prepareScript(cfg)
	require.NoError(t, err)
	second, err := prepareScript(cfg)
	require.NoError(t, err)
	require.NotEqual(t, first.seed, second.seed)

	// Without a resolved run seed every unseeded episode would replay
	// the exact same trajectory.
	same := true
	for i := 0; i < 100; i++ {
		va := driver.NewMapVector()
		vb := driver.NewMapVector()
		first.drivers["primary"].Filter(va)
		second.drivers["primary"].Filter(vb)
		if !maps.Equal(va, vb) {
			same = false
			break
		}
	}
	assert.False(t, same)
}

func TestPrepareScript_SortsLargeTicks(t *testing.T) {
	cfg := testRunConfig()
	cfg.Script = []config.ScriptAction{
		{At: 1 << 40, Name: "primary", Type: ActionSetpoint, Spec: map[string]any{}},
		{At: 1, Name: "primary", Type: ActionSetpoint, Spec: map[string]any{}},
		{At: 1 << 33, Name: "primary", Type: ActionSetpoint, Spec: map[string]any{}},
	}

	s, err := prepareScript(cfg)
	require.NoError(t, err)
	require.Len(t, s.actions, 3)
	assert.Equal(t, int64(1), s.actions[0].At)
	assert.Equal(t, int64(1<<33), s.actions[1].At)
	assert.Equal(t, int64(1<<40), s.actions[2].At)
}

func TestLogVector(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	vec := driver.NewMapVector()
	vec.SetValue(driver.FieldSetPointLastSequenceSteps, 3)
	vec.SetValue(driver.FieldSetPoint, 42.5)

	logVector(logger, 7, "primary", vec)

	out := buf.String()
	assert.Contains(t, out, "tick=7")
	assert.Contains(t, out, "driver=primary")
	assert.Contains(t, out, "SET_POINT=42.5")
	// Fields appear in stable sorted order.
	assert.Less(t,
		strings.Index(out, driver.FieldSetPoint),
		strings.Index(out, driver.FieldSetPointLastSequenceSteps))
}

func TestSimulate_BadReseedAction(t *testing.T) {
	cfg := testRunConfig()
	cfg.Script = []config.ScriptAction{
		{At: 5, Name: "primary", Type: ActionReseed, Spec: map[string]any{}},
	}
	err := Simulate(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSimulate_BadReconfigureAction(t *testing.T) {
	cfg := testRunConfig()
	cfg.Script = []config.ScriptAction{
		{At: 5, Name: "primary", Type: ActionSetpoint, Spec: map[string]any{
			"maxChangeRatePerStep": -1.0,
		}},
	}
	err := Simulate(context.Background(), cfg)
	assert.ErrorIs(t, err, setpoint.ErrNonPositiveChangeRate)
}

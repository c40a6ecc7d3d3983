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

// Package config loads and merges the YAML episode configuration.
package config

import (
	"log/slog"
	"maps"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultSteps is the classic episode length used when no step count
	// is configured.
	DefaultSteps = 10000

	defaultInterval = time.Second
	defaultTimeout  = 5 * time.Second
)

type Config struct {
	Seed            uint64          `mapstructure:"seed" yaml:"seed" json:"seed"`
	Steps           int64           `mapstructure:"steps" yaml:"steps" json:"steps"`
	WallclockStart  time.Time       `mapstructure:"wallclockStart" yaml:"wallclockStart" json:"wallclockStart"`
	Interval        Duration        `mapstructure:"interval" yaml:"interval" json:"interval"`
	Dryrun          bool            `mapstructure:"dryrun" yaml:"dryrun" json:"dryrun"`
	OTLPDestination OTLPDestination `mapstructure:"otlpDestination" yaml:"otlpDestination" json:"otlpDestination"`
	Drivers         []DriverSpec    `mapstructure:"drivers" yaml:"drivers" json:"drivers"`
	Exports         []DriverSpec    `mapstructure:"exports" yaml:"exports" json:"exports"`
	Script          []ScriptAction  `mapstructure:"script" yaml:"script" json:"script"`
}

type OTLPDestination struct {
	Endpoint string            `mapstructure:"endpoint" yaml:"endpoint" json:"endpoint"`
	Headers  map[string]string `mapstructure:"headers" yaml:"headers" json:"headers"`
	Timeout  Duration          `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// DriverSpec names a component and carries its raw spec map; the component
// decodes the map itself.
type DriverSpec struct {
	Name string         `mapstructure:"name" yaml:"name" json:"name"`
	Spec map[string]any `mapstructure:"spec" yaml:"spec" json:"spec"`
}

// ScriptAction reconfigures a named component mid-run, at the given tick.
type ScriptAction struct {
	At   int64          `mapstructure:"at" yaml:"at" json:"at"`
	Name string         `mapstructure:"name" yaml:"name" json:"name"`
	Type string         `mapstructure:"type" yaml:"type" json:"type"`
	Spec map[string]any `mapstructure:"spec" yaml:"spec" json:"spec"`
}

// LoadConfigs loads the config files in order, merging as it goes. Scalar
// settings from later files win; driver, export, and script lists append.
func LoadConfigs(fnames []string) (*Config, error) {
	merged := &Config{
		Steps:    DefaultSteps,
		Interval: Duration{defaultInterval},
		OTLPDestination: OTLPDestination{
			Timeout: Duration{defaultTimeout},
		},
	}
	for _, fname := range fnames {
		slog.Info("Loading config", "file", fname)
		config, err := loadConfig(fname)
		if err != nil {
			return nil, err
		}
		if config.Seed != 0 {
			merged.Seed = config.Seed
		}
		if config.Steps != 0 {
			merged.Steps = config.Steps
		}
		if !config.WallclockStart.IsZero() {
			merged.WallclockStart = config.WallclockStart
		}
		if config.Interval.Duration != 0 {
			merged.Interval = config.Interval
		}
		if config.Dryrun {
			merged.Dryrun = true
		}
		if config.OTLPDestination.Endpoint != "" {
			merged.OTLPDestination.Endpoint = config.OTLPDestination.Endpoint
		}
		if config.OTLPDestination.Timeout.Duration != 0 {
			merged.OTLPDestination.Timeout = config.OTLPDestination.Timeout
		}
		if config.OTLPDestination.Headers != nil {
			if merged.OTLPDestination.Headers == nil {
				merged.OTLPDestination.Headers = make(map[string]string)
			}
			maps.Copy(merged.OTLPDestination.Headers, config.OTLPDestination.Headers)
		}
		merged.Drivers = append(merged.Drivers, config.Drivers...)
		merged.Exports = append(merged.Exports, config.Exports...)
		merged.Script = append(merged.Script, config.Script...)
	}
	return merged, nil
}

func loadConfig(fname string) (*Config, error) {
	var config Config
	if err := LoadYAML(fname, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func LoadYAML(fname string, config *Config) error {
	b, err := os.ReadFile(fname)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, config)
}

func MarshalYAML(config *Config) ([]byte, error) {
	b, err := yaml.Marshal(config)
	if err != nil {
		return nil, err
	}
	return b, nil
}

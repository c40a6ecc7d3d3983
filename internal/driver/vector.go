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

package driver

import (
	"maps"
	"slices"
)

// MapVector is the map-backed Vector used by the simulation loop and tests.
type MapVector map[string]float64

var _ Vector = (MapVector)(nil)

func NewMapVector() MapVector {
	return make(MapVector)
}

func (v MapVector) Value(name string) (float64, bool) {
	value, ok := v[name]
	return value, ok
}

func (v MapVector) SetValue(name string, value float64) {
	v[name] = value
}

// Names returns the field names in sorted order.
func (v MapVector) Names() []string {
	return slices.Sorted(maps.Keys(v))
}

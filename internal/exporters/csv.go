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
	"encoding/csv"
	"io"
	"strconv"
)

// CSVWriter dumps a trajectory as axis-labeled step,value rows for
// offline plotting.
type CSVWriter struct {
	out io.Writer
}

func NewCSVWriter(out io.Writer) *CSVWriter {
	return &CSVWriter{out: out}
}

func (c *CSVWriter) WriteTrajectory(xLabel, yLabel string, values []float64) error {
	w := csv.NewWriter(c.out)
	if err := w.Write([]string{xLabel, yLabel}); err != nil {
		return err
	}
	for i, v := range values {
		record := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(v, 'g', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

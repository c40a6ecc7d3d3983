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

package state

import (
	"math/rand/v2"
	"time"

	"github.com/cespare/xxhash"
	"github.com/google/uuid"
)

// RunState is the per-episode bookkeeping the simulation loop threads
// through each tick.
type RunState struct {
	Now           int64
	Steps         int64
	Wallclock     time.Time
	EpisodeID     uuid.UUID
	RND           *rand.Rand
	CurrentAction int
}

func NewRunState(steps int64, seed uint64) *RunState {
	return &RunState{
		Steps:     steps,
		EpisodeID: uuid.New(),
		RND:       MakeRNG(seed),
	}
}

// MakeRNG returns a seeded PCG source. A zero seed falls back to the
// current time, so pass a fixed nonzero seed for reproducible episodes.
func MakeRNG(seed uint64) *rand.Rand {
	seed = ResolveSeed(seed)
	return rand.New(rand.NewPCG(seed, seed))
}

// ResolveSeed returns seed, or a time-derived one when seed is zero.
// Callers that derive per-driver sub-seeds must resolve the run seed
// first, so an unseeded episode still gets a fresh random stream.
func ResolveSeed(seed uint64) uint64 {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return seed
}

// SubSeed derives a stable per-driver seed from the run seed and the
// driver name, so drivers added to a config do not shift each other's
// random streams.
func SubSeed(seed uint64, name string) uint64 {
	sub := seed ^ xxhash.Sum64String(name)
	if sub == 0 {
		sub = seed
	}
	return sub
}

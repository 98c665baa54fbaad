// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package timing

import (
	"context"
	"time"
)

// Schedule splits a delay into alternating waits and pauses: 2 to 5 waits
// of jittered length, separated by short pauses. The parts add up to the
// delay.
func (model *Model) Schedule(delay time.Duration) []time.Duration {
	if delay <= 0 {
		return nil
	}

	if !model.config.Chunked {
		return []time.Duration{delay}
	}

	chunks := 2 + model.rng.Intn(4)

	pauses := make([]time.Duration, chunks-1)
	var paused time.Duration
	for i := range pauses {
		pauses[i] = model.between(100*time.Millisecond, 500*time.Millisecond)
		paused += pauses[i]
	}

	// pauses may take up at most a quarter of the delay
	if limit := delay / 4; paused > limit {
		for i := range pauses {
			pauses[i] = time.Duration(float64(pauses[i]) * float64(limit) / float64(paused))
		}

		paused = 0
		for _, pause := range pauses {
			paused += pause
		}
	}

	weights := make([]float64, chunks)
	var total float64
	for i := range weights {
		weights[i] = 0.8 + 0.4*model.rng.Float64()
		total += weights[i]
	}

	remaining := delay - paused
	parts := make([]time.Duration, 0, 2*chunks-1)

	var used time.Duration
	for i, weight := range weights {
		part := time.Duration(float64(remaining) * weight / total)
		if i == chunks-1 {
			// rounding leftovers go to the last chunk
			part = remaining - used
		}

		used += part
		parts = append(parts, part)
		if i < len(pauses) {
			parts = append(parts, pauses[i])
		}
	}

	return parts
}

// Wait blocks for the given delay, split up as by Schedule. It returns
// early with the context's error if the context is done.
func (model *Model) Wait(ctx context.Context, delay time.Duration) error {
	for _, part := range model.Schedule(delay) {
		timer := time.NewTimer(part)

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return nil
}

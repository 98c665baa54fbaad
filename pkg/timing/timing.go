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

// Package timing decides how long to wait before submitting a move, so
// that the system's clock usage resembles that of a human player.
package timing

import (
	"math"
	"time"

	"golang.org/x/exp/rand"

	"laptudirm.com/x/pantomime/pkg/config"
	"laptudirm.com/x/pantomime/pkg/position"
)

// Style tells the injection layer how to perform a move.
type Style int

const (
	Normal      Style = iota
	Abbreviated       // skip any flourishes, time is short
)

func (style Style) String() string {
	if style == Abbreviated {
		return "abbreviated"
	}

	return "normal"
}

// Reason records which rule produced a delay.
type Reason string

const (
	Pressure    Reason = "time pressure"
	FirstMove   Reason = "first move"
	Artificial  Reason = "artificial"
	DeepThought Reason = "deep thought"
	Computed    Reason = "computed"
)

// Request holds what the model knows about the move being delayed.
type Request struct {
	Ply        int
	Phase      position.Phase
	LegalMoves int

	// Clock is the remaining time of the system's side; it is only
	// consulted if ClockKnown is set.
	Clock      time.Duration
	ClockKnown bool
}

// Plan is the delay chosen for a move.
type Plan struct {
	Delay  time.Duration
	Style  Style
	Reason Reason
}

type tier struct {
	below    time.Duration
	min, max time.Duration
}

// profile holds the constants of a time control tier.
type profile struct {
	firstMin, firstMax time.Duration
	min, max           time.Duration

	// deepScale scales the configured deep thought probability.
	deepScale float64

	// pressure tiers, most urgent first
	pressure []tier
}

var profiles = map[config.Mode]profile{
	config.Bullet: {
		firstMin: 300 * time.Millisecond, firstMax: time.Second,
		min: 200 * time.Millisecond, max: 3 * time.Second,
		deepScale: 0,
		pressure: []tier{
			{10 * time.Second, 50 * time.Millisecond, 200 * time.Millisecond},
			{20 * time.Second, 100 * time.Millisecond, 400 * time.Millisecond},
			{30 * time.Second, 200 * time.Millisecond, 600 * time.Millisecond},
		},
	},

	config.Blitz: {
		firstMin: time.Second, firstMax: 2500 * time.Millisecond,
		min: 500 * time.Millisecond, max: 12 * time.Second,
		deepScale: 0.25,
		pressure: []tier{
			{30 * time.Second, 100 * time.Millisecond, 300 * time.Millisecond},
			{60 * time.Second, 200 * time.Millisecond, 800 * time.Millisecond},
			{90 * time.Second, 400 * time.Millisecond, 1200 * time.Millisecond},
		},
	},

	config.Rapid: {
		firstMin: 1500 * time.Millisecond, firstMax: 4 * time.Second,
		min: time.Second, max: 60 * time.Second,
		deepScale: 1,
		pressure: []tier{
			{30 * time.Second, 200 * time.Millisecond, 600 * time.Millisecond},
			{60 * time.Second, 500 * time.Millisecond, 1500 * time.Millisecond},
			{90 * time.Second, time.Second, 2500 * time.Millisecond},
		},
	},
}

var phaseMultipliers = map[position.Phase]float64{
	position.Opening:    0.7,
	position.Middlegame: 1.2,
	position.Endgame:    1.0,
}

// Model computes move delays.
type Model struct {
	config   config.Timing
	profile  profile
	advanced bool

	rng *rand.Rand
}

func New(cfg config.Config, rng *rand.Rand) *Model {
	prof, found := profiles[cfg.Mode]
	if !found {
		prof = profiles[config.Blitz]
	}

	return &Model{
		config:   cfg.Timing,
		profile:  prof,
		advanced: cfg.AdvancedTimeManagement,

		rng: rng,
	}
}

// Delay computes the delay before submitting a move.
func (model *Model) Delay(request Request) Plan {
	if model.advanced && request.ClockKnown {
		for _, tier := range model.profile.pressure {
			if request.Clock < tier.below {
				return Plan{
					Delay:  model.between(tier.min, tier.max),
					Style:  Abbreviated,
					Reason: Pressure,
				}
			}
		}
	}

	if request.Ply <= 1 {
		return Plan{
			Delay:  model.between(model.profile.firstMin, model.profile.firstMax),
			Reason: FirstMove,
		}
	}

	if !model.config.Enabled {
		return Plan{
			Delay:  model.between(model.config.ArtificialMin, model.config.ArtificialMax),
			Reason: Artificial,
		}
	}

	plan := Plan{Reason: Computed}
	if model.rng.Float64() < model.config.DeepThoughtProbability*model.profile.deepScale {
		plan.Delay = model.between(model.config.DeepThoughtMin, model.config.DeepThoughtMax)
		plan.Reason = DeepThought
	} else {
		base := model.between(model.config.BaseMin, model.config.BaseMax).Seconds()
		base *= model.rng.ExpFloat64() / model.config.Lambda
		base *= phaseMultipliers[request.Phase]
		base *= Complexity(request.LegalMoves)

		plan.Delay = seconds(base)
	}

	plan.Delay = min(max(plan.Delay, model.profile.min), model.profile.max)
	return plan
}

// Complexity maps the number of legal moves to a multiplier in [0.6, 1.5]
// which grows with the number of moves.
func Complexity(legalMoves int) float64 {
	const few, many = 5, 45

	t := float64(legalMoves-few) / (many - few)
	t = math.Max(0, math.Min(1, t))
	return 0.6 + 0.9*t
}

// between returns a duration drawn uniformly from [lo, hi].
func (model *Model) between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}

	return lo + time.Duration(model.rng.Int63n(int64(hi-lo)+1))
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

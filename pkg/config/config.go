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

// Package config contains the typed configuration of a player. Every
// recognized option is listed here together with its default value.
package config

import (
	"time"

	"laptudirm.com/x/pantomime/pkg/engine"
	"laptudirm.com/x/pantomime/pkg/position"
)

// Mode is the time control tier being played.
type Mode string

const (
	Bullet Mode = "bullet"
	Blitz  Mode = "blitz"
	Rapid  Mode = "rapid"
)

type Config struct {
	Mode Mode `yaml:"mode" validate:"oneof=bullet blitz rapid"`

	// AdvancedTimeManagement enables reading the clock and speeding up
	// under time pressure.
	AdvancedTimeManagement bool `yaml:"advanced-time-management"`

	// Seed seeds every random decision; 0 picks a seed from the clock.
	Seed uint64 `yaml:"seed"`

	Engine   Engine   `yaml:"engine"`
	Book     Book     `yaml:"book"`
	Blunder  Blunder  `yaml:"blunder"`
	Timing   Timing   `yaml:"timing"`
	Observer Observer `yaml:"observer"`
	Resync   Resync   `yaml:"resync"`
	Idle     Idle     `yaml:"idle"`
	Sparring Sparring `yaml:"sparring"`
}

type Engine struct {
	engine.Config `yaml:",inline"`

	MultiPV       int `yaml:"multipv" validate:"min=1,max=10"`
	FallbackDepth int `yaml:"fallback-depth" validate:"min=1"`

	Opening    Budget `yaml:"opening"`
	Middlegame Budget `yaml:"middlegame"`
	Endgame    Budget `yaml:"endgame"`
}

// Budget returns the search budget for the given phase.
func (config Engine) Budget(phase position.Phase) Budget {
	switch phase {
	case position.Opening:
		return config.Opening
	case position.Endgame:
		return config.Endgame
	default:
		return config.Middlegame
	}
}

// Budget is the range from which the depth and node limits of a search
// are drawn. A zero node range searches without a node limit.
type Budget struct {
	DepthMin int `yaml:"depth-min" validate:"min=1"`
	DepthMax int `yaml:"depth-max" validate:"gtefield=DepthMin"`
	NodesMin int `yaml:"nodes-min" validate:"min=0"`
	NodesMax int `yaml:"nodes-max" validate:"gtefield=NodesMin"`
}

type Book struct {
	Enabled bool `yaml:"enabled"`

	// Directory holds the *.yaml books to choose from. The built-in book
	// is used if it is empty or has no books.
	Directory string `yaml:"directory"`
}

type Blunder struct {
	Enabled   bool    `yaml:"enabled"`
	ScoreDiff int     `yaml:"score-diff" validate:"min=0"`
	ChanceMin float64 `yaml:"chance-min" validate:"min=0,max=1"`
	ChanceMax float64 `yaml:"chance-max" validate:"max=1,gtefield=ChanceMin"`
}

type Timing struct {
	// Enabled switches between human-like thinking times and a plain
	// uniform artificial delay.
	Enabled bool `yaml:"enabled"`

	BaseMin time.Duration `yaml:"base-min" validate:"min=0"`
	BaseMax time.Duration `yaml:"base-max" validate:"gtefield=BaseMin"`
	Lambda  float64       `yaml:"lambda" validate:"gt=0"`

	DeepThoughtProbability float64       `yaml:"deep-thought-probability" validate:"min=0,max=1"`
	DeepThoughtMin         time.Duration `yaml:"deep-thought-min" validate:"min=0"`
	DeepThoughtMax         time.Duration `yaml:"deep-thought-max" validate:"gtefield=DeepThoughtMin"`

	ArtificialMin time.Duration `yaml:"artificial-min" validate:"min=0"`
	ArtificialMax time.Duration `yaml:"artificial-max" validate:"gtefield=ArtificialMin"`

	// Chunked splits every delay into a few jittered waits.
	Chunked bool `yaml:"chunked"`
}

type Observer struct {
	MoveTimeout     time.Duration `yaml:"move-timeout" validate:"gt=0"`
	GameOverTimeout time.Duration `yaml:"game-over-timeout" validate:"gt=0"`
	PollInterval    time.Duration `yaml:"poll-interval" validate:"gt=0"`

	// VerifyHints checks piece letters recovered from icons against the
	// legal moves before trusting them.
	VerifyHints bool `yaml:"verify-hints"`

	// StrictNotation rejects notation matching more than one legal move.
	StrictNotation bool `yaml:"strict-notation"`
}

type Resync struct {
	Enabled        bool          `yaml:"enabled"`
	SettleAttempts int           `yaml:"settle-attempts" validate:"min=0"`
	SettleInterval time.Duration `yaml:"settle-interval" validate:"min=0"`
}

type Idle struct {
	Enabled     bool     `yaml:"enabled"`
	Probability float64  `yaml:"probability" validate:"min=0,max=1"`
	Actions     []string `yaml:"actions" validate:"required_if=Enabled true,dive,oneof=random_move piece_hover board_scan tab_check"`
}

// Sparring configures the opponent of simulated games.
type Sparring struct {
	Engine engine.Config `yaml:"engine"`
	Depth  int           `yaml:"depth" validate:"min=1"`

	TimeControl string        `yaml:"tc"`
	ReplyDelay  time.Duration `yaml:"reply-delay" validate:"min=0"`
	MaxPlies    int           `yaml:"max-plies" validate:"min=0"`
}

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

package config

import (
	"time"

	"laptudirm.com/x/pantomime/pkg/engine"
)

// Default returns the default configuration.
func Default() Config {
	return Config{
		Mode:                   Blitz,
		AdvancedTimeManagement: true,

		Engine: Engine{
			Config: engine.Config{
				Name:    "stockfish",
				Cmd:     "stockfish",
				Options: map[string]string{"Threads": "1", "Hash": "64"},
				Timeout: 30 * time.Second,
			},

			MultiPV:       3,
			FallbackDepth: 8,

			Opening:    Budget{DepthMin: 8, DepthMax: 12, NodesMin: 100_000, NodesMax: 300_000},
			Middlegame: Budget{DepthMin: 12, DepthMax: 16, NodesMin: 300_000, NodesMax: 1_000_000},
			Endgame:    Budget{DepthMin: 14, DepthMax: 20, NodesMin: 500_000, NodesMax: 2_000_000},
		},

		Book: Book{
			Enabled: true,
		},

		Blunder: Blunder{
			Enabled:   true,
			ScoreDiff: 50,
			ChanceMin: 0.05,
			ChanceMax: 0.10,
		},

		Timing: Timing{
			Enabled: true,

			BaseMin: 2 * time.Second,
			BaseMax: 8 * time.Second,
			Lambda:  0.5,

			DeepThoughtProbability: 0.08,
			DeepThoughtMin:         15 * time.Second,
			DeepThoughtMax:         45 * time.Second,

			ArtificialMin: 500 * time.Millisecond,
			ArtificialMax: 2 * time.Second,

			Chunked: true,
		},

		Observer: Observer{
			MoveTimeout:     10 * time.Second,
			GameOverTimeout: 2 * time.Second,
			PollInterval:    100 * time.Millisecond,
			VerifyHints:     true,
		},

		Resync: Resync{
			Enabled:        true,
			SettleAttempts: 3,
			SettleInterval: 250 * time.Millisecond,
		},

		Idle: Idle{
			Enabled:     false,
			Probability: 0.25,
			Actions:     []string{"random_move", "piece_hover", "board_scan"},
		},

		Sparring: Sparring{
			Engine: engine.Config{
				Name:    "sparring",
				Cmd:     "stockfish",
				Options: map[string]string{"Threads": "1", "Hash": "16"},
				Timeout: 30 * time.Second,
			},

			Depth:       6,
			TimeControl: "180+2",
			ReplyDelay:  500 * time.Millisecond,
			MaxPlies:    400,
		},
	}
}

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

package position

// Phase is a coarse classification of game progress.
type Phase int

const (
	Opening Phase = iota
	Middlegame
	Endgame
)

// Thresholds used by ClassifyPhase.
const (
	OpeningMoves  = 10
	EndgamePieces = 10
)

// ClassifyPhase maps the full-move counter and the number of pieces on the
// board to a game phase.
func ClassifyPhase(fullmove, pieces int) Phase {
	switch {
	case fullmove < OpeningMoves:
		return Opening
	case pieces < EndgamePieces:
		return Endgame
	default:
		return Middlegame
	}
}

func (phase Phase) String() string {
	switch phase {
	case Opening:
		return "opening"
	case Middlegame:
		return "middlegame"
	case Endgame:
		return "endgame"
	default:
		return "unknown"
	}
}

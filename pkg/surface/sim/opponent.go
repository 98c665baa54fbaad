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

package sim

import (
	"context"
	"errors"

	"golang.org/x/exp/rand"

	"laptudirm.com/x/pantomime/pkg/decide"
	"laptudirm.com/x/pantomime/pkg/engine"
	"laptudirm.com/x/pantomime/pkg/position"
)

var errNoMoves = errors.New("sim: no legal moves")

// Opponent chooses the moves of the simulated opponent.
type Opponent interface {
	Move(ctx context.Context, pos *position.Position) (position.Move, error)
}

// RandomOpponent plays uniformly random legal moves.
type RandomOpponent struct {
	rng *rand.Rand
}

func NewRandomOpponent(rng *rand.Rand) *RandomOpponent {
	return &RandomOpponent{rng: rng}
}

func (opponent *RandomOpponent) Move(_ context.Context, pos *position.Position) (position.Move, error) {
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return position.Move{}, errNoMoves
	}

	return moves[opponent.rng.Intn(len(moves))], nil
}

// EngineOpponent plays the best move found by an engine at a fixed depth.
type EngineOpponent struct {
	searcher decide.Searcher
	depth    int
}

func NewEngineOpponent(searcher decide.Searcher, depth int) *EngineOpponent {
	return &EngineOpponent{searcher: searcher, depth: depth}
}

func (opponent *EngineOpponent) Move(ctx context.Context, pos *position.Position) (position.Move, error) {
	lines, err := opponent.searcher.Analyse(ctx, engine.Query{
		FEN:   pos.FEN(),
		Depth: opponent.depth,
		Lines: 1,
	})
	if err != nil {
		return position.Move{}, err
	}

	for _, line := range lines {
		if move, found := pos.LookupUCI(line.Move); found {
			return move, nil
		}
	}

	return position.Move{}, errNoMoves
}

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

// Package decide chooses the moves played by the system, combining an
// opening book, a multi-line engine search, and deliberate mistakes.
package decide

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"laptudirm.com/x/pantomime/pkg/book"
	"laptudirm.com/x/pantomime/pkg/config"
	"laptudirm.com/x/pantomime/pkg/engine"
	"laptudirm.com/x/pantomime/pkg/position"
)

var ErrNoMoveAvailable = errors.New("decide: no move available")

// Searcher analyses positions. It is implemented by *engine.Engine.
type Searcher interface {
	Analyse(ctx context.Context, query engine.Query) ([]engine.Line, error)
}

// Source records how a decision was reached.
type Source string

const (
	FromBook     Source = "book"
	FromEngine   Source = "engine"
	FromBlunder  Source = "blunder"
	FromFallback Source = "fallback"
)

// Evaluation is a candidate move returned by the engine, scored in
// centipawns from white's point of view.
type Evaluation struct {
	Move  position.Move
	Score int
	Rank  int
}

// Decision is the move chosen for a position.
type Decision struct {
	Move   position.Move
	Source Source

	// Evaluations holds the ranked engine candidates, best first for the
	// side to move. It is empty for book moves.
	Evaluations []Evaluation
}

type Decider struct {
	engine  config.Engine
	blunder config.Blunder

	searcher Searcher
	book     *book.Book

	rng *rand.Rand
	log *logrus.Entry
}

// New creates a Decider. A nil book disables book moves.
func New(cfg config.Config, searcher Searcher, openings *book.Book, rng *rand.Rand, log *logrus.Entry) *Decider {
	if !cfg.Book.Enabled {
		openings = nil
	}

	return &Decider{
		engine:  cfg.Engine,
		blunder: cfg.Blunder,

		searcher: searcher,
		book:     openings,

		rng: rng,
		log: log,
	}
}

// Decide returns the move to play in the given position.
func (decider *Decider) Decide(ctx context.Context, pos *position.Position, phase position.Phase) (Decision, error) {
	log := decider.log.WithFields(logrus.Fields{
		"ply":   pos.Ply(),
		"phase": phase,
	})

	if phase == position.Opening && decider.book != nil {
		if move, found := decider.fromBook(pos); found {
			log.WithFields(logrus.Fields{
				"move":    move.SAN,
				"book":    decider.book.Name,
				"opening": pos.Opening(),
			}).Debug("playing book move")
			return Decision{Move: move, Source: FromBook}, nil
		}
	}

	budget := decider.engine.Budget(phase)
	query := engine.Query{
		FEN:   pos.FEN(),
		Depth: decider.uniform(budget.DepthMin, budget.DepthMax),
		Nodes: decider.uniform(budget.NodesMin, budget.NodesMax),
		Lines: decider.engine.MultiPV,
	}

	source := FromEngine
	evaluations, err := decider.search(ctx, pos, query)
	if err != nil || len(evaluations) == 0 {
		if ctx.Err() != nil {
			return Decision{}, ctx.Err()
		}

		log.WithFields(logrus.Fields{
			"depth": query.Depth,
			"nodes": query.Nodes,
			"key":   pos.Key(),
		}).WithError(err).Warn("search produced no move, retrying at fallback depth")

		query.Depth, query.Nodes = decider.engine.FallbackDepth, 0
		source = FromFallback

		evaluations, err = decider.search(ctx, pos, query)
		if err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrNoMoveAvailable, err)
		}

		if len(evaluations) == 0 {
			return Decision{}, ErrNoMoveAvailable
		}
	}

	decision := Decision{
		Move:        evaluations[0].Move,
		Source:      source,
		Evaluations: evaluations,
	}

	if decider.shouldBlunder(evaluations) {
		log.WithFields(logrus.Fields{
			"best":   evaluations[0].Move.SAN,
			"played": evaluations[1].Move.SAN,
			"gap":    abs(evaluations[0].Score - evaluations[1].Score),
		}).Info("substituting second best move")

		decision.Move = evaluations[1].Move
		decision.Source = FromBlunder
	}

	log.WithFields(logrus.Fields{
		"move":   decision.Move.SAN,
		"source": decision.Source,
		"depth":  query.Depth,
		"nodes":  query.Nodes,
	}).Debug("decided move")

	return decision, nil
}

func (decider *Decider) fromBook(pos *position.Position) (position.Move, bool) {
	legal := func(uci string) bool {
		_, found := pos.LookupUCI(uci)
		return found
	}

	uci, found := decider.book.Pick(pos.Key(), legal, decider.rng)
	if !found {
		return position.Move{}, false
	}

	return pos.LookupUCI(uci)
}

// search queries the engine and ranks the legal candidates it returns for
// the side to move.
func (decider *Decider) search(ctx context.Context, pos *position.Position, query engine.Query) ([]Evaluation, error) {
	lines, err := decider.searcher.Analyse(ctx, query)
	if err != nil {
		return nil, err
	}

	evaluations := make([]Evaluation, 0, len(lines))
	for _, line := range lines {
		move, found := pos.LookupUCI(line.Move)
		if !found {
			decider.log.WithField("move", line.Move).Warn("engine suggested an illegal move")
			continue
		}

		// engine scores are relative to the side to move
		score := line.Score.Value()
		if pos.SideToMove() == position.Black {
			score = -score
		}

		evaluations = append(evaluations, Evaluation{Move: move, Score: score})
	}

	Rank(evaluations, pos.SideToMove())
	return evaluations, nil
}

// Rank orders white-relative evaluations best first for the given side:
// descending for white and ascending for black.
func Rank(evaluations []Evaluation, side position.Color) {
	sort.SliceStable(evaluations, func(i, j int) bool {
		if side == position.Black {
			return evaluations[i].Score < evaluations[j].Score
		}

		return evaluations[i].Score > evaluations[j].Score
	})

	for i := range evaluations {
		evaluations[i].Rank = i + 1
	}
}

func (decider *Decider) shouldBlunder(evaluations []Evaluation) bool {
	if !decider.blunder.Enabled || len(evaluations) < 2 {
		return false
	}

	if abs(evaluations[0].Score-evaluations[1].Score) > decider.blunder.ScoreDiff {
		return false
	}

	chance := decider.blunder.ChanceMin + decider.rng.Float64()*(decider.blunder.ChanceMax-decider.blunder.ChanceMin)
	return decider.rng.Float64() < chance
}

// uniform returns an integer drawn uniformly from [lo, hi].
func (decider *Decider) uniform(lo, hi int) int {
	if hi <= lo {
		return lo
	}

	return lo + decider.rng.Intn(hi-lo+1)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

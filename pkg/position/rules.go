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

import (
	"strings"

	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/board/move"
	"laptudirm.com/x/mess/pkg/formats/fen"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// rules tracks the game on a second board to adjudicate the draw rules
// which need the full game history: repetition, the fifty-move rule, and
// insufficient material.
type rules struct {
	board *board.Board
	moves []move.Move
}

func newRules() *rules {
	var oracle rules
	oracle.board = board.New(board.FEN(fen.FromString(startFEN)))
	oracle.moves = oracle.board.GenerateMoves(false)
	return &oracle
}

// Lookup finds the legal move with the given coordinate notation.
func (oracle *rules) Lookup(uci string) (move.Move, bool) {
	for _, mov := range oracle.moves {
		if strings.EqualFold(mov.String(), uci) {
			return mov, true
		}
	}

	var none move.Move
	return none, false
}

// MakeMove plays a move returned by Lookup.
func (oracle *rules) MakeMove(mov move.Move) {
	oracle.board.MakeMove(mov)
	oracle.moves = oracle.board.GenerateMoves(false)
}

// Draw returns the draw rule which ends the game, if any.
func (oracle *rules) Draw() (string, bool) {
	switch {
	case oracle.board.DrawClock >= 100:
		return "fifty-move rule", true
	case oracle.board.IsThreefoldRepetition():
		return "threefold repetition", true
	case oracle.board.IsInsufficientMaterial():
		return "insufficient material", true
	}

	return "", false
}

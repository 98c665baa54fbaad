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

// Package position implements the authoritative model of a single game of
// chess: its placement, legal moves, phase, and terminal status.
package position

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/notnil/chess"
	"github.com/notnil/chess/opening"
)

var (
	ErrAmbiguousNotation = errors.New("position: ambiguous move notation")
	ErrIllegalNotation   = errors.New("position: illegal move notation")
)

// Color represents the side of a player.
type Color int

const (
	NoColor Color = iota
	White
	Black
)

// Other returns the opposing color.
func (color Color) Other() Color {
	switch color {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

func (color Color) String() string {
	switch color {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "unknown"
	}
}

// ColorOfPly returns the color which moves at the given ply.
func ColorOfPly(ply int) Color {
	if ply%2 == 0 {
		return White
	}

	return Black
}

// Option configures a Position.
type Option func(*Position)

// Strict makes the notation parser reject notation which matches the tail
// of more than one legal move, instead of taking the first match.
func Strict() Option {
	return func(pos *Position) {
		pos.strict = true
	}
}

// Position is the authoritative game state. It is mutated only by applying
// legal moves, and is replaced wholesale on resynchronization.
type Position struct {
	game  *chess.Game
	rules *rules

	strict bool
}

// New returns the standard starting position.
func New(options ...Option) *Position {
	pos := &Position{
		game:  chess.NewGame(),
		rules: newRules(),
	}

	for _, option := range options {
		option(pos)
	}

	return pos
}

// FromMoves builds a position by applying the given standard notation
// moves one at a time to a fresh starting position.
func FromMoves(moves []string, options ...Option) (*Position, error) {
	pos := New(options...)
	for i, text := range moves {
		if _, err := pos.ApplyStandardMove(text); err != nil {
			return nil, fmt.Errorf("ply %d (%q): %w", i, text, err)
		}
	}

	return pos, nil
}

// Parse resolves the given standard notation against the legal moves
// without applying it. An exact match is attempted first, after which the
// legal moves are scanned for one whose notation ends with the text.
func (pos *Position) Parse(text string) (Move, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Move{}, ErrIllegalNotation
	}

	wanted := normalize(text)
	moves := pos.LegalMoves()

	for _, move := range moves {
		if normalize(move.SAN) == wanted {
			return move, nil
		}
	}

	var found []Move
	for _, move := range moves {
		if strings.HasSuffix(normalize(move.SAN), wanted) {
			if !pos.strict {
				return move, nil
			}

			found = append(found, move)
		}
	}

	switch len(found) {
	case 0:
		return Move{}, ErrIllegalNotation
	case 1:
		return found[0], nil
	default:
		return Move{}, ErrAmbiguousNotation
	}
}

// ApplyStandardMove parses the given standard notation and plays it. The
// position is left untouched if the notation can't be resolved.
func (pos *Position) ApplyStandardMove(text string) (Move, error) {
	move, err := pos.Parse(text)
	if err != nil {
		return Move{}, err
	}

	return move, pos.ApplyMove(move)
}

// ApplyUCI plays the legal move with the given coordinate notation.
func (pos *Position) ApplyUCI(uci string) (Move, error) {
	move, found := pos.LookupUCI(uci)
	if !found {
		return Move{}, fmt.Errorf("%w: %s", ErrIllegalNotation, uci)
	}

	return move, pos.ApplyMove(move)
}

// ApplyMove plays the given move, which must be legal in the position.
// Both boards are left untouched if either of them rejects the move.
func (pos *Position) ApplyMove(move Move) error {
	current := pos.game.Position()
	decoded, err := chess.UCINotation{}.Decode(current, move.UCI)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrIllegalNotation, move.UCI)
	}

	ruled, found := pos.rules.Lookup(move.UCI)
	if !found {
		return fmt.Errorf("%w: %s rejected by draw rules board", ErrIllegalNotation, move.UCI)
	}

	if err := pos.game.Move(decoded); err != nil {
		return fmt.Errorf("%w: %s", ErrIllegalNotation, move.UCI)
	}

	pos.rules.MakeMove(ruled)
	return nil
}

// LookupUCI finds the legal move with the given coordinate notation.
func (pos *Position) LookupUCI(uci string) (Move, bool) {
	for _, move := range pos.LegalMoves() {
		if strings.EqualFold(move.UCI, uci) {
			return move, true
		}
	}

	return Move{}, false
}

// LegalMoves returns the moves legal in the current position.
func (pos *Position) LegalMoves() []Move {
	current := pos.game.Position()
	valid := current.ValidMoves()

	moves := make([]Move, 0, len(valid))
	for _, move := range valid {
		moves = append(moves, newMove(current, move))
	}

	return moves
}

// Ply returns the number of half-moves played since the start.
func (pos *Position) Ply() int {
	return len(pos.game.Moves())
}

// FullMove returns the full-move counter, starting at 1.
func (pos *Position) FullMove() int {
	return pos.Ply()/2 + 1
}

// SideToMove returns the color whose turn it is.
func (pos *Position) SideToMove() Color {
	if pos.game.Position().Turn() == chess.White {
		return White
	}

	return Black
}

// FEN returns the full Forsyth-Edwards notation of the position.
func (pos *Position) FEN() string {
	return pos.game.Position().String()
}

// Placement returns only the piece placement field of the position.
func (pos *Position) Placement() string {
	return strings.Fields(pos.FEN())[0]
}

// Key identifies the position independent of move counters. The en passant
// field is kept only if an en passant capture is actually possible.
func (pos *Position) Key() string {
	fields := strings.Fields(pos.FEN())
	if fields[3] != "-" {
		capturable := false
		for _, move := range pos.game.Position().ValidMoves() {
			if move.HasTag(chess.EnPassant) {
				capturable = true
				break
			}
		}

		if !capturable {
			fields[3] = "-"
		}
	}

	return strings.Join(fields[:4], " ")
}

// PieceCount returns the number of pieces on the board, kings included.
func (pos *Position) PieceCount() int {
	return len(pos.game.Position().Board().SquareMap())
}

// Phase classifies the current position.
func (pos *Position) Phase() Phase {
	return ClassifyPhase(pos.FullMove(), pos.PieceCount())
}

// History returns the standard notation of every move played.
func (pos *Position) History() []string {
	positions := pos.game.Positions()
	moves := pos.game.Moves()

	history := make([]string, len(moves))
	for i, move := range moves {
		history[i] = chess.AlgebraicNotation{}.Encode(positions[i], move)
	}

	return history
}

var eco = sync.OnceValue(opening.NewBookECO)

// Opening names the opening reached by the moves played so far, if any.
func (pos *Position) Opening() string {
	found := eco().Find(pos.game.Moves())
	if found == nil {
		return ""
	}

	return found.Code() + " " + found.Title()
}

// normalize brings notation into a comparable form: castling is written
// with letters, and check, annotation, and promotion markers are dropped.
func normalize(text string) string {
	text = strings.TrimRight(text, "+#!?")
	text = strings.ReplaceAll(text, "0-0-0", "O-O-O")
	text = strings.ReplaceAll(text, "0-0", "O-O")
	return strings.ReplaceAll(text, "=", "")
}

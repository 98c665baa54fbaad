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

// Package sim provides an in-memory game surface: a board which renders
// its moves like a web chess client and is played on by an opponent.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"laptudirm.com/x/pantomime/pkg/config"
	"laptudirm.com/x/pantomime/pkg/observe"
	"laptudirm.com/x/pantomime/pkg/position"
	"laptudirm.com/x/pantomime/pkg/timing"
)

var (
	ErrGameOver    = errors.New("sim: game is over")
	ErrNotYourTurn = errors.New("sim: not the player's turn")
)

// Config configures a simulated board.
type Config struct {
	// Color is the color played by the system.
	Color position.Color

	Opponent Opponent

	// Fallback plays the opponent's move when Opponent fails. A random
	// opponent is used if it is nil.
	Fallback Opponent

	ReplyDelay  time.Duration
	MaxPlies    int
	TimeControl timing.TimeControl
}

// FromSparring creates a board configuration from the sparring options.
func FromSparring(cfg config.Sparring, color position.Color, opponent Opponent) (Config, error) {
	tc, err := timing.ParseTime(cfg.TimeControl)
	if err != nil {
		return Config{}, fmt.Errorf("sim: time control: %w", err)
	}

	return Config{
		Color:       color,
		Opponent:    opponent,
		ReplyDelay:  cfg.ReplyDelay,
		MaxPlies:    cfg.MaxPlies,
		TimeControl: tc,
	}, nil
}

// Board is a simulated game surface. It implements observe.Source,
// game.Sink and observe.Performer.
type Board struct {
	mu sync.Mutex

	config Config
	truth  *position.Position
	log    *logrus.Entry

	shown []observe.RawMove

	// revealAt is when the last move shown becomes visible.
	revealAt time.Time

	clock     time.Duration // remaining time of the system
	turnStart time.Time

	result string
	reason string

	// Styles records the execution style of every submission.
	Styles []timing.Style

	// Idled counts the idle actions performed, by action.
	Idled map[string]int
}

// New creates a board and plays the opponent's first move if the system
// plays black.
func New(ctx context.Context, cfg Config, rng *rand.Rand, log *logrus.Entry) (*Board, error) {
	if cfg.Color != position.White && cfg.Color != position.Black {
		return nil, fmt.Errorf("sim: invalid color %s", cfg.Color)
	}

	if cfg.Opponent == nil {
		cfg.Opponent = NewRandomOpponent(rng)
	}

	if cfg.Fallback == nil {
		cfg.Fallback = NewRandomOpponent(rng)
	}

	board := &Board{
		config:    cfg,
		truth:     position.New(),
		log:       log,
		clock:     cfg.TimeControl.Base,
		turnStart: time.Now(),
		Idled:     make(map[string]int),
	}

	if cfg.Color == position.Black {
		board.mu.Lock()
		defer board.mu.Unlock()
		board.reply(ctx)
	}

	return board, nil
}

// Moves returns the moves played on the board in standard notation.
func (board *Board) Moves() []string {
	board.mu.Lock()
	defer board.mu.Unlock()
	return board.truth.History()
}

// Outcome returns the result and its reason, if the game is over.
func (board *Board) Outcome() (string, string, bool) {
	board.mu.Lock()
	defer board.mu.Unlock()
	return board.result, board.reason, board.over()
}

func (board *Board) over() bool {
	return board.reason != ""
}

// Submit plays the given move for the system.
func (board *Board) Submit(ctx context.Context, move position.Move, style timing.Style, flipped bool) error {
	board.mu.Lock()
	defer board.mu.Unlock()

	if board.over() {
		return ErrGameOver
	}

	if flipped != (board.config.Color == position.Black) {
		return fmt.Errorf("sim: submitted with wrong orientation")
	}

	if board.truth.SideToMove() != board.config.Color || !board.visible() {
		return ErrNotYourTurn
	}

	if board.config.TimeControl.Base > 0 {
		board.clock -= time.Since(board.turnStart)
		if board.clock <= 0 {
			board.end(board.config.Color.Other(), "time forfeit")
			return ErrGameOver
		}

		board.clock += board.config.TimeControl.Inc
	}

	if err := board.play(move.UCI); err != nil {
		return err
	}

	board.Styles = append(board.Styles, style)
	board.reply(ctx)
	return nil
}

// play plays a move on the board and ends the game if it is over.
func (board *Board) play(uci string) error {
	move, err := board.truth.ApplyUCI(uci)
	if err != nil {
		return err
	}

	ply := board.truth.Ply() - 1
	board.shown = append(board.shown, Render(move.SAN, ply))
	board.log.WithFields(logrus.Fields{
		"ply":  ply,
		"move": move.SAN,
	}).Trace("sim: move played")

	if terminal, over := board.truth.Terminal(); over {
		board.result, board.reason = terminal.Result(), terminal.Reason
	} else if board.config.MaxPlies > 0 && board.truth.Ply() >= board.config.MaxPlies {
		board.result, board.reason = "1/2-1/2", "adjudicated"
	}

	return nil
}

// reply plays the opponent's move, to be revealed after the reply delay.
func (board *Board) reply(ctx context.Context) {
	if board.over() {
		return
	}

	move, err := board.config.Opponent.Move(ctx, board.truth)
	if err != nil {
		board.log.WithError(err).Debug("sim: opponent failed, playing fallback move")
		if move, err = board.config.Fallback.Move(ctx, board.truth); err != nil {
			board.end(board.config.Color, "opponent can't move")
			return
		}
	}

	if err := board.play(move.UCI); err != nil {
		board.end(board.config.Color, "opponent played illegal move")
		return
	}

	board.revealAt = time.Now().Add(board.config.ReplyDelay)
	board.turnStart = board.revealAt
}

func (board *Board) end(winner position.Color, reason string) {
	switch winner {
	case position.White:
		board.result = "1-0"
	case position.Black:
		board.result = "0-1"
	default:
		board.result = "1/2-1/2"
	}

	board.reason = reason
}

// visible reports whether the last move played has been revealed.
func (board *Board) visible() bool {
	return !time.Now().Before(board.revealAt)
}

// shownPlies returns the number of moves currently shown.
func (board *Board) shownPlies() int {
	if board.visible() || len(board.shown) == 0 {
		return len(board.shown)
	}

	return len(board.shown) - 1
}

func (board *Board) ResultText(context.Context) (string, bool, error) {
	board.mu.Lock()
	defer board.mu.Unlock()

	if !board.over() || !board.visible() {
		return "", false, nil
	}

	return board.result, true, nil
}

func (board *Board) GameOver(context.Context) (bool, error) {
	board.mu.Lock()
	defer board.mu.Unlock()
	return board.over() && board.visible(), nil
}

func (board *Board) MoveAt(_ context.Context, ply int) (observe.RawMove, bool, error) {
	board.mu.Lock()
	defer board.mu.Unlock()

	if ply < 0 || ply >= board.shownPlies() {
		return observe.RawMove{}, false, nil
	}

	return board.shown[ply], true, nil
}

func (board *Board) History(context.Context) ([]observe.RawMove, error) {
	board.mu.Lock()
	defer board.mu.Unlock()
	return append([]observe.RawMove(nil), board.shown[:board.shownPlies()]...), nil
}

func (board *Board) Flipped(context.Context) (bool, error) {
	return board.config.Color == position.Black, nil
}

// ClockText shows the remaining time of the system, which only runs on
// its own turn.
func (board *Board) ClockText(context.Context) (string, bool, error) {
	board.mu.Lock()
	defer board.mu.Unlock()

	if board.config.TimeControl.Base <= 0 {
		return "", false, nil
	}

	remaining := board.clock
	if board.truth.SideToMove() == board.config.Color && !board.over() && board.visible() {
		remaining -= time.Since(board.turnStart)
	}

	return timing.FormatClock(remaining), true, nil
}

// Perform records an idle action.
func (board *Board) Perform(_ context.Context, action string) error {
	board.mu.Lock()
	defer board.mu.Unlock()

	board.Idled[action]++
	return nil
}

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

// Package game plays a single game against an externally rendered
// opponent, tying together observation, decision, timing and submission.
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"laptudirm.com/x/pantomime/pkg/book"
	"laptudirm.com/x/pantomime/pkg/config"
	"laptudirm.com/x/pantomime/pkg/decide"
	"laptudirm.com/x/pantomime/pkg/observe"
	"laptudirm.com/x/pantomime/pkg/position"
	"laptudirm.com/x/pantomime/pkg/resync"
	"laptudirm.com/x/pantomime/pkg/timing"
)

var (
	ErrInjectionFailed = errors.New("game: move submission failed")
	ErrDesync          = errors.New("game: position out of sync")
	ErrFinished        = errors.New("game: session already played")
)

// Sink submits moves to the external surface.
type Sink interface {
	Submit(ctx context.Context, move position.Move, style timing.Style, flipped bool) error
}

// Surface is a surface which can be both observed and played on.
type Surface interface {
	observe.Source
	Sink
}

// Dependencies holds the collaborators of a Session.
type Dependencies struct {
	Surface  Surface
	Searcher decide.Searcher

	// Book is the opening book of the game. The built-in book is used if
	// it is nil and books are enabled.
	Book *book.Book

	// Performer carries out idle actions. Idling is disabled if it is nil.
	Performer observe.Performer

	Log *logrus.Entry
}

// Result is the final state of a game.
type Result struct {
	ID      uuid.UUID
	Color   position.Color
	Outcome Outcome

	// Text is the result in result notation, empty if it is not known.
	Text   string
	Reason string

	Plies   int
	Resyncs int
	Skipped int // observed moves which couldn't be applied
	Desyncs int // checks which found the position behind the observer
}

// Session is the context of a single game. A Session plays exactly one
// game and is not safe for concurrent use.
type Session struct {
	ID uuid.UUID

	config  config.Config
	surface Surface

	decider  *decide.Decider
	timing   *timing.Model
	observer *observe.Observer
	resync   *resync.Resynchronizer

	log *logrus.Entry

	pos     *position.Position
	color   position.Color
	flipped bool

	result   Result
	started  bool
	finished bool
}

// NewSession creates a new game session. The random source is used for
// every random decision of the game.
func NewSession(cfg config.Config, deps Dependencies, rng *rand.Rand) *Session {
	id := uuid.New()

	log := deps.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("game", id.String())

	openings := deps.Book
	if openings == nil {
		openings = book.Default()
	}

	var idler observe.Idler
	if deps.Performer != nil {
		idler = observe.NewIdler(cfg.Idle, deps.Performer, rng, log)
	}

	return &Session{
		ID: id,

		config:  cfg,
		surface: deps.Surface,

		decider:  decide.New(cfg, deps.Searcher, openings, rng, log),
		timing:   timing.New(cfg, rng),
		observer: observe.New(deps.Surface, cfg.Observer, idler, log),
		resync:   resync.New(deps.Surface, cfg, log),

		log: log,
	}
}

// Color returns the color played by the system, or position.NoColor if it
// couldn't be determined.
func (session *Session) Color() position.Color {
	return session.color
}

// Result returns the result of the game, and whether the game has ended.
func (session *Session) Result() (Result, bool) {
	return session.result, session.finished
}

// Start plays the game to its end. It returns early if the game can't be
// continued, like when no move can be found or a move can't be submitted.
// The system only observes the game if its color can't be determined.
func (session *Session) Start(ctx context.Context) (Result, error) {
	if session.started {
		return session.result, ErrFinished
	}
	session.started = true

	var options []position.Option
	if session.config.Observer.StrictNotation {
		options = append(options, position.Strict())
	}

	session.pos = position.New(options...)
	session.observer.Reset()
	session.detectColor(ctx)

	session.result = Result{ID: session.ID, Color: session.color, Outcome: Unknown}

	for {
		if err := ctx.Err(); err != nil {
			return session.result, err
		}

		if err := session.checkTurn(); err != nil {
			session.log.WithError(err).Warn("position behind observed moves")
			session.result.Desyncs++
			session.synchronize(ctx, session.resync.Rebuild)
		}

		if session.color != position.NoColor && session.pos.SideToMove() == session.color {
			if _, over := session.pos.Terminal(); !over {
				if err := session.playMove(ctx); err != nil {
					return session.abort(err)
				}

				continue
			}
		}

		observation, err := session.observer.Step(ctx, session.pos)
		if err != nil {
			return session.abort(err)
		}

		if observation.Desync {
			session.result.Skipped++
			session.log.WithFields(logrus.Fields{
				"ply":  observation.Record.Ply,
				"text": observation.Record.Raw.Text,
				"key":  session.pos.Key(),
			}).Warn("skipped unparseable move")
			session.synchronize(ctx, session.resync.Rebuild)
		}

		switch observation.State {
		case observe.TerminalDetected, observe.Done:
			return session.finish(observation.Verdict), nil
		}
	}
}

// detectColor determines the system's color from the board orientation.
func (session *Session) detectColor(ctx context.Context) {
	flipped, err := session.surface.Flipped(ctx)
	if err != nil {
		session.log.WithError(err).Warn("can't determine color, observing only")
		session.color = position.NoColor
		return
	}

	session.flipped = flipped
	session.color = position.White
	if flipped {
		session.color = position.Black
	}

	session.log.WithField("color", session.color).Info("game started")
}

// checkTurn verifies that the position has caught up with the observed
// moves. A skipped move leaves the observer's cursor ahead of the position,
// which then waits on the wrong side.
func (session *Session) checkTurn() error {
	ply, next := session.pos.Ply(), session.observer.Next()
	if next != ply {
		return fmt.Errorf(
			"%w: %s to move at ply %d, but ply %d is awaited",
			ErrDesync, session.pos.SideToMove(), ply, next,
		)
	}

	return nil
}

// playMove decides, delays, and submits the system's move.
func (session *Session) playMove(ctx context.Context) error {
	pos := session.pos
	phase := pos.Phase()

	decision, err := session.decider.Decide(ctx, pos, phase)
	if err != nil {
		return err
	}

	request := timing.Request{
		Ply:        pos.Ply(),
		Phase:      phase,
		LegalMoves: len(pos.LegalMoves()),
	}

	if text, found, err := session.surface.ClockText(ctx); err == nil && found {
		if clock, err := timing.ParseClock(text); err == nil {
			request.Clock, request.ClockKnown = clock, true
		} else {
			session.log.WithError(err).WithField("text", text).Debug("unreadable clock")
		}
	}

	plan := session.timing.Delay(request)
	log := session.log.WithFields(logrus.Fields{
		"ply":    pos.Ply(),
		"move":   decision.Move.SAN,
		"source": decision.Source,
		"delay":  plan.Delay.Round(time.Millisecond),
		"reason": plan.Reason,
	})
	log.Debug("thinking")

	if err := session.timing.Wait(ctx, plan.Delay); err != nil {
		return err
	}

	if err := session.surface.Submit(ctx, decision.Move, plan.Style, session.flipped); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInjectionFailed, decision.Move.UCI, err)
	}

	if err := pos.ApplyMove(decision.Move); err != nil {
		return err
	}

	log.Info("played move")

	session.observer.Sync(pos.Ply())
	session.synchronize(ctx, session.resync.Verify)
	return nil
}

// synchronize checks the position against the observed move history with
// the given check and adopts the position it returns.
func (session *Session) synchronize(ctx context.Context, check func(context.Context, *position.Position) (*position.Position, resync.Report)) {
	if !session.config.Resync.Enabled {
		return
	}

	pos, report := check(ctx, session.pos)
	if report.Err != nil || !report.Replaced {
		return
	}

	session.pos = pos
	session.result.Resyncs++
	session.observer.Sync(pos.Ply())
}

func (session *Session) finish(verdict observe.Verdict) Result {
	session.result.Text = verdict.Result
	session.result.Reason = verdict.Reason
	session.result.Plies = session.pos.Ply()
	session.result.Outcome = Attribute(verdict.Result, session.color)
	session.finished = true

	session.log.WithFields(logrus.Fields{
		"result":  verdict.Result,
		"outcome": session.result.Outcome,
		"reason":  verdict.Reason,
		"plies":   session.result.Plies,
	}).Info("game finished")

	return session.result
}

func (session *Session) abort(err error) (Result, error) {
	session.result.Plies = session.pos.Ply()
	session.result.Reason = err.Error()

	session.log.WithError(err).Error("game aborted")
	return session.result, err
}

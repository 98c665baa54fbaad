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

package observe

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/pantomime/pkg/config"
	"laptudirm.com/x/pantomime/pkg/position"
)

var (
	ErrTimeout           = errors.New("observe: no move observed in time")
	ErrInvalidTransition = errors.New("observe: invalid state transition")
)

// State is a state of the observation state machine.
type State int

const (
	AwaitingOpponentMove State = iota
	MoveObserved
	ObservationTimeout
	TerminalDetected
	Done
)

func (state State) String() string {
	switch state {
	case AwaitingOpponentMove:
		return "awaiting opponent move"
	case MoveObserved:
		return "move observed"
	case ObservationTimeout:
		return "observation timeout"
	case TerminalDetected:
		return "terminal detected"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// transitions lists the states reachable from every state.
var transitions = map[State][]State{
	AwaitingOpponentMove: {MoveObserved, ObservationTimeout, TerminalDetected},
	MoveObserved:         {AwaitingOpponentMove, TerminalDetected},
	ObservationTimeout:   {AwaitingOpponentMove, TerminalDetected},
	TerminalDetected:     {Done},
	Done:                 {},
}

// CanTransition reports whether the state machine may move between the
// given states.
func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// Record is a move read from the surface and applied to the position.
type Record struct {
	Ply      int
	Raw      RawMove
	Notation string // notation after cleaning and icon recovery
	Move     position.Move
}

// Verdict describes how a game ended.
type Verdict struct {
	// Result is "1-0", "0-1", or "1/2-1/2". It is empty when the game is
	// known to be over but its result isn't.
	Result string
	Reason string
}

// Observation is the outcome of a single Step.
type Observation struct {
	State   State
	Record  *Record
	Verdict Verdict

	// Desync is set when the observed move couldn't be applied to the
	// position. The position is left untouched in that case.
	Desync bool
	Err    error
}

// Observer reads the moves of an externally rendered game one ply at a
// time. It is not safe for concurrent use.
type Observer struct {
	source Source
	config config.Observer
	idler  Idler
	log    *logrus.Entry

	state   State
	next    int
	verdict Verdict
}

// New creates an Observer reading from the given source. The idler may be
// nil.
func New(source Source, cfg config.Observer, idler Idler, log *logrus.Entry) *Observer {
	return &Observer{
		source: source,
		config: cfg,
		idler:  idler,
		log:    log,
	}
}

// State returns the current state of the observer.
func (observer *Observer) State() State {
	return observer.state
}

// Next returns the ply of the next move to be read.
func (observer *Observer) Next() int {
	return observer.next
}

// Sync moves the read cursor to the given ply. It is used after the
// position has been rebuilt or a move has been played by the system.
func (observer *Observer) Sync(ply int) {
	observer.next = ply
}

// Reset prepares the observer for a new game.
func (observer *Observer) Reset() {
	observer.state = AwaitingOpponentMove
	observer.next = 0
	observer.verdict = Verdict{}
}

// Step runs the state machine until a move has been observed or the game
// has ended. Observed moves are applied to the given position.
func (observer *Observer) Step(ctx context.Context, pos *position.Position) (Observation, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Observation{}, err
		}

		switch observer.state {
		case Done:
			return Observation{State: Done, Verdict: observer.verdict}, nil

		case TerminalDetected:
			if err := observer.enter(Done); err != nil {
				return Observation{}, err
			}

		case MoveObserved:
			if err := observer.enter(AwaitingOpponentMove); err != nil {
				return Observation{}, err
			}

		case ObservationTimeout:
			if verdict, over := observer.awaitGameOver(ctx); over {
				if err := observer.finish(verdict); err != nil {
					return Observation{}, err
				}
				continue
			}

			observer.log.WithField("ply", observer.next).Debug("still waiting for opponent")
			if err := observer.enter(AwaitingOpponentMove); err != nil {
				return Observation{}, err
			}

		case AwaitingOpponentMove:
			if observer.idler != nil {
				observer.idler.Idle(ctx)
			}

			if verdict, over := observer.terminal(ctx, pos); over {
				if err := observer.finish(verdict); err != nil {
					return Observation{}, err
				}
				continue
			}

			raw, err := observer.await(ctx)
			if errors.Is(err, ErrTimeout) {
				if err := observer.enter(ObservationTimeout); err != nil {
					return Observation{}, err
				}
				continue
			}

			if err != nil {
				return Observation{}, err
			}

			if err := observer.enter(MoveObserved); err != nil {
				return Observation{}, err
			}

			observation := observer.apply(pos, raw)
			if verdict, over := observer.terminal(ctx, pos); over {
				if err := observer.finish(verdict); err != nil {
					return Observation{}, err
				}

				observation.State = TerminalDetected
				observation.Verdict = verdict
			}

			return observation, nil
		}
	}
}

func (observer *Observer) enter(state State) error {
	if !CanTransition(observer.state, state) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, observer.state, state)
	}

	observer.log.WithFields(logrus.Fields{
		"from": observer.state,
		"to":   state,
	}).Trace("observer transition")

	observer.state = state
	return nil
}

func (observer *Observer) finish(verdict Verdict) error {
	observer.verdict = verdict
	observer.log.WithFields(logrus.Fields{
		"result": verdict.Result,
		"reason": verdict.Reason,
	}).Info("game over detected")

	return observer.enter(TerminalDetected)
}

// terminal checks, in order, the result shown by the surface, the rules
// of chess applied to the position, and the surface's game over marker.
func (observer *Observer) terminal(ctx context.Context, pos *position.Position) (Verdict, bool) {
	if verdict, over := observer.surfaceResult(ctx); over {
		return verdict, true
	}

	if terminal, over := pos.Terminal(); over {
		return Verdict{Result: terminal.Result(), Reason: terminal.Reason}, true
	}

	if over, err := observer.source.GameOver(ctx); err == nil && over {
		return Verdict{Reason: "game over marker"}, true
	}

	return Verdict{}, false
}

func (observer *Observer) surfaceResult(ctx context.Context) (Verdict, bool) {
	text, found, err := observer.source.ResultText(ctx)
	if err != nil || !found {
		return Verdict{}, false
	}

	result := NormalizeResult(text)
	switch result {
	case "1-0", "0-1", "1/2-1/2":
		return Verdict{Result: result, Reason: "result shown"}, true
	default:
		return Verdict{Reason: "result shown: " + text}, true
	}
}

// awaitGameOver polls the surface for the end of the game after a move
// failed to show up in time.
func (observer *Observer) awaitGameOver(ctx context.Context) (Verdict, bool) {
	deadline := time.NewTimer(observer.config.GameOverTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(observer.config.PollInterval)
	defer ticker.Stop()

	for {
		if verdict, over := observer.surfaceResult(ctx); over {
			return verdict, true
		}

		if over, err := observer.source.GameOver(ctx); err == nil && over {
			return Verdict{Reason: "game over marker"}, true
		}

		select {
		case <-ctx.Done():
			return Verdict{}, false
		case <-deadline.C:
			return Verdict{}, false
		case <-ticker.C:
		}
	}
}

// await polls the surface until the move at the read cursor is shown.
func (observer *Observer) await(ctx context.Context) (RawMove, error) {
	deadline := time.NewTimer(observer.config.MoveTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(observer.config.PollInterval)
	defer ticker.Stop()

	for {
		raw, found, err := observer.source.MoveAt(ctx, observer.next)
		switch {
		case err != nil:
			observer.log.WithError(err).Debug("reading move failed")
		case found && Clean(raw.Text) != "":
			return raw, nil
		}

		select {
		case <-ctx.Done():
			return RawMove{}, ctx.Err()
		case <-deadline.C:
			return RawMove{}, ErrTimeout
		case <-ticker.C:
		}
	}
}

// apply resolves the raw move against the position and plays it. The read
// cursor advances even if the move can't be applied.
func (observer *Observer) apply(pos *position.Position, raw RawMove) Observation {
	ply := observer.next
	observer.next++

	notation := Clean(raw.Text)
	hinted := Disambiguate(notation, raw.Icon)

	if hinted != notation && observer.config.VerifyHints {
		if _, err := pos.Parse(hinted); err != nil {
			if _, err := pos.Parse(notation); err == nil {
				observer.log.WithFields(logrus.Fields{
					"text": raw.Text,
					"icon": raw.Icon,
				}).Warn("ignoring icon hint contradicting legal moves")
				hinted = notation
			}
		}
	}

	record := &Record{Ply: ply, Raw: raw, Notation: hinted}
	log := observer.log.WithFields(logrus.Fields{
		"ply":  ply,
		"move": hinted,
	})

	move, err := pos.ApplyStandardMove(hinted)
	if err != nil {
		log.WithError(err).Warn("observed move does not fit the position")
		return Observation{State: MoveObserved, Record: record, Desync: true, Err: err}
	}

	record.Move = move
	log.Info("opponent moved")
	return Observation{State: MoveObserved, Record: record}
}

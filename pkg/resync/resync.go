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

// Package resync repairs the position of a game by rebuilding it from the
// move history shown on the observed surface.
package resync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/pantomime/pkg/config"
	"laptudirm.com/x/pantomime/pkg/observe"
	"laptudirm.com/x/pantomime/pkg/position"
)

var ErrLagging = errors.New("resync: observed history is behind the position")

// History provides the move history shown on the observed surface. It is
// implemented by every observe.Source.
type History interface {
	History(ctx context.Context) ([]observe.RawMove, error)
}

// Report describes what a verification found.
type Report struct {
	// Replaced is set when the position disagreed with the history and
	// was replaced by one rebuilt from it.
	Replaced bool

	// Plies is the length of the observed history.
	Plies int

	// Err is set when the history couldn't be read or replayed. The
	// position is kept unchanged in that case.
	Err error
}

type Resynchronizer struct {
	history History
	config  config.Resync
	strict  bool
	log     *logrus.Entry
}

func New(history History, cfg config.Config, log *logrus.Entry) *Resynchronizer {
	return &Resynchronizer{
		history: history,
		config:  cfg.Resync,
		strict:  cfg.Observer.StrictNotation,
		log:     log,
	}
}

// Verify compares the piece placement of the given position with the one
// reached by replaying the observed history up to the position's ply. On a
// mismatch the position is rebuilt from the complete history and returned;
// otherwise the given position is returned. Moves shown beyond the
// position's ply are not considered a mismatch.
func (resync *Resynchronizer) Verify(ctx context.Context, pos *position.Position) (*position.Position, Report) {
	return resync.verify(ctx, pos, false)
}

// Rebuild is like Verify, but it also replaces the position if the history
// is ahead of it. It is used when a move has been skipped.
func (resync *Resynchronizer) Rebuild(ctx context.Context, pos *position.Position) (*position.Position, Report) {
	return resync.verify(ctx, pos, true)
}

func (resync *Resynchronizer) verify(ctx context.Context, pos *position.Position, catchUp bool) (*position.Position, Report) {
	log := resync.log.WithFields(logrus.Fields{
		"ply": pos.Ply(),
		"key": pos.Key(),
	})

	moves, err := resync.settle(ctx, pos.Ply())
	report := Report{Plies: len(moves), Err: err}
	if err != nil {
		log.WithError(err).Warn("can't read move history, keeping position")
		return pos, report
	}

	var options []position.Option
	if resync.strict {
		options = append(options, position.Strict())
	}

	reference, err := position.FromMoves(moves[:pos.Ply()], options...)
	if err != nil {
		log.WithError(err).Warn("can't replay move history, keeping position")
		report.Err = err
		return pos, report
	}

	if reference.Placement() == pos.Placement() && (!catchUp || len(moves) == pos.Ply()) {
		return pos, report
	}

	if len(moves) > pos.Ply() {
		if reference, err = position.FromMoves(moves, options...); err != nil {
			log.WithError(err).Warn("can't replay move history, keeping position")
			report.Err = err
			return pos, report
		}
	}

	log.WithFields(logrus.Fields{
		"observed": reference.Key(),
		"plies":    len(moves),
	}).Warn("position out of sync, rebuilt from move history")

	report.Replaced = true
	return reference, report
}

// settle reads the move history in standard notation. The history is
// reread a few times while it is shorter than the position's ply, since the
// surface may not have rendered the latest moves yet.
func (resync *Resynchronizer) settle(ctx context.Context, ply int) ([]string, error) {
	for attempt := 0; ; attempt++ {
		raw, err := resync.history.History(ctx)
		if err != nil {
			return nil, fmt.Errorf("resync: reading history: %w", err)
		}

		moves := make([]string, 0, len(raw))
		for _, move := range raw {
			if text := observe.Clean(move.Text); text != "" {
				moves = append(moves, observe.Disambiguate(text, move.Icon))
			}
		}

		if len(moves) >= ply {
			return moves, nil
		}

		if attempt >= resync.config.SettleAttempts {
			return moves, fmt.Errorf("%w: %d of %d plies", ErrLagging, len(moves), ply)
		}

		select {
		case <-ctx.Done():
			return moves, ctx.Err()
		case <-time.After(resync.config.SettleInterval):
		}
	}
}

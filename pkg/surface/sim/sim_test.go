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

package sim_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notnil/chess"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"laptudirm.com/x/pantomime/pkg/config"
	"laptudirm.com/x/pantomime/pkg/engine"
	"laptudirm.com/x/pantomime/pkg/game"
	"laptudirm.com/x/pantomime/pkg/observe"
	"laptudirm.com/x/pantomime/pkg/position"
	"laptudirm.com/x/pantomime/pkg/surface/sim"
	"laptudirm.com/x/pantomime/pkg/timing"
)

func quiet() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(logger)
}

// randomSearcher reports a random legal move as its only line.
type randomSearcher struct {
	rng *rand.Rand
}

func (searcher *randomSearcher) Analyse(_ context.Context, query engine.Query) ([]engine.Line, error) {
	fen, err := chess.FEN(query.FEN)
	if err != nil {
		return nil, err
	}

	g := chess.NewGame(fen)
	moves := g.ValidMoves()
	if len(moves) == 0 {
		return nil, nil
	}

	move := chess.UCINotation{}.Encode(g.Position(), moves[searcher.rng.Intn(len(moves))])
	return []engine.Line{{Rank: 1, Depth: 1, Move: move, PV: []string{move}}}, nil
}

func TestRender(t *testing.T) {
	tests := []struct {
		san  string
		ply  int
		want observe.RawMove
	}{
		{"e4", 0, observe.RawMove{Text: "1. e4", Icon: "pawn-white"}},
		{"Nf3", 2, observe.RawMove{Text: "2. f3", Icon: "knight-white"}},
		{"Nxd4", 3, observe.RawMove{Text: "xd4", Icon: "knight-black"}},
		{"Qh4#", 3, observe.RawMove{Text: "h4#", Icon: "queen-black"}},
		{"O-O", 8, observe.RawMove{Text: "5. O-O", Icon: "king-white"}},
		{"exd5", 4, observe.RawMove{Text: "3. exd5", Icon: "pawn-white"}},
	}

	for _, test := range tests {
		got := sim.Render(test.san, test.ply)
		require.Equal(t, test.want, got, test.san)

		// reading the move back restores the piece letter
		require.Equal(t, test.san, observe.Disambiguate(observe.Clean(got.Text), got.Icon))
	}

	// disambiguated moves keep their origin, which resolves them
	got := sim.Render("Nbd2", 6)
	require.Equal(t, observe.RawMove{Text: "4. bd2", Icon: "knight-white"}, got)
}

func TestBlackFaces(t *testing.T) {
	board, err := sim.New(context.Background(), sim.Config{Color: position.Black}, rand.New(rand.NewSource(1)), quiet())
	require.NoError(t, err)

	flipped, err := board.Flipped(context.Background())
	require.NoError(t, err)
	require.True(t, flipped)

	// the opponent has already moved
	move, found, err := board.MoveAt(context.Background(), 0)
	require.NoError(t, err)
	require.True(t, found)
	require.Contains(t, move.Icon, "-white")
	require.Len(t, board.Moves(), 1)

	_, err = sim.New(context.Background(), sim.Config{}, rand.New(rand.NewSource(1)), quiet())
	require.Error(t, err)
}

func TestReplyDelay(t *testing.T) {
	ctx := context.Background()
	board, err := sim.New(ctx, sim.Config{
		Color:      position.White,
		ReplyDelay: 50 * time.Millisecond,
	}, rand.New(rand.NewSource(1)), quiet())
	require.NoError(t, err)

	e4, found := position.New().LookupUCI("e2e4")
	require.True(t, found)
	require.NoError(t, board.Submit(ctx, e4, timing.Normal, false))

	_, found, err = board.MoveAt(ctx, 1)
	require.NoError(t, err)
	require.False(t, found)

	history, err := board.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)

	// moving before the reply is shown is not possible
	require.ErrorIs(t, board.Submit(ctx, e4, timing.Normal, false), sim.ErrNotYourTurn)

	require.Eventually(t, func() bool {
		_, found, _ := board.MoveAt(ctx, 1)
		return found
	}, time.Second, 5*time.Millisecond)
}

func TestSubmitChecks(t *testing.T) {
	ctx := context.Background()
	board, err := sim.New(ctx, sim.Config{Color: position.White, MaxPlies: 2}, rand.New(rand.NewSource(1)), quiet())
	require.NoError(t, err)

	d4, _ := position.New().LookupUCI("d2d4")
	require.Error(t, board.Submit(ctx, d4, timing.Normal, true))
	require.NoError(t, board.Submit(ctx, d4, timing.Abbreviated, false))
	require.Equal(t, []timing.Style{timing.Abbreviated}, board.Styles)

	// two plies have been played, the game is adjudicated
	text, found, err := board.ResultText(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1/2-1/2", text)

	over, err := board.GameOver(ctx)
	require.NoError(t, err)
	require.True(t, over)

	_, reason, ended := board.Outcome()
	require.True(t, ended)
	require.Equal(t, "adjudicated", reason)

	require.ErrorIs(t, board.Submit(ctx, d4, timing.Normal, false), sim.ErrGameOver)
}

func TestClockText(t *testing.T) {
	ctx := context.Background()
	tc, err := timing.ParseTime("60+1")
	require.NoError(t, err)

	board, err := sim.New(ctx, sim.Config{Color: position.White, TimeControl: tc}, rand.New(rand.NewSource(1)), quiet())
	require.NoError(t, err)

	text, found, err := board.ClockText(ctx)
	require.NoError(t, err)
	require.True(t, found)

	clock, err := timing.ParseClock(text)
	require.NoError(t, err)
	require.Greater(t, clock, 55*time.Second)
	require.LessOrEqual(t, clock, time.Minute)

	untimed, err := sim.New(ctx, sim.Config{Color: position.White}, rand.New(rand.NewSource(1)), quiet())
	require.NoError(t, err)

	_, found, err = untimed.ClockText(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

type failing struct{}

func (failing) Analyse(context.Context, engine.Query) ([]engine.Line, error) {
	return nil, errors.New("engine crashed")
}

func TestEngineOpponent(t *testing.T) {
	pos := position.New()

	opponent := sim.NewEngineOpponent(&randomSearcher{rng: rand.New(rand.NewSource(3))}, 4)
	move, err := opponent.Move(context.Background(), pos)
	require.NoError(t, err)

	_, found := pos.LookupUCI(move.UCI)
	require.True(t, found)

	_, err = sim.NewEngineOpponent(failing{}, 4).Move(context.Background(), pos)
	require.Error(t, err)

	// a failing opponent is replaced by the fallback
	board, err := sim.New(context.Background(), sim.Config{
		Color:    position.Black,
		Opponent: sim.NewEngineOpponent(failing{}, 4),
	}, rand.New(rand.NewSource(1)), quiet())
	require.NoError(t, err)
	require.Len(t, board.Moves(), 1)
}

func simConfig() config.Config {
	cfg := config.Default()
	cfg.Mode = config.Bullet
	cfg.AdvancedTimeManagement = false
	cfg.Book.Enabled = true

	cfg.Timing.Enabled = false
	cfg.Timing.ArtificialMin = 0
	cfg.Timing.ArtificialMax = 0
	cfg.Timing.Chunked = false

	cfg.Observer.MoveTimeout = 2 * time.Second
	cfg.Observer.GameOverTimeout = 20 * time.Millisecond
	cfg.Observer.PollInterval = time.Millisecond

	cfg.Idle.Enabled = true
	cfg.Idle.Probability = 1
	cfg.Idle.Actions = []string{"board_scan"}
	return cfg
}

func TestFullGame(t *testing.T) {
	for _, color := range []position.Color{position.White, position.Black} {
		t.Run(color.String(), func(t *testing.T) {
			ctx := context.Background()
			rng := rand.New(rand.NewSource(11))

			board, err := sim.New(ctx, sim.Config{
				Color:    color,
				MaxPlies: 60,
			}, rng, quiet())
			require.NoError(t, err)

			session := game.NewSession(simConfig(), game.Dependencies{
				Surface:   board,
				Searcher:  &randomSearcher{rng: rand.New(rand.NewSource(5))},
				Performer: board,
				Log:       quiet(),
			}, rng)

			result, err := session.Start(ctx)
			require.NoError(t, err)

			text, _, over := board.Outcome()
			require.True(t, over)
			require.Equal(t, text, result.Text)
			require.Equal(t, color, result.Color)
			require.Equal(t, game.Attribute(text, color), result.Outcome)

			require.Zero(t, result.Skipped)
			require.Zero(t, result.Resyncs)
			// a game ending on the opponent's move may end before it is read
			require.InDelta(t, len(board.Moves()), result.Plies, 1)
			require.Positive(t, board.Idled["board_scan"])
		})
	}
}

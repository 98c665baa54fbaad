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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/pantomime/pkg/book"
	"laptudirm.com/x/pantomime/pkg/engine"
	"laptudirm.com/x/pantomime/pkg/game"
	"laptudirm.com/x/pantomime/pkg/position"
	"laptudirm.com/x/pantomime/pkg/stats"
	"laptudirm.com/x/pantomime/pkg/surface/sim"
	"laptudirm.com/x/pantomime/pkg/timing"
)

func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play games on a simulated board",
		Args:  cobra.ExactArgs(0),
		Long: heredoc.Doc(`play plays a series of games on a simulated board, which
			shows its moves like a web chess client does, against a
			sparring opponent.

			The sparring opponent is either a second engine searching to
			a fixed depth, configured under the sparring section of the
			configuration, or a player making random moves. The colors
			alternate between games unless a color is given.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			games, _ := cmd.Flags().GetInt("games")
			opponentKind, _ := cmd.Flags().GetString("opponent")
			colorName, _ := cmd.Flags().GetString("color")

			if cmd.Flag("seed").Changed {
				cfg.Seed, _ = cmd.Flags().GetUint64("seed")
			}

			if games < 1 {
				return errors.New("play: at least one game must be played")
			}

			if opponentKind != "engine" && opponentKind != "random" {
				return fmt.Errorf("play: unknown opponent %q", opponentKind)
			}

			if tc, err := timing.ParseTime(cfg.Sparring.TimeControl); err == nil && tc.Mode() != cfg.Mode {
				logrus.Warnf("playing %s time control in %s mode", tc.Mode(), cfg.Mode)
			}

			rng, seed := newRand(cfg.Seed)
			logrus.Infof("Random seed: %d", seed)

			books, err := loadBooks(cfg)
			if err != nil {
				return err
			}

			done := working("Starting engines...")
			player, err := engine.StartEngine(cfg.Engine.Config)
			if err != nil {
				done()
				return fmt.Errorf("play: starting %s: %w", cfg.Engine.Name, err)
			}
			defer player.Kill()

			var sparring *engine.Engine
			if opponentKind == "engine" {
				sparring, err = engine.StartEngine(cfg.Sparring.Engine)
				if err != nil {
					done()
					return fmt.Errorf("play: starting %s: %w", cfg.Sparring.Engine.Name, err)
				}
				defer sparring.Kill()
			}
			done()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			var tally stats.Tally
			for i := 0; i < games && ctx.Err() == nil; i++ {
				color := position.White
				switch {
				case colorName == "black":
					color = position.Black
				case colorName == "alternate" && i%2 == 1:
					color = position.Black
				}

				var opponent sim.Opponent = sim.NewRandomOpponent(rng)
				if sparring != nil {
					if err := sparring.NewGame(); err != nil {
						return err
					}

					opponent = sim.NewEngineOpponent(sparring, cfg.Sparring.Depth)
				}

				if err := player.NewGame(); err != nil {
					return err
				}

				boardConfig, err := sim.FromSparring(cfg.Sparring, color, opponent)
				if err != nil {
					return err
				}

				log := logrus.WithField("round", i+1)
				board, err := sim.New(ctx, boardConfig, rng, log)
				if err != nil {
					return err
				}

				session := game.NewSession(cfg, game.Dependencies{
					Surface:   board,
					Searcher:  player,
					Book:      book.Select(books, rng),
					Performer: board,
					Log:       log,
				}, rng)

				result, err := session.Start(ctx)
				if err != nil {
					if ctx.Err() != nil {
						break
					}

					tally.Abort(result)
					fmt.Printf("Game %d: \x1b[31maborted\x1b[0m as %s: %v\n", i+1, color, err)
					continue
				}

				tally.Add(result)
				fmt.Printf("Game %d: %s as %s, %s (%s)\n", i+1, outcomeText(result.Outcome), color, result.Text, result.Reason)
			}

			printTally(&tally)
			return nil
		},
	}

	cmd.Flags().IntP("games", "n", 1, "Number of games to play")
	cmd.Flags().Uint64P("seed", "s", 0, "Seed of the random decisions")
	cmd.Flags().StringP("opponent", "o", "engine", "Sparring opponent (engine, random)")
	cmd.Flags().String("color", "alternate", "Color to play (white, black, alternate)")

	return cmd
}

func outcomeText(outcome game.Outcome) string {
	switch outcome {
	case game.Win:
		return "\x1b[32mwin\x1b[0m"
	case game.Loss:
		return "\x1b[31mloss\x1b[0m"
	case game.Draw:
		return "\x1b[33mdraw\x1b[0m"
	default:
		return outcome.String()
	}
}

func printTally(tally *stats.Tally) {
	lo, mu, hi := tally.Elo()

	fmt.Println()
	fmt.Printf("Score:    %s\n", tally)
	fmt.Printf("Win rate: %.1f%%\n", 100*tally.WinRate())
	fmt.Printf("Elo:      %+.1f [%+.1f, %+.1f]\n", mu, lo, hi)

	if tally.Unknown > 0 || tally.Aborted > 0 {
		fmt.Printf("Unknown:  %d, aborted: %d\n", tally.Unknown, tally.Aborted)
	}

	fmt.Printf("Resyncs:  %d, skipped moves: %d\n", tally.Resyncs, tally.Skipped)
}

// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
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

// Package stats keeps the tally of a series of games.
package stats

import (
	"fmt"
	"math"

	"laptudirm.com/x/pantomime/pkg/game"
)

// Tally counts the outcomes of a series of games.
type Tally struct {
	Wins, Draws, Losses int
	Unknown             int // games with an unknown outcome
	Aborted             int // games which ended with an error

	Resyncs int
	Skipped int
}

// Add adds the result of a finished game to the tally.
func (tally *Tally) Add(result game.Result) {
	switch result.Outcome {
	case game.Win:
		tally.Wins++
	case game.Draw:
		tally.Draws++
	case game.Loss:
		tally.Losses++
	default:
		tally.Unknown++
	}

	tally.Resyncs += result.Resyncs
	tally.Skipped += result.Skipped
}

// Abort adds a game which couldn't be finished to the tally.
func (tally *Tally) Abort(result game.Result) {
	tally.Aborted++
	tally.Resyncs += result.Resyncs
	tally.Skipped += result.Skipped
}

// Games returns the number of games with a known outcome.
func (tally *Tally) Games() int {
	return tally.Wins + tally.Draws + tally.Losses
}

// Score returns the points scored, counting draws as half a point.
func (tally *Tally) Score() float64 {
	return float64(tally.Wins) + float64(tally.Draws)/2
}

// WinRate returns the fraction of games with a known outcome which were
// won.
func (tally *Tally) WinRate() float64 {
	if tally.Games() == 0 {
		return 0
	}

	return float64(tally.Wins) / float64(tally.Games())
}

// Elo returns the performance of the system relative to its opponent.
func (tally *Tally) Elo() (muMin, mu, muMax float64) {
	return Elo(tally.Wins, tally.Draws, tally.Losses)
}

func (tally *Tally) String() string {
	_, mu, _ := tally.Elo()
	return fmt.Sprintf("+%d =%d -%d (%.1f/%d, %+.0f elo)",
		tally.Wins, tally.Draws, tally.Losses, tally.Score(), tally.Games(), mu)
}

// Elo returns the likely elo of the target player along with its p < 0.05
// upper bound and lower bound, called mu, muMax, and muMin respectively.
func Elo(ws, ds, ls int) (muMin float64, mu float64, muMax float64) {
	N := float64(ws + ds + ls) // total number of games

	if N == 0 {
		return 0, 0, 0
	}

	w := float64(ws) / N // measured win probability
	d := float64(ds) / N // measured draw probability
	l := float64(ls) / N // measured loss probability

	// empirical mean of random variable
	mu = w + d/2

	// standard deviation of the random variable
	sigma := math.Sqrt(w*math.Pow(1-mu, 2)+d*math.Pow(0.5-mu, 2)+l*math.Pow(0-mu, 2)) / math.Sqrt(N)

	muMax = mu + phiInv(0.975)*sigma // upper bound
	muMin = mu + phiInv(0.025)*sigma // lower bound

	return scoreToElo(muMin), scoreToElo(mu), scoreToElo(muMax)
}

// scoreToElo converts an expected score to an elo difference. Scores of 0
// and 1 have no finite elo and are reported as 0.
func scoreToElo(x float64) float64 {
	switch {
	case x <= 0, x >= 1:
		return 0

	default:
		return -400 * math.Log10(1/x-1)
	}
}

func phiInv(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}

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

// Package observe watches an externally rendered game for the opponent's
// moves and for the end of the game.
package observe

import "context"

// RawMove is a move as it is displayed by the observed surface.
type RawMove struct {
	Text string // eg. "12. xd4"
	Icon string // icon category shown next to the text, eg. "knight-white"
}

// Source is a read-only view of an externally rendered game. Errors are
// treated as the information being unavailable at the moment.
type Source interface {
	// ResultText returns the result shown at the end of the game.
	ResultText(ctx context.Context) (string, bool, error)

	// GameOver reports whether a generic game over marker is shown.
	GameOver(ctx context.Context) (bool, error)

	// MoveAt returns the move displayed for the given ply, counting from 0.
	MoveAt(ctx context.Context, ply int) (RawMove, bool, error)

	// History returns every move displayed, in order.
	History(ctx context.Context) ([]RawMove, error)

	// Flipped reports whether the board is shown from black's side.
	Flipped(ctx context.Context) (bool, error)

	// ClockText returns the remaining time shown on the system's clock.
	ClockText(ctx context.Context) (string, bool, error)
}

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

import "github.com/notnil/chess"

// Status is the terminal status of a position.
type Status int

const (
	Ongoing Status = iota
	Checkmate
	Stalemate
	DrawRule
)

// Terminal describes how a game ended.
type Terminal struct {
	Status Status
	Winner Color // NoColor unless Status is Checkmate
	Reason string
}

// Result returns the terminal status in result notation.
func (terminal Terminal) Result() string {
	switch {
	case terminal.Status == Ongoing:
		return "*"
	case terminal.Winner == White:
		return "1-0"
	case terminal.Winner == Black:
		return "0-1"
	default:
		return "1/2-1/2"
	}
}

// Terminal reports whether the game has ended, and how.
func (pos *Position) Terminal() (Terminal, bool) {
	switch pos.game.Position().Status() {
	case chess.Checkmate:
		return Terminal{
			Status: Checkmate,
			Winner: pos.SideToMove().Other(),
			Reason: "checkmate",
		}, true

	case chess.Stalemate:
		return Terminal{Status: Stalemate, Reason: "stalemate"}, true
	}

	if reason, drawn := pos.rules.Draw(); drawn {
		return Terminal{Status: DrawRule, Reason: reason}, true
	}

	return Terminal{}, false
}

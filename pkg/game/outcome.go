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

package game

import (
	"strings"

	"laptudirm.com/x/pantomime/pkg/position"
)

// Outcome is the result of a game for the system's side.
type Outcome int

const (
	Win  Outcome = +1
	Draw Outcome = 0
	Loss Outcome = -1

	// Unknown is used when the result or the system's color couldn't be
	// observed.
	Unknown Outcome = 2
)

// String returns a string representation of the given Outcome.
func (outcome Outcome) String() string {
	switch outcome {
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Loss:
		return "loss"
	default:
		return "unknown"
	}
}

// Attribute maps a result in result notation to the outcome for the given
// color.
func Attribute(result string, color position.Color) Outcome {
	var winner position.Color
	switch strings.TrimSpace(result) {
	case "1/2-1/2":
		if color == position.NoColor {
			return Unknown
		}
		return Draw
	case "1-0":
		winner = position.White
	case "0-1":
		winner = position.Black
	default:
		return Unknown
	}

	switch color {
	case winner:
		return Win
	case winner.Other():
		return Loss
	default:
		return Unknown
	}
}

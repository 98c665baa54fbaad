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

// Move is an immutable description of a single legal move.
type Move struct {
	From, To  string
	Promotion string // lowercase piece letter, empty if none

	UCI string // coordinate notation, eg. e7e8q
	SAN string // standard notation, eg. e8=Q+
}

func newMove(pos *chess.Position, move *chess.Move) Move {
	uci := chess.UCINotation{}.Encode(pos, move)

	var promotion string
	if len(uci) == 5 {
		promotion = uci[4:]
	}

	return Move{
		From:      move.S1().String(),
		To:        move.S2().String(),
		Promotion: promotion,

		UCI: uci,
		SAN: chess.AlgebraicNotation{}.Encode(pos, move),
	}
}

// IsZero reports whether the move is the zero value.
func (move Move) IsZero() bool {
	return move.UCI == ""
}

func (move Move) String() string {
	return move.SAN
}

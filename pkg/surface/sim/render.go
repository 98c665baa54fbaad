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

package sim

import (
	"fmt"
	"strings"

	"laptudirm.com/x/pantomime/pkg/observe"
	"laptudirm.com/x/pantomime/pkg/position"
)

var pieceNames = map[byte]string{
	'N': "knight",
	'B': "bishop",
	'R': "rook",
	'Q': "queen",
	'K': "king",
}

// Render shows a move in figurine notation: the piece letter is replaced
// by an icon and white's moves are prefixed by the move number.
func Render(san string, ply int) observe.RawMove {
	color := position.ColorOfPly(ply)

	var prefix string
	if color == position.White {
		prefix = fmt.Sprintf("%d. ", ply/2+1)
	}

	icon, text := "pawn", san
	switch {
	case strings.HasPrefix(san, "O-O"):
		icon = "king"
	case len(san) > 0 && pieceNames[san[0]] != "":
		icon, text = pieceNames[san[0]], san[1:]
	}

	return observe.RawMove{
		Text: prefix + text,
		Icon: icon + "-" + strings.ToLower(color.String()),
	}
}

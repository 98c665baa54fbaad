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

import "strings"

var iconLetters = []struct {
	prefix string
	letter string
}{
	{"knight", "N"},
	{"bishop", "B"},
	{"rook", "R"},
	{"queen", "Q"},
	{"king", "K"},
}

// Clean strips any move number prefix, like "12." or "12...", from the
// displayed text of a move.
func Clean(text string) string {
	if i := strings.LastIndex(text, "."); i >= 0 {
		text = text[i+1:]
	}

	return strings.TrimSpace(text)
}

// Disambiguate restores the piece letter of a move whose piece is shown as
// an icon instead of a letter. Only captures without a leading piece, like
// "xd4", and bare destination squares, like "f3", are rewritten.
func Disambiguate(text, icon string) string {
	if !needsLetter(text) {
		return text
	}

	icon = strings.ToLower(strings.TrimSpace(icon))
	for _, mapping := range iconLetters {
		if strings.HasPrefix(icon, mapping.prefix) {
			return mapping.letter + text
		}
	}

	return text
}

func needsLetter(text string) bool {
	if strings.HasPrefix(text, "x") {
		return true
	}

	square := strings.TrimRight(text, "+#")
	return len(square) == 2 &&
		square[0] >= 'a' && square[0] <= 'h' &&
		square[1] >= '1' && square[1] <= '8'
}

// NormalizeResult converts the result text shown by a surface into result
// notation. Unrecognized text is returned as is.
func NormalizeResult(text string) string {
	text = strings.TrimSpace(text)
	switch strings.ReplaceAll(text, "½", "1/2") {
	case "1-0":
		return "1-0"
	case "0-1":
		return "0-1"
	case "1/2-1/2":
		return "1/2-1/2"
	default:
		return text
	}
}

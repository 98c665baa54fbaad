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

package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// MateScore is the centipawn value of delivering mate on the board. Mate
// in n is scored as MateScore - n.
const MateScore = 10000

// Query describes a single search request.
type Query struct {
	FEN   string
	Depth int
	Nodes int // 0 for no node limit
	Lines int // number of principal variations
}

func (query Query) command() string {
	command := "go"
	if query.Depth > 0 {
		command += fmt.Sprintf(" depth %d", query.Depth)
	}

	if query.Nodes > 0 {
		command += fmt.Sprintf(" nodes %d", query.Nodes)
	}

	if command == "go" {
		command += " infinite"
	}

	return command
}

// Score is an evaluation from the point of view of the side to move.
type Score struct {
	Centipawns int
	Mate       int // moves to mate, negative if getting mated
	IsMate     bool
}

// Value folds the score into a single centipawn scale.
func (score Score) Value() int {
	switch {
	case !score.IsMate:
		return score.Centipawns
	case score.Mate > 0:
		return MateScore - score.Mate
	default:
		return -MateScore - score.Mate
	}
}

// Line is a single principal variation reported by the engine.
type Line struct {
	Rank  int
	Depth int
	Score Score
	Move  string   // first move of the variation
	PV    []string // the complete variation
}

// ParseInfo parses an info line carrying a scored principal variation.
// Lines without a score or a variation are ignored.
func ParseInfo(text string) (Line, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || fields[0] != "info" {
		return Line{}, false
	}

	line := Line{Rank: 1}
	scored := false

	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "multipv":
			if i+1 < len(fields) {
				line.Rank, _ = strconv.Atoi(fields[i+1])
				i++
			}

		case "depth":
			if i+1 < len(fields) {
				line.Depth, _ = strconv.Atoi(fields[i+1])
				i++
			}

		case "score":
			if i+2 >= len(fields) {
				return Line{}, false
			}

			value, err := strconv.Atoi(fields[i+2])
			if err != nil {
				return Line{}, false
			}

			switch fields[i+1] {
			case "cp":
				line.Score = Score{Centipawns: value}
			case "mate":
				line.Score = Score{Mate: value, IsMate: true}
			default:
				return Line{}, false
			}

			scored = true
			i += 2

		case "pv":
			line.PV = fields[i+1:]
			i = len(fields)
		}
	}

	if !scored || len(line.PV) == 0 || line.Rank < 1 {
		return Line{}, false
	}

	line.Move = line.PV[0]
	return line, true
}

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
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		ok    bool
		rank  int
		move  string
		value int
	}{
		{"centipawns", "info depth 12 seldepth 18 multipv 2 score cp -35 nodes 1000 pv g8f6 c2c4", true, 2, "g8f6", -35},
		{"no multipv", "info depth 3 score cp 12 pv e2e4", true, 1, "e2e4", 12},
		{"mate for", "info depth 9 multipv 1 score mate 3 pv d1h5 g7g6", true, 1, "d1h5", MateScore - 3},
		{"mate against", "info depth 9 multipv 3 score mate -2 pv e1f2", true, 3, "e1f2", -MateScore + 2},
		{"bound", "info depth 9 multipv 1 score cp 40 lowerbound nodes 10 pv e2e4", true, 1, "e2e4", 40},
		{"no pv", "info depth 9 score cp 40 nodes 10", false, 0, "", 0},
		{"no score", "info depth 9 currmove e2e4 currmovenumber 1", false, 0, "", 0},
		{"string", "info string NNUE evaluation enabled", false, 0, "", 0},
		{"not info", "bestmove e2e4 ponder e7e5", false, 0, "", 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			line, ok := ParseInfo(test.text)
			require.Equal(t, test.ok, ok)
			if !ok {
				return
			}

			require.Equal(t, test.rank, line.Rank)
			require.Equal(t, test.move, line.Move)
			require.Equal(t, test.value, line.Score.Value())
		})
	}
}

func TestQueryCommand(t *testing.T) {
	require.Equal(t, "go depth 10 nodes 5000", Query{Depth: 10, Nodes: 5000}.command())
	require.Equal(t, "go depth 8", Query{Depth: 8}.command())
	require.Equal(t, "go infinite", Query{}.command())
}

// TestHelperProcess is not a real test: it is started as a subprocess by
// the tests below to act as a minimal UCI engine.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("PANTOMIME_FAKE_ENGINE") != "1" {
		return
	}

	out := bufio.NewWriter(os.Stdout)
	reply := func(format string, a ...any) {
		fmt.Fprintf(out, format+"\n", a...)
		out.Flush()
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "uci":
			reply("id name fake")
			reply("uciok")
		case "isready":
			reply("readyok")
		case "go":
			reply("info depth 1 multipv 1 score cp 10 pv g1f3")
			reply("info depth 2 multipv 1 score cp 30 pv e2e4 e7e5")
			reply("info depth 2 multipv 2 score cp 25 pv d2d4 d7d5")
			reply("info depth 2 multipv 3 score cp -5 pv b1c3")
			reply("bestmove e2e4")
		case "quit":
			os.Exit(0)
		}
	}

	os.Exit(0)
}

func startFake(t *testing.T) *Engine {
	t.Helper()

	engine, err := StartEngine(Config{
		Name:    "fake",
		Cmd:     os.Args[0],
		Arg:     "-test.run=TestHelperProcess",
		Env:     []string{"PANTOMIME_FAKE_ENGINE=1"},
		Options: map[string]string{"Threads": "1", "Hash": "16"},
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = engine.Kill() })
	return engine
}

func TestAnalyse(t *testing.T) {
	engine := startFake(t)

	lines, err := engine.Analyse(context.Background(), Query{
		FEN:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		Depth: 2,
		Nodes: 1000,
		Lines: 3,
	})
	require.NoError(t, err)
	require.Len(t, lines, 3)

	require.Equal(t, "e2e4", lines[0].Move)
	require.Equal(t, 30, lines[0].Score.Value())
	require.Equal(t, "d2d4", lines[1].Move)
	require.Equal(t, "b1c3", lines[2].Move)

	// fewer lines than reported
	lines, err = engine.Analyse(context.Background(), Query{
		FEN:   "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		Depth: 2,
		Lines: 1,
	})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Equal(t, "e2e4", lines[0].Move)
}

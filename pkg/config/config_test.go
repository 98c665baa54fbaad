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

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"laptudirm.com/x/pantomime/pkg/config"
	"laptudirm.com/x/pantomime/pkg/position"
)

func write(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pantomime.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestDefault(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestLoad(t *testing.T) {
	path := write(t, `
mode: rapid
seed: 42
engine:
  cmd: /usr/bin/stockfish
  multipv: 4
  endgame:
    depth-min: 18
    depth-max: 24
    nodes-min: 0
    nodes-max: 0
observer:
  move-timeout: 5s
blunder:
  chance-min: 0.01
  chance-max: 0.02
`)

	loaded, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, config.Rapid, loaded.Mode)
	require.Equal(t, uint64(42), loaded.Seed)
	require.Equal(t, "/usr/bin/stockfish", loaded.Engine.Cmd)
	require.Equal(t, 4, loaded.Engine.MultiPV)
	require.Equal(t, 5*time.Second, loaded.Observer.MoveTimeout)
	require.Equal(t, 0.02, loaded.Blunder.ChanceMax)

	// untouched options keep their defaults
	require.Equal(t, config.Default().Observer.GameOverTimeout, loaded.Observer.GameOverTimeout)
	require.Equal(t, config.Default().Engine.Opening, loaded.Engine.Budget(position.Opening))
	require.Equal(t, 24, loaded.Engine.Budget(position.Endgame).DepthMax)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		message  string
	}{
		{"mode", "mode: classical", "Mode must be one of"},
		{"chance range", "blunder: {chance-min: 0.2, chance-max: 0.1}", "Blunder.ChanceMax"},
		{"depth range", "engine: {middlegame: {depth-min: 10, depth-max: 5}}", "Engine.Middlegame.DepthMax"},
		{"probability", "timing: {deep-thought-probability: 2}", "Timing.DeepThoughtProbability must be at most"},
		{"idle actions", "idle: {enabled: true, actions: [juggle]}", "Idle.Actions"},
		{"syntax", "mode: [", ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := config.Load(write(t, test.contents))
			require.Error(t, err)
			require.Contains(t, err.Error(), test.message)
		})
	}
}

func TestMarshal(t *testing.T) {
	data, err := config.Default().Marshal()
	require.NoError(t, err)

	path := write(t, string(data))
	loaded, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, config.Default(), loaded)
}

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

package timing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"laptudirm.com/x/pantomime/pkg/config"
	"laptudirm.com/x/pantomime/pkg/position"
	"laptudirm.com/x/pantomime/pkg/timing"
)

func model(mode config.Mode, seed uint64, edit ...func(*config.Config)) *timing.Model {
	cfg := config.Default()
	cfg.Mode = mode
	for _, e := range edit {
		e(&cfg)
	}

	return timing.New(cfg, rand.New(rand.NewSource(seed)))
}

func TestFirstMove(t *testing.T) {
	bounds := map[config.Mode]time.Duration{
		config.Bullet: time.Second,
		config.Blitz:  2500 * time.Millisecond,
		config.Rapid:  4 * time.Second,
	}

	for mode, upper := range bounds {
		t.Run(string(mode), func(t *testing.T) {
			m := model(mode, 3)
			for i := 0; i < 1000; i++ {
				plan := m.Delay(timing.Request{Ply: i % 2, Phase: position.Opening, LegalMoves: 20})
				require.Equal(t, timing.FirstMove, plan.Reason)
				require.LessOrEqual(t, plan.Delay, upper)
				require.Positive(t, plan.Delay)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	bounds := map[config.Mode][2]time.Duration{
		config.Bullet: {200 * time.Millisecond, 3 * time.Second},
		config.Blitz:  {500 * time.Millisecond, 12 * time.Second},
		config.Rapid:  {time.Second, 60 * time.Second},
	}

	for mode, bound := range bounds {
		t.Run(string(mode), func(t *testing.T) {
			m := model(mode, 5)
			for i := 0; i < 2000; i++ {
				plan := m.Delay(timing.Request{
					Ply:        10 + i%50,
					Phase:      position.Phase(i % 3),
					LegalMoves: i % 60,
				})

				require.GreaterOrEqual(t, plan.Delay, bound[0])
				require.LessOrEqual(t, plan.Delay, bound[1])
				require.Equal(t, timing.Normal, plan.Style)
			}
		})
	}
}

func TestDeepThought(t *testing.T) {
	const samples = 5000

	count := func(mode config.Mode) float64 {
		m := model(mode, 11)

		n := 0
		for i := 0; i < samples; i++ {
			plan := m.Delay(timing.Request{Ply: 30, Phase: position.Middlegame, LegalMoves: 30})
			if plan.Reason == timing.DeepThought {
				if mode == config.Rapid {
					require.GreaterOrEqual(t, plan.Delay, 15*time.Second)
				}

				n++
			}
		}

		return float64(n) / samples
	}

	require.InDelta(t, 0.08, count(config.Rapid), 0.02)
	require.InDelta(t, 0.02, count(config.Blitz), 0.01)
	require.Zero(t, count(config.Bullet))
}

func TestTimePressure(t *testing.T) {
	m := model(config.Blitz, 7)

	tests := []struct {
		clock   time.Duration
		pressed bool
		upper   time.Duration
	}{
		{5 * time.Second, true, 300 * time.Millisecond},
		{45 * time.Second, true, 800 * time.Millisecond},
		{80 * time.Second, true, 1200 * time.Millisecond},
		{5 * time.Minute, false, 0},
	}

	for _, test := range tests {
		for i := 0; i < 100; i++ {
			// the pressure override applies to first moves too
			plan := m.Delay(timing.Request{Ply: i % 40, Phase: position.Middlegame, LegalMoves: 40, Clock: test.clock, ClockKnown: true})
			if !test.pressed {
				require.NotEqual(t, timing.Pressure, plan.Reason)
				continue
			}

			require.Equal(t, timing.Pressure, plan.Reason)
			require.Equal(t, timing.Abbreviated, plan.Style)
			require.LessOrEqual(t, plan.Delay, test.upper)
		}
	}

	t.Run("unknown clock", func(t *testing.T) {
		plan := m.Delay(timing.Request{Ply: 20, Phase: position.Middlegame, LegalMoves: 30, Clock: time.Second})
		require.NotEqual(t, timing.Pressure, plan.Reason)
	})

	t.Run("basic time management", func(t *testing.T) {
		basic := model(config.Blitz, 7, func(cfg *config.Config) { cfg.AdvancedTimeManagement = false })

		plan := basic.Delay(timing.Request{Ply: 20, Phase: position.Middlegame, LegalMoves: 30, Clock: time.Second, ClockKnown: true})
		require.NotEqual(t, timing.Pressure, plan.Reason)
	})
}

func TestArtificial(t *testing.T) {
	m := model(config.Rapid, 9, func(cfg *config.Config) {
		cfg.Timing.Enabled = false
		cfg.Timing.ArtificialMin = 100 * time.Millisecond
		cfg.Timing.ArtificialMax = 300 * time.Millisecond
	})

	for i := 0; i < 200; i++ {
		plan := m.Delay(timing.Request{Ply: 12, Phase: position.Endgame, LegalMoves: 10})
		require.Equal(t, timing.Artificial, plan.Reason)
		require.GreaterOrEqual(t, plan.Delay, 100*time.Millisecond)
		require.LessOrEqual(t, plan.Delay, 300*time.Millisecond)
	}
}

func TestComplexity(t *testing.T) {
	require.Equal(t, 0.6, timing.Complexity(0))
	require.Equal(t, 0.6, timing.Complexity(5))
	require.Equal(t, 1.5, timing.Complexity(45))
	require.Equal(t, 1.5, timing.Complexity(200))

	previous := 0.0
	for n := 0; n < 60; n++ {
		require.GreaterOrEqual(t, timing.Complexity(n), previous)
		previous = timing.Complexity(n)
	}
}

func TestSchedule(t *testing.T) {
	m := model(config.Rapid, 13)

	for _, delay := range []time.Duration{time.Millisecond, 700 * time.Millisecond, 3 * time.Second, 42 * time.Second} {
		for i := 0; i < 50; i++ {
			parts := m.Schedule(delay)
			require.GreaterOrEqual(t, len(parts), 3)
			require.LessOrEqual(t, len(parts), 9)

			var total time.Duration
			for _, part := range parts {
				require.GreaterOrEqual(t, part, time.Duration(0))
				total += part
			}

			require.Equal(t, delay, total)
		}
	}

	require.Empty(t, m.Schedule(0))

	unchunked := model(config.Rapid, 13, func(cfg *config.Config) { cfg.Timing.Chunked = false })
	require.Equal(t, []time.Duration{time.Second}, unchunked.Schedule(time.Second))
}

func TestWait(t *testing.T) {
	m := model(config.Bullet, 1)

	start := time.Now()
	require.NoError(t, m.Wait(context.Background(), 50*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, m.Wait(ctx, time.Minute), context.Canceled)
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		text  string
		clock time.Duration
	}{
		{"3:00", 3 * time.Minute},
		{"0:09", 9 * time.Second},
		{" 12:34 ", 12*time.Minute + 34*time.Second},
		{"1:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"8.5", 8500 * time.Millisecond},
	}

	for _, test := range tests {
		clock, err := timing.ParseClock(test.text)
		require.NoError(t, err, test.text)
		require.Equal(t, test.clock, clock, test.text)
	}

	for _, text := range []string{"", "a:bc", "1:2:3:4", "-5", "NaN", "Inf", "-Inf", "1:+Inf"} {
		_, err := timing.ParseClock(text)
		require.Error(t, err, text)
	}

	for _, clock := range []time.Duration{3 * time.Minute, 75 * time.Second, time.Hour + 5*time.Second, 8500 * time.Millisecond} {
		parsed, err := timing.ParseClock(timing.FormatClock(clock))
		require.NoError(t, err)
		require.Equal(t, clock, parsed)
	}
}

func TestParseTime(t *testing.T) {
	tc, err := timing.ParseTime("40/180+2")
	require.NoError(t, err)
	require.Equal(t, timing.TimeControl{MovesToGo: 40, Base: 3 * time.Minute, Inc: 2 * time.Second}, tc)
	require.Equal(t, config.Blitz, tc.Mode())

	tc, err = timing.ParseTime("60+0")
	require.NoError(t, err)
	require.Equal(t, -1, tc.MovesToGo)
	require.Equal(t, config.Bullet, tc.Mode())

	tc, err = timing.ParseTime("2.5+0.1")
	require.NoError(t, err)
	require.Equal(t, 2500*time.Millisecond, tc.Base)
	require.Equal(t, 100*time.Millisecond, tc.Inc)

	for _, text := range []string{"600", "x/60+1", "0/60+1", "60+y", "NaN+1", "60+Inf", "-60+1"} {
		_, err = timing.ParseTime(text)
		require.ErrorContains(t, err, "parse tc:", text)
	}
}

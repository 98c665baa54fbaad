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

package timing

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"laptudirm.com/x/pantomime/pkg/config"
)

// ParseClock parses the remaining time shown by a game clock, in one of
// the forms h:mm:ss, m:ss, or ss.t.
func ParseClock(text string) (time.Duration, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, errors.New("parse clock: empty clock")
	}

	parts := strings.Split(text, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("parse clock: malformed clock %q", text)
	}

	// seconds may carry a fractional part
	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("parse clock: malformed clock %q", text)
	}

	total := time.Duration(secs * float64(time.Second))
	units := []time.Duration{time.Minute, time.Hour}
	for i, j := len(parts)-2, 0; i >= 0; i, j = i-1, j+1 {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("parse clock: malformed clock %q", text)
		}

		total += time.Duration(n) * units[j]
	}

	return total, nil
}

// FormatClock renders a remaining time the way game clocks show it.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	if d < 20*time.Second {
		return fmt.Sprintf("%.1f", d.Seconds())
	}

	d = d.Truncate(time.Second)
	hours, minutes, secs := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}

	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// TimeControl is a time control in the movestogo/base+increment form.
type TimeControl struct {
	MovesToGo int // -1 if the base time covers the whole game
	Base, Inc time.Duration
}

// ParseTime parses a time control of the form [movestogo/]base+increment,
// with both the base and the increment in seconds.
func ParseTime(text string) (TimeControl, error) {
	tc := TimeControl{MovesToGo: -1}

	movesText, timeText, found := strings.Cut(text, "/")
	if found {
		moves, err := strconv.Atoi(movesText)
		if err != nil || moves < 1 {
			return TimeControl{}, fmt.Errorf("parse tc: malformed moves to go %q", movesText)
		}

		tc.MovesToGo = moves
	} else {
		timeText = movesText
	}

	baseText, incText, found := strings.Cut(timeText, "+")
	if !found {
		return TimeControl{}, fmt.Errorf("parse tc: increment not found in %q", text)
	}

	base, err := parseSeconds(baseText)
	if err != nil {
		return TimeControl{}, fmt.Errorf("parse tc: base time: %w", err)
	}

	inc, err := parseSeconds(incText)
	if err != nil {
		return TimeControl{}, fmt.Errorf("parse tc: increment: %w", err)
	}

	tc.Base, tc.Inc = base, inc
	return tc, nil
}

// parseSeconds parses a non-negative, finite number of seconds.
func parseSeconds(text string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}

	if secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("invalid duration %q", text)
	}

	return time.Duration(secs * float64(time.Second)), nil
}

// Mode returns the time control tier of the time control, judged by the
// expected duration of a forty move game.
func (tc TimeControl) Mode() config.Mode {
	expected := tc.Base + 40*tc.Inc
	switch {
	case expected < 3*time.Minute:
		return config.Bullet
	case expected < 10*time.Minute:
		return config.Blitz
	default:
		return config.Rapid
	}
}

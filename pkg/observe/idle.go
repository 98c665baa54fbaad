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

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"laptudirm.com/x/pantomime/pkg/config"
)

// Idler performs harmless actions while the opponent is thinking.
type Idler interface {
	Idle(ctx context.Context)
}

// Performer carries out a named idle action on the surface, like
// "piece_hover" or "board_scan".
type Performer interface {
	Perform(ctx context.Context, action string) error
}

// RandomIdler performs one of the configured actions with the configured
// probability every time it is asked to idle.
type RandomIdler struct {
	config    config.Idle
	performer Performer

	rng *rand.Rand
	log *logrus.Entry
}

func NewIdler(cfg config.Idle, performer Performer, rng *rand.Rand, log *logrus.Entry) *RandomIdler {
	return &RandomIdler{
		config:    cfg,
		performer: performer,
		rng:       rng,
		log:       log,
	}
}

func (idler *RandomIdler) Idle(ctx context.Context) {
	if !idler.config.Enabled || len(idler.config.Actions) == 0 {
		return
	}

	if idler.rng.Float64() >= idler.config.Probability {
		return
	}

	action := idler.config.Actions[idler.rng.Intn(len(idler.config.Actions))]
	if err := idler.performer.Perform(ctx, action); err != nil {
		// idling is cosmetic, failures never affect the game
		idler.log.WithError(err).WithField("action", action).Debug("idle action failed")
		return
	}

	idler.log.WithField("action", action).Trace("idled")
}

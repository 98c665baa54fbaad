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

package cmd

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
	"golang.org/x/term"

	"laptudirm.com/x/pantomime/pkg/book"
	"laptudirm.com/x/pantomime/pkg/common"
	"laptudirm.com/x/pantomime/pkg/config"
)

const SPIN = 14

// loadConfig loads the configuration file given on the command line, or
// the default one if it exists.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if !common.Exists(common.ConfigFile) {
			logrus.Debug("no configuration file, using defaults")
			return config.Default(), nil
		}

		path = common.ConfigFile
	}

	logrus.Debugf("loading configuration from %s", path)
	return config.Load(path)
}

// loadBooks loads the opening books from the configured directory.
func loadBooks(cfg config.Config) ([]*book.Book, error) {
	dir := cfg.Book.Directory
	if dir == "" {
		dir = common.BookDirectory
	}

	books, err := book.LoadDirectory(dir)
	if err != nil {
		return nil, err
	}

	logrus.Debugf("loaded %d opening books from %s", len(books), dir)
	return books, nil
}

// newRand creates the random source for the given seed, or for the clock
// if the seed is zero.
func newRand(seed uint64) (*rand.Rand, uint64) {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return rand.New(rand.NewSource(seed)), seed
}

// working shows a spinner with the given message while the returned
// function hasn't been called. Nothing is shown if stdout isn't a terminal.
func working(message string) func() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		logrus.Info(message)
		return func() {}
	}

	s := spinner.New(spinner.CharSets[SPIN], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}

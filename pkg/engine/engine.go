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

package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config describes how to start and configure a UCI engine process.
type Config struct {
	Name string   `yaml:"name"`
	Cmd  string   `yaml:"cmd"`
	Dir  string   `yaml:"dir,omitempty"`
	Arg  string   `yaml:"arg,omitempty"`
	Env  []string `yaml:"env,omitempty"`

	InitStr string `yaml:"init-string,omitempty"`

	Options map[string]string `yaml:"options,omitempty"`

	// Timeout bounds a single analysis, on top of its own depth and node
	// limits.
	Timeout time.Duration `yaml:"timeout"`
}

func StartEngine(config Config) (*Engine, error) {
	var engine Engine
	process := exec.Command(config.Cmd, strings.Fields(config.Arg)...)

	engine.config = config
	if engine.config.Name == "" {
		engine.config.Name = config.Cmd
	}

	process.Dir = config.Dir
	process.Env = append(os.Environ(), config.Env...)

	stdin, err := process.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := process.StdoutPipe()
	if err != nil {
		return nil, err
	}

	engine.writer = bufio.NewWriter(stdin)
	engine.reader = bufio.NewReader(stdout)
	engine.lines = make(chan string)

	engine.Cmd = process

	if err := engine.Cmd.Start(); err != nil {
		return nil, err
	}

	go func() {
		for {
			line, err := engine.reader.ReadString('\n')
			if err != nil {
				engine.err = err
				close(engine.lines)
				return
			}

			line = strings.Trim(line, " \n\t\r")

			logrus.Tracef("engine: (%s)> %s", engine.config.Name, line)
			engine.lines <- line
		}
	}()

	if engine.config.InitStr != "" {
		if err := engine.Write(engine.config.InitStr); err != nil {
			return nil, err
		}
	}

	if err := engine.Initialize(); err != nil {
		return nil, err
	}

	if err := engine.NewGame(); err != nil {
		return nil, err
	}

	return &engine, nil
}

type Engine struct {
	config Config

	*exec.Cmd

	writer *bufio.Writer
	reader *bufio.Reader

	lines chan string

	// multiPV is the last MultiPV value sent to the engine.
	multiPV int

	err error
}

// Name returns the configured name of the engine.
func (engine *Engine) Name() string {
	return engine.config.Name
}

// NewGame prepares the engine for a new game of chess.
func (engine *Engine) NewGame() error {
	if err := engine.Write("ucinewgame"); err != nil {
		return err
	}

	return engine.Synchronize()
}

// Initialize initializes the engine on startup and sends it the
// configured options.
func (engine *Engine) Initialize() error {
	if err := engine.Write("uci"); err != nil {
		return err
	}

	if _, err := engine.Await("uciok", 5*time.Second); err != nil {
		return err
	}

	// options are sent in a fixed order so that logs are reproducible
	names := make([]string, 0, len(engine.config.Options))
	for name := range engine.config.Options {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := engine.Write("setoption name %s value %s", name, engine.config.Options[name]); err != nil {
			return err
		}
	}

	return nil
}

// Synchronize waits for the engine to complete some time consuming task
// and synchronizes the interface with it.
func (engine *Engine) Synchronize() error {
	if err := engine.Write("isready"); err != nil {
		return err
	}

	_, err := engine.Await("readyok", 5*time.Second)
	return err
}

// Kill kills the engine.
func (engine *Engine) Kill() error {
	if err := engine.Write("quit"); err != nil {
		return err
	}

	return engine.Process.Kill()
}

var ErrReadTimeout = errors.New("engine: read i/o timeout")

// Await is a utility function which waits for a particular string from
// the engine with a fixed timeout.
func (engine *Engine) Await(pattern string, timeout time.Duration) (string, error) {
	regex := regexp.MustCompile(pattern)
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			// timer ran out: wait timeout

			if engine.err != nil {
				return "", engine.err
			}

			return "", ErrReadTimeout

		case line, ok := <-engine.lines:
			if !ok {
				return "", engine.err
			}

			if regex.MatchString(line) {
				// line is the expected line
				return line, nil
			}
		}
	}
}

func (engine *Engine) Write(format string, a ...any) error {
	logrus.Tracef("engine: ("+engine.config.Name+")< "+format, a...)

	if _, err := fmt.Fprintf(engine.writer, format+"\n", a...); err != nil {
		return err
	}

	return engine.writer.Flush()
}

// Analyse searches the given position and returns the principal variations
// reported by the engine, ordered by their rank. It blocks until the engine
// reports its best move, the configured timeout runs out, or the context
// is cancelled.
func (engine *Engine) Analyse(ctx context.Context, query Query) ([]Line, error) {
	if query.Lines < 1 {
		query.Lines = 1
	}

	if query.Lines != engine.multiPV {
		if err := engine.Write("setoption name MultiPV value %d", query.Lines); err != nil {
			return nil, err
		}

		engine.multiPV = query.Lines
	}

	if err := engine.Write("position fen %s", query.FEN); err != nil {
		return nil, err
	}

	if err := engine.Synchronize(); err != nil {
		return nil, err
	}

	if err := engine.Write(query.command()); err != nil {
		return nil, err
	}

	var deadline <-chan time.Time
	if engine.config.Timeout > 0 {
		timer := time.NewTimer(engine.config.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	lines := make(map[int]Line)
	for {
		select {
		case <-ctx.Done():
			engine.stop()
			return nil, ctx.Err()

		case <-deadline:
			engine.stop()
			return nil, ErrReadTimeout

		case line, ok := <-engine.lines:
			if !ok {
				return nil, engine.err
			}

			if strings.HasPrefix(line, "bestmove") {
				return collect(lines, query.Lines), nil
			}

			if info, ok := ParseInfo(line); ok {
				lines[info.Rank] = info
			}
		}
	}
}

// stop interrupts a running search and discards its best move so that it
// can't be mistaken for the result of the next one.
func (engine *Engine) stop() {
	if err := engine.Write("stop"); err != nil {
		return
	}

	if _, err := engine.Await("bestmove", time.Second); err != nil {
		logrus.Debugf("engine: (%s) did not acknowledge stop: %v", engine.config.Name, err)
	}
}

func collect(lines map[int]Line, n int) []Line {
	ranked := make([]Line, 0, n)
	for rank := 1; rank <= n; rank++ {
		if line, found := lines[rank]; found {
			ranked = append(ranked, line)
		}
	}

	return ranked
}

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

// Package book implements opening books: tables mapping early positions
// to weighted candidate moves.
package book

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultBook []byte

// Candidate is a move recommended by a book, in coordinate notation.
type Candidate struct {
	Move   string `yaml:"move"`
	Weight int    `yaml:"weight"`
}

// Book maps position keys, the first four fields of a position's FEN, to
// the candidate moves for that position.
type Book struct {
	Name      string                 `yaml:"name"`
	Positions map[string][]Candidate `yaml:"positions"`
}

// Parse parses a YAML book.
func Parse(data []byte) (*Book, error) {
	var book Book
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, err
	}

	for key, candidates := range book.Positions {
		if len(strings.Fields(key)) != 4 {
			return nil, fmt.Errorf("book: %s: malformed position key %q", book.Name, key)
		}

		for _, candidate := range candidates {
			if candidate.Weight < 0 {
				return nil, fmt.Errorf("book: %s: negative weight for %s", book.Name, candidate.Move)
			}
		}
	}

	return &book, nil
}

// Default returns the built-in book.
func Default() *Book {
	book, err := Parse(defaultBook)
	if err != nil {
		panic(err)
	}

	return book
}

// NewBook reads the book stored in the given file. Books without a name
// are named after their file.
func NewBook(name string) (*Book, error) {
	file, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	book, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if book.Name == "" {
		book.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}

	return book, nil
}

// LoadDirectory reads every *.yaml or *.yml book in the given directory,
// in lexical order of their file names.
func LoadDirectory(dir string) ([]*Book, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var books []*Book
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}

		book, err := NewBook(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		books = append(books, book)
	}

	return books, nil
}

// Select picks one of the given books at random, falling back to the
// built-in book when there are none.
func Select(books []*Book, rng *rand.Rand) *Book {
	if len(books) == 0 {
		return Default()
	}

	return books[rng.Intn(len(books))]
}

// Lookup returns the candidates for the given position key.
func (book *Book) Lookup(key string) []Candidate {
	return book.Positions[key]
}

// Keys returns every position key in the book, sorted.
func (book *Book) Keys() []string {
	keys := make([]string, 0, len(book.Positions))
	for key := range book.Positions {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}

// Pick chooses one of the candidates for the given position key, with
// probability proportional to its weight. Candidates rejected by the legal
// function are never picked. Zero weights count as one.
func (book *Book) Pick(key string, legal func(string) bool, rng *rand.Rand) (string, bool) {
	var (
		moves   []string
		weights []int
		total   int
	)

	for _, candidate := range book.Lookup(key) {
		if !legal(candidate.Move) {
			continue
		}

		weight := max(candidate.Weight, 1)
		moves = append(moves, candidate.Move)
		weights = append(weights, weight)
		total += weight
	}

	if total == 0 {
		return "", false
	}

	n := rng.Intn(total)
	for i, weight := range weights {
		if n < weight {
			return moves[i], true
		}

		n -= weight
	}

	return moves[len(moves)-1], true
}

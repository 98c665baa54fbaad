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
	"fmt"
	"sort"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/pantomime/pkg/book"
	"laptudirm.com/x/pantomime/pkg/position"
)

func Book() *cobra.Command {
	return &cobra.Command{
		Use:   "book [moves...]",
		Short: "Look up positions in the opening books",
		Long: heredoc.Doc(`book lists the candidate moves of every available opening
			book for the position reached after the given moves, which
			are given in standard algebraic notation.

			Without any moves, the starting position is looked up.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			books, err := loadBooks(cfg)
			if err != nil {
				return err
			}

			books = append(books, book.Default())

			pos, err := position.FromMoves(args)
			if err != nil {
				return err
			}

			if opening := pos.Opening(); opening != "" {
				fmt.Printf("\x1b[33m%s\x1b[0m\n", opening)
			}

			fmt.Printf("%s\n\n", pos.FEN())

			for _, b := range books {
				candidates := b.Lookup(pos.Key())
				if len(candidates) == 0 {
					fmt.Printf("\x1b[34m%s\x1b[0m: \x1b[31mnot in book\x1b[0m\n", b.Name)
					continue
				}

				total := 0
				for _, candidate := range candidates {
					total += max(candidate.Weight, 1)
				}

				sorted := append([]book.Candidate(nil), candidates...)
				sort.SliceStable(sorted, func(i, j int) bool {
					return sorted[i].Weight > sorted[j].Weight
				})

				fmt.Printf("\x1b[34m%s\x1b[0m:\n", b.Name)
				for _, candidate := range sorted {
					san := candidate.Move
					if move, found := pos.LookupUCI(candidate.Move); found {
						san = move.SAN
					}

					share := 100 * float64(max(candidate.Weight, 1)) / float64(total)
					fmt.Printf("- %-8s %5.1f%%\n", san, share)
				}
			}

			return nil
		},
	}
}

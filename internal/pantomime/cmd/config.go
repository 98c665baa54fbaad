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
	"errors"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/pantomime/pkg/common"
	"laptudirm.com/x/pantomime/pkg/config"
)

func Config() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the configuration in use",
		Args:  cobra.ExactArgs(0),
		Long: heredoc.Doc(`config validates and prints the configuration which will
			be used by pantomime, with every option filled in.

			The configuration is read from the file given by --config, or
			from the default configuration file if it exists. Options
			missing from the file keep their default values.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flag("init").Changed {
				data, err := config.Default().Marshal()
				if err != nil {
					return err
				}

				if !common.TryCreate(common.ConfigFile, data) {
					return errors.New("config: " + common.ConfigFile + " already exists")
				}

				fmt.Printf("\x1b[32mCreated\x1b[0m %s\n", common.ConfigFile)
				return nil
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			data, err := cfg.Marshal()
			if err != nil {
				return err
			}

			fmt.Print(string(data))
			return nil
		},
	}

	cmd.Flags().Bool("init", false, "Write the default configuration file")
	return cmd
}

// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pse-vault/psedata/pipeline"
)

// companiesCmd represents the companies command
var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Fetch or list the company roster",
	Long: `The companies sub-command prepares the company roster artifact by scraping
the paginated EDGE directory. A previously saved roster is reused unless
--refresh is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		cfg := pipelineConfig()

		if refresh, err := cmd.Flags().GetBool("refresh"); err == nil {
			cfg.Refresh = refresh
		}

		roster, err := pipeline.EnsureRoster(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not prepare company roster")
		}

		if list, _ := cmd.Flags().GetBool("list"); list {
			for _, company := range roster {
				fmt.Printf("%s\t%s\n", company.Symbol, company.Name)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)
	companiesCmd.Flags().Bool("refresh", false, "re-scrape the directory even when a roster exists")
	companiesCmd.Flags().Bool("list", false, "print the roster to stdout")
}

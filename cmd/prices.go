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
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pse-vault/psedata/pipeline"
)

// pricesCmd represents the prices command
var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Download historical prices for the roster",
	Long: `The prices sub-command downloads each selected company's daily price series
and saves it as a per-company CSV. Use --symbols to restrict the download to a
subset of the roster and --from/--to to narrow the date range. Companies whose
artifact already exists are skipped unless --refresh is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		cfg := pipelineConfig()
		applyDownloadFlags(cmd, cfg)

		summary, err := pipeline.Run(ctx, cfg)
		if summary != nil {
			logSummary(summary)
		}

		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Warn().Msg("run interrupted; finished artifacts were kept and the run is resumable")
				os.Exit(1)
			}

			log.Fatal().Err(err).Msg("price download failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(pricesCmd)
	addDownloadFlags(pricesCmd)
}

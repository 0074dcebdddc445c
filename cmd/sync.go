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
	"time"

	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pse-vault/psedata/data"
	"github.com/pse-vault/psedata/pipeline"
	"github.com/pse-vault/psedata/store"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the roster, download price history, and export the combined dataset",
	Long: `The sync sub-command runs the full pipeline: it prepares the company roster
(reusing a saved one unless --refresh is given), downloads the price history of
every selected company, and consolidates the per-company artifacts into the
combined CSV. Companies whose artifact already exists are skipped, so re-running
sync only attempts previously failed or missing companies.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		cfg := pipelineConfig()
		applyDownloadFlags(cmd, cfg)

		startTime := time.Now()

		summary, err := pipeline.Run(ctx, cfg)
		if summary != nil {
			logSummary(summary)
		}

		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Warn().Msg("run interrupted; finished artifacts were kept and the run is resumable")
				os.Exit(1)
			}

			log.Fatal().Err(err).Msg("pipeline run failed")
		}

		rows, err := pipeline.Export(cfg)
		if err != nil {
			if errors.Is(err, store.ErrNoArtifacts) {
				log.Warn().Msg("nothing to combine, no per-company artifacts on disk")
				return
			}

			log.Fatal().Err(err).Msg("could not export combined dataset")
		}

		log.Info().Str("RunTime", durafmt.Parse(time.Since(startTime)).String()).
			Int("CombinedRows", rows).Msg("sync complete")
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	addDownloadFlags(syncCmd)
}

func logSummary(summary *data.RunSummary) {
	log.Info().Int("Total", summary.Total).Int("Succeeded", summary.Succeeded).
		Int("Failed", summary.Failed).Int("Skipped", summary.Skipped).
		Msg("run summary")

	for _, failure := range summary.Failures {
		log.Warn().Str("Symbol", failure.Symbol).Str("Company", failure.Name).
			Int("Attempts", failure.Attempts).Str("Reason", failure.Reason).
			Msg("company failed")
	}
}

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
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pse-vault/psedata/pipeline"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Consolidate per-company artifacts into the combined dataset",
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		if !strings.EqualFold(format, "csv") {
			log.Fatal().Str("Format", format).Msg("only CSV export is supported")
		}

		cfg := pipelineConfig()

		rows, err := pipeline.Export(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not export combined dataset")
		}

		log.Info().Int("Rows", rows).Str("Output", cfg.CombinedCSV).Msg("export complete")
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("format", "csv", "export format (csv)")
}

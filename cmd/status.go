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

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pse-vault/psedata/pipeline"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the local dataset",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := pipelineConfig()
		status := pipeline.CollectStatus(cfg)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			payload, err := json.MarshalIndent(status, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("could not marshal status")
			}

			fmt.Println(string(payload))

			return
		}

		fmt.Print(status.Render())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().Bool("json", false, "print status as JSON")
}

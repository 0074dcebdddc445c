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
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// fileConfig mirrors the config file layout understood by viper.
type fileConfig struct {
	Paths struct {
		DataDir string `toml:"data_dir"`
		CacheDB string `toml:"cache_db"`
	} `toml:"paths"`
	Network struct {
		RateLimit   string `toml:"rate_limit"`
		MaxAttempts int    `toml:"max_attempts"`
	} `toml:"network"`
	Download struct {
		StartDate    string   `toml:"start_date"`
		EndDate      string   `toml:"end_date"`
		Symbols      []string `toml:"symbols"`
		MaxCompanies int      `toml:"max_companies"`
		MaxPages     int      `toml:"max_pages"`
	} `toml:"download"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("path")
		if path == "" {
			home, err := os.UserHomeDir()
			cobra.CheckErr(err)
			path = filepath.Join(home, ".psedata.toml")
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			log.Fatal().Str("Path", path).Msg("config already exists, use --force to overwrite")
		}

		cfg := fileConfig{}
		cfg.Paths.DataDir = "data"
		cfg.Paths.CacheDB = "data/cache.db"
		cfg.Network.RateLimit = "600ms"
		cfg.Network.MaxAttempts = 4
		cfg.Download.Symbols = []string{}

		payload, err := toml.Marshal(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal default config")
		}

		if err := os.WriteFile(path, payload, 0o644); err != nil {
			log.Fatal().Err(err).Str("Path", path).Msg("could not write config")
		}

		fmt.Printf("Created config at %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("path", "", "config file path (default $HOME/.psedata.toml)")
	initCmd.Flags().Bool("force", false, "overwrite an existing config")
}

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
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pse-vault/psedata/pipeline"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "psedata",
	Short: "psedata collects historical stock prices from the PSE EDGE portal",
	Long: `psedata is a command line utility that retrieves the roster of companies
listed on the Philippine Stock Exchange and downloads each company's full
historical daily price series from the EDGE portal.

The portal is an HTML/JSON web interface with no published API, so psedata
treats it gently: requests are rate limited, transient failures are retried
with backoff, and responses can be cached locally. Downloads are resumable --
re-running the tool only attempts companies that previously failed or are
missing, and per-company artifacts are finally consolidated into one combined
CSV dataset.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch {
		case viper.GetBool("quiet"):
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case viper.GetBool("verbose"):
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		default:
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.psedata.toml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "only log warnings and errors")
	rootCmd.PersistentFlags().String("data-dir", "data", "root directory for generated artifacts")
	rootCmd.PersistentFlags().String("companies", "", "company roster CSV (default <data-dir>/companies.csv)")
	rootCmd.PersistentFlags().String("history-dir", "", "per-company history directory (default <data-dir>/history)")
	rootCmd.PersistentFlags().String("combined", "", "combined dataset CSV (default <data-dir>/combined.csv)")
	rootCmd.PersistentFlags().String("cache-db", "", "response cache database (default <data-dir>/cache.db)")
	rootCmd.PersistentFlags().Bool("no-cache", false, "disable the response cache")
	rootCmd.PersistentFlags().Duration("rate-limit", 600*time.Millisecond, "minimum delay between requests (negative disables)")
	rootCmd.PersistentFlags().Int("max-pages", 0, "limit directory pages fetched (0 = built-in safety bound)")

	bindings := map[string]string{
		"verbose":             "verbose",
		"quiet":               "quiet",
		"paths.data_dir":      "data-dir",
		"paths.companies_csv": "companies",
		"paths.history_dir":   "history-dir",
		"paths.combined_csv":  "combined",
		"paths.cache_db":      "cache-db",
		"network.no_cache":    "no-cache",
		"network.rate_limit":  "rate-limit",
		"download.max_pages":  "max-pages",
	}

	for key, flag := range bindings {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			log.Panic().Err(err).Str("Flag", flag).Msg("BindPFlag failed")
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".psedata" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("toml")
		viper.SetConfigName(".psedata")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// pipelineConfig assembles a run configuration from viper, deriving any
// artifact path that was not set explicitly from the data directory.
func pipelineConfig() *pipeline.Config {
	dataDir := viper.GetString("paths.data_dir")

	pick := func(key, fallback string) string {
		if value := viper.GetString(key); value != "" {
			return value
		}

		return fallback
	}

	return &pipeline.Config{
		CompaniesCSV: pick("paths.companies_csv", filepath.Join(dataDir, "companies.csv")),
		HistoryDir:   pick("paths.history_dir", filepath.Join(dataDir, "history")),
		CombinedCSV:  pick("paths.combined_csv", filepath.Join(dataDir, "combined.csv")),
		CacheDB:      pick("paths.cache_db", filepath.Join(dataDir, "cache.db")),
		NoCache:      viper.GetBool("network.no_cache"),
		RateLimit:    viper.GetDuration("network.rate_limit"),
		MaxAttempts:  viper.GetInt("network.max_attempts"),
		Timeout:      viper.GetDuration("network.timeout"),
		StartDate:    viper.GetString("download.start_date"),
		EndDate:      viper.GetString("download.end_date"),
		Symbols:      splitSymbols(strings.Join(viper.GetStringSlice("download.symbols"), ",")),
		MaxCompanies: viper.GetInt("download.max_companies"),
		MaxPages:     viper.GetInt("download.max_pages"),
	}
}

// addDownloadFlags registers the flags shared by the commands that download
// price history.
func addDownloadFlags(cmd *cobra.Command) {
	cmd.Flags().String("symbols", "", "comma-separated stock symbols to download")
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD or MM-DD-YYYY)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD or MM-DD-YYYY)")
	cmd.Flags().Int("max-companies", 0, "limit the number of companies downloaded")
	cmd.Flags().Bool("refresh", false, "re-fetch even when artifacts already exist")
}

// applyDownloadFlags overlays per-command download flags on the config.
func applyDownloadFlags(cmd *cobra.Command, cfg *pipeline.Config) {
	flags := cmd.Flags()

	if flags.Changed("symbols") {
		symbols, _ := flags.GetString("symbols")
		cfg.Symbols = splitSymbols(symbols)
	}

	if flags.Changed("from") {
		cfg.StartDate, _ = flags.GetString("from")
	}

	if flags.Changed("to") {
		cfg.EndDate, _ = flags.GetString("to")
	}

	if flags.Changed("max-companies") {
		cfg.MaxCompanies, _ = flags.GetInt("max-companies")
	}

	if refresh, err := flags.GetBool("refresh"); err == nil {
		cfg.Refresh = refresh
	}
}

func splitSymbols(value string) []string {
	var symbols []string

	for _, symbol := range strings.Split(value, ",") {
		symbol = strings.TrimSpace(symbol)
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	return symbols
}

// signalContext returns a context cancelled by SIGINT/SIGTERM so the
// pipeline finishes the in-flight company and halts before the next one.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

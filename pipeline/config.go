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
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pse-vault/psedata/data"
	"github.com/pse-vault/psedata/edge"
)

// ConfigError marks invalid input configuration. Configuration failures
// fail fast, before any network activity.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return "config: " + e.msg
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Config drives one pipeline run.
type Config struct {
	// Artifact paths.
	CompaniesCSV string
	HistoryDir   string
	CombinedCSV  string

	// Response cache. Empty CacheDB or NoCache disables caching; a cache
	// that fails to open only costs re-fetches, never correctness. A
	// forced refresh reads past the cache but still writes through.
	CacheDB string
	NoCache bool

	// Network tuning. A negative RateLimit disables rate limiting; zero
	// keeps the default delay.
	BaseURL     string
	RateLimit   time.Duration
	MaxAttempts int
	RetryWait   time.Duration
	Timeout     time.Duration

	// Download scope. Dates accept YYYY-MM-DD or MM-DD-YYYY.
	StartDate    string
	EndDate      string
	Symbols      []string
	MaxCompanies int
	MaxPages     int
	Refresh      bool

	start data.Date
	end   data.Date
}

// Validate normalizes the config and fails fast on malformed input.
func (cfg *Config) Validate() error {
	if cfg.CompaniesCSV == "" || cfg.HistoryDir == "" {
		return configErrorf("companies path and history directory are required")
	}

	if cfg.MaxCompanies < 0 {
		return configErrorf("max companies must not be negative")
	}

	if cfg.StartDate != "" {
		start, err := data.ParseDate(cfg.StartDate)
		if err != nil {
			return configErrorf("start date: %v", err)
		}

		cfg.start = start
	}

	if cfg.EndDate != "" {
		end, err := data.ParseDate(cfg.EndDate)
		if err != nil {
			return configErrorf("end date: %v", err)
		}

		cfg.end = end
	}

	if !cfg.start.IsZero() && !cfg.end.IsZero() && cfg.start.After(cfg.end.Time) {
		return configErrorf("start date %s is after end date %s", cfg.start, cfg.end)
	}

	symbols := make([]string, 0, len(cfg.Symbols))
	for _, symbol := range cfg.Symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	cfg.Symbols = symbols

	return nil
}

// newClient builds the transport client for this run, attaching the
// response cache when enabled.
func (cfg *Config) newClient() *edge.Client {
	opts := []edge.ClientOption{}

	if cfg.BaseURL != "" {
		opts = append(opts, edge.WithBaseURL(cfg.BaseURL))
	}

	if cfg.RateLimit != 0 {
		opts = append(opts, edge.WithRateLimit(cfg.RateLimit))
	}

	if cfg.MaxAttempts > 0 {
		opts = append(opts, edge.WithMaxAttempts(cfg.MaxAttempts))
	}

	if cfg.RetryWait > 0 {
		opts = append(opts, edge.WithRetryWait(cfg.RetryWait))
	}

	if cfg.Timeout > 0 {
		opts = append(opts, edge.WithTimeout(cfg.Timeout))
	}

	if cfg.CacheDB != "" && !cfg.NoCache {
		cache, err := edge.OpenCache(cfg.CacheDB)
		if err != nil {
			log.Warn().Err(err).Str("CacheDB", cfg.CacheDB).
				Msg("could not open response cache, continuing without it")
		} else {
			opts = append(opts, edge.WithCache(cache))
		}
	}

	// a forced refresh must reach the source, not replay pinned responses
	if cfg.Refresh {
		opts = append(opts, edge.WithCacheBypass())
	}

	return edge.NewClient(opts...)
}

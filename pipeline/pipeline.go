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
	"context"
	"errors"
	"path/filepath"
	"slices"
	"time"

	"github.com/alphadose/haxmap"
	"github.com/rs/zerolog/log"

	"github.com/pse-vault/psedata/data"
	"github.com/pse-vault/psedata/edge"
	"github.com/pse-vault/psedata/store"
)

// target pairs a roster entry with its artifact filename. Filenames are
// assigned over the full roster (before filtering) so they stay stable
// across runs regardless of the symbol filter.
type target struct {
	company  *data.Company
	artifact string
}

// Run executes the fetch pipeline: obtain the roster, select companies,
// download and persist each series, and summarize outcomes. One company's
// failure never aborts the run; only configuration, roster, and
// cancellation failures do.
func Run(ctx context.Context, cfg *Config) (*data.RunSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cfg.newClient()
	defer client.Close()

	roster, err := ensureRoster(ctx, client, cfg)
	if err != nil {
		return nil, err
	}

	targets, err := selectTargets(roster, cfg)
	if err != nil {
		return nil, err
	}

	states := haxmap.New[string, *data.FetchState]()
	summary := &data.RunSummary{
		StartTime: time.Now(),
		Total:     len(targets),
	}

	for i, t := range targets {
		if ctx.Err() != nil {
			summary.EndTime = time.Now()
			return summary, ctx.Err()
		}

		key := t.company.Key()

		// at most one in-flight fetch per company; a duplicate pair in a
		// hand-edited roster is dropped and leaves the summary balanced
		if _, loaded := states.GetOrSet(key, &data.FetchState{Status: data.Pending}); loaded {
			summary.Total--

			log.Warn().Str("Symbol", t.company.Symbol).Str("Key", key).
				Msg("duplicate identifier pair in roster, skipping")

			continue
		}

		path := filepath.Join(cfg.HistoryDir, t.artifact)

		if !cfg.Refresh && store.HistoryExists(path) {
			states.Set(key, &data.FetchState{Status: data.Skipped, Reason: "artifact already exists"})
			summary.Skipped++

			log.Debug().Str("Symbol", t.company.Symbol).Str("Artifact", t.artifact).
				Msg("artifact already exists, skipping")

			continue
		}

		states.Set(key, &data.FetchState{Status: data.InFlight})

		log.Info().Int("Index", i+1).Int("Total", len(targets)).
			Str("Symbol", t.company.Symbol).Str("Company", t.company.Name).
			Msg("fetching price history")

		points, err := edge.FetchSeries(ctx, client, t.company, cfg.start, cfg.end)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				summary.EndTime = time.Now()
				return summary, ctx.Err()
			}

			recordFailure(states, summary, t.company, err)

			continue
		}

		if len(points) == 0 {
			states.Set(key, &data.FetchState{Status: data.Skipped, Reason: "no trading history in range"})
			summary.Skipped++

			log.Info().Str("Symbol", t.company.Symbol).Msg("no trading history in range")

			continue
		}

		if err := store.SaveHistory(path, points); err != nil {
			recordFailure(states, summary, t.company, err)
			continue
		}

		states.Set(key, &data.FetchState{Status: data.Succeeded, Rows: len(points)})
		summary.Succeeded++

		log.Info().Str("Symbol", t.company.Symbol).Int("Rows", len(points)).
			Str("Artifact", t.artifact).Msg("saved price history")
	}

	summary.EndTime = time.Now()

	return summary, nil
}

// EnsureRoster returns the company roster, fetching and saving it only when
// no saved artifact exists or a refresh is requested.
func EnsureRoster(ctx context.Context, cfg *Config) ([]*data.Company, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cfg.newClient()
	defer client.Close()

	return ensureRoster(ctx, client, cfg)
}

// Export consolidates all per-company artifacts into the combined dataset
// and returns the number of rows written.
func Export(cfg *Config) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	roster, err := store.LoadCompanies(cfg.CompaniesCSV)
	if err != nil {
		return 0, err
	}

	return store.Combine(cfg.HistoryDir, cfg.CombinedCSV, roster)
}

func ensureRoster(ctx context.Context, client *edge.Client, cfg *Config) ([]*data.Company, error) {
	if !cfg.Refresh {
		if roster, err := store.LoadCompanies(cfg.CompaniesCSV); err == nil && len(roster) > 0 {
			log.Info().Int("Companies", len(roster)).Str("Path", cfg.CompaniesCSV).
				Msg("using saved company roster")

			return roster, nil
		}
	}

	log.Info().Msg("fetching company roster from the directory")

	roster, err := edge.FetchDirectory(ctx, client, cfg.MaxPages)
	if err != nil {
		return nil, err
	}

	// a roster that cannot be persisted aborts the run: resumability
	// depends on this artifact
	if err := store.SaveCompanies(cfg.CompaniesCSV, roster); err != nil {
		return nil, err
	}

	log.Info().Int("Companies", len(roster)).Str("Path", cfg.CompaniesCSV).
		Msg("saved company roster")

	return roster, nil
}

// selectTargets applies the symbol allow-list and the max-company cap, in
// that order, preserving roster order.
func selectTargets(roster []*data.Company, cfg *Config) ([]target, error) {
	names := store.ArtifactNames(roster)

	targets := make([]target, 0, len(roster))

	for i, company := range roster {
		if len(cfg.Symbols) > 0 && !slices.Contains(cfg.Symbols, company.Symbol) {
			continue
		}

		targets = append(targets, target{company: company, artifact: names[i]})
	}

	if len(cfg.Symbols) > 0 && len(targets) == 0 {
		return nil, configErrorf("symbol filter %v matched no companies", cfg.Symbols)
	}

	if cfg.MaxCompanies > 0 && len(targets) > cfg.MaxCompanies {
		targets = targets[:cfg.MaxCompanies]
	}

	return targets, nil
}

func recordFailure(states *haxmap.Map[string, *data.FetchState], summary *data.RunSummary, company *data.Company, err error) {
	attempts := 1

	var transportErr *edge.TransportError
	if errors.As(err, &transportErr) {
		attempts = transportErr.Attempts
	}

	states.Set(company.Key(), &data.FetchState{
		Status:   data.Failed,
		Reason:   err.Error(),
		Attempts: attempts,
	})

	summary.Failed++
	summary.Failures = append(summary.Failures, data.Failure{
		Key:      company.Key(),
		Symbol:   company.Symbol,
		Name:     company.Name,
		Reason:   err.Error(),
		Attempts: attempts,
	})

	log.Warn().Err(err).Str("Symbol", company.Symbol).Str("Company", company.Name).
		Msg("price history fetch failed, continuing")
}

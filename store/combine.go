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
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"

	"github.com/pse-vault/psedata/data"
)

// ErrNoArtifacts is returned when consolidation finds nothing to combine.
var ErrNoArtifacts = errors.New("no per-company artifacts found")

// CombinedRow is one row of the consolidated dataset: a price point tagged
// with its owning company's symbol and name.
type CombinedRow struct {
	Symbol  string    `csv:"symbol"`
	Company string    `csv:"company"`
	Date    data.Date `csv:"date"`
	Open    float64   `csv:"open"`
	High    float64   `csv:"high"`
	Low     float64   `csv:"low"`
	Close   float64   `csv:"close"`
	Value   *float64  `csv:"value"`
}

// Combine reads every per-company artifact present under historyDir and
// concatenates them into one consolidated CSV at outPath. Rows are grouped
// by company in roster order; within a company the persisted order is kept
// untouched (the fetcher already sorted by date, and consolidation must not
// reorder data it does not own). Companies without an artifact contribute
// nothing; artifacts with zero rows keep the schema stable.
func Combine(historyDir, outPath string, roster []*data.Company) (int, error) {
	names := ArtifactNames(roster)

	rows := make([]*CombinedRow, 0)
	found := 0

	for i, company := range roster {
		path := filepath.Join(historyDir, names[i])
		if !HistoryExists(path) {
			continue
		}

		points, err := LoadHistory(path)
		if err != nil {
			return 0, err
		}

		found++

		for _, point := range points {
			rows = append(rows, &CombinedRow{
				Symbol:  company.Symbol,
				Company: company.Name,
				Date:    point.Date,
				Open:    point.Open,
				High:    point.High,
				Low:     point.Low,
				Close:   point.Close,
				Value:   point.Value,
			})
		}
	}

	if found == 0 {
		return 0, fmt.Errorf("%w in %s", ErrNoArtifacts, historyDir)
	}

	payload, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return 0, fmt.Errorf("marshal combined dataset: %w", err)
	}

	if err := writeAtomic(outPath, payload); err != nil {
		return 0, fmt.Errorf("write combined dataset: %w", err)
	}

	log.Info().Int("Companies", found).Int("Rows", len(rows)).Str("Output", outPath).
		Msg("combined per-company artifacts")

	return len(rows), nil
}

// LoadCombined reads the consolidated artifact (used by status reporting).
func LoadCombined(path string) ([]*CombinedRow, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read combined dataset: %w", err)
	}

	var rows []*CombinedRow
	if err := gocsv.UnmarshalBytes(payload, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal combined dataset: %w", err)
	}

	return rows, nil
}

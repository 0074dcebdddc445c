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
	"os"
	"path/filepath"
	"strings"

	"github.com/pse-vault/psedata/store"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// Status describes the local dataset artifacts.
type Status struct {
	Companies ArtifactStatus `json:"companies"`
	History   HistoryStatus  `json:"history"`
	Combined  CombinedStatus `json:"combined"`
}

type ArtifactStatus struct {
	Path    string `json:"path"`
	Exists  bool   `json:"exists"`
	Rows    int    `json:"rows"`
	Updated string `json:"updated,omitempty"`
}

type HistoryStatus struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
	Files  int    `json:"files"`
}

type CombinedStatus struct {
	ArtifactStatus
	FirstDate string `json:"firstDate,omitempty"`
	LastDate  string `json:"lastDate,omitempty"`
}

// CollectStatus inspects the local artifacts named by the config. It is
// best-effort: unreadable artifacts simply report zero rows.
func CollectStatus(cfg *Config) *Status {
	status := &Status{
		Companies: ArtifactStatus{Path: cfg.CompaniesCSV},
		History:   HistoryStatus{Path: cfg.HistoryDir},
		Combined:  CombinedStatus{ArtifactStatus: ArtifactStatus{Path: cfg.CombinedCSV}},
	}

	if info, err := os.Stat(cfg.CompaniesCSV); err == nil {
		status.Companies.Exists = true
		status.Companies.Updated = info.ModTime().Format(statusTimeFormat)

		if roster, err := store.LoadCompanies(cfg.CompaniesCSV); err == nil {
			status.Companies.Rows = len(roster)
		}
	}

	if info, err := os.Stat(cfg.HistoryDir); err == nil && info.IsDir() {
		status.History.Exists = true

		if matches, err := filepath.Glob(filepath.Join(cfg.HistoryDir, "*.csv")); err == nil {
			status.History.Files = len(matches)
		}
	}

	if info, err := os.Stat(cfg.CombinedCSV); err == nil {
		status.Combined.Exists = true
		status.Combined.Updated = info.ModTime().Format(statusTimeFormat)

		if rows, err := store.LoadCombined(cfg.CombinedCSV); err == nil {
			status.Combined.Rows = len(rows)

			for _, row := range rows {
				date := row.Date.String()
				if status.Combined.FirstDate == "" || date < status.Combined.FirstDate {
					status.Combined.FirstDate = date
				}

				if date > status.Combined.LastDate {
					status.Combined.LastDate = date
				}
			}
		}
	}

	return status
}

// Render formats the status as human-readable lines.
func (status *Status) Render() string {
	var b strings.Builder

	if status.Companies.Exists {
		fmt.Fprintf(&b, "Companies: %s (rows=%d, updated=%s)\n",
			status.Companies.Path, status.Companies.Rows, status.Companies.Updated)
	} else {
		fmt.Fprintf(&b, "Companies: missing (%s)\n", status.Companies.Path)
	}

	if status.History.Exists {
		fmt.Fprintf(&b, "History:   %s (files=%d)\n", status.History.Path, status.History.Files)
	} else {
		fmt.Fprintf(&b, "History:   missing (%s)\n", status.History.Path)
	}

	if status.Combined.Exists {
		dateRange := "unknown"
		if status.Combined.FirstDate != "" {
			dateRange = status.Combined.FirstDate + ".." + status.Combined.LastDate
		}

		fmt.Fprintf(&b, "Combined:  %s (rows=%d, updated=%s, range=%s)\n",
			status.Combined.Path, status.Combined.Rows, status.Combined.Updated, dateRange)
	} else {
		fmt.Fprintf(&b, "Combined:  missing (%s)\n", status.Combined.Path)
	}

	return b.String()
}

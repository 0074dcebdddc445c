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
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/pse-vault/psedata/data"
)

const maxNameLength = 140

var (
	hostileChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespace   = regexp.MustCompile(`\s+`)
	underscores  = regexp.MustCompile(`_+`)
)

// sanitizeName turns a company display name into a filesystem-safe filename
// component. Directory names arrive HTML-escaped and may contain characters
// hostile to at least one supported filesystem.
func sanitizeName(name string) string {
	cleaned := strings.TrimSpace(html.UnescapeString(name))
	cleaned = strings.ReplaceAll(cleaned, "&", "and")
	cleaned = hostileChars.ReplaceAllString(cleaned, "-")
	cleaned = whitespace.ReplaceAllString(cleaned, " ")
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = underscores.ReplaceAllString(cleaned, "_")
	cleaned = strings.Trim(cleaned, "._-")

	if cleaned == "" {
		return "unknown"
	}

	if len(cleaned) > maxNameLength {
		cleaned = cleaned[:maxNameLength]
	}

	return cleaned
}

// ArtifactNames returns the per-company history filename for every roster
// entry, in roster order. Names are deterministic for a given roster: when
// two share classes would collide on SYMBOL_Name, later entries get a
// numeric suffix so no two companies ever share an artifact.
func ArtifactNames(roster []*data.Company) []string {
	names := make([]string, 0, len(roster))
	used := make(map[string]int)

	for _, company := range roster {
		base := company.Symbol + "_" + sanitizeName(company.Name)
		if n := used[base]; n > 0 {
			names = append(names, fmt.Sprintf("%s_%d.csv", base, n+1))
		} else {
			names = append(names, base+".csv")
		}

		used[base]++
	}

	return names
}

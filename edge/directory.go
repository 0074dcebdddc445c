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
package edge

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/pse-vault/psedata/data"
)

const (
	directoryPath    = "/companyDirectory/search.ax"
	directoryReferer = DefaultBaseURL + "/companyDirectory/form.do"

	// DefaultMaxPages bounds directory pagination against server
	// misbehavior; the real directory is well under this.
	DefaultMaxPages = 200
)

// cmDetailRe extracts the (company_id, security_id) pair from the
// cmDetail('id','id') handler embedded in each listing row.
var cmDetailRe = regexp.MustCompile(`cmDetail\('(\d+)'\s*,\s*'(\d+)'\)`)

// FetchDirectory walks the paginated company directory starting at page 1
// and returns the roster in page-then-row order. Pagination stops at the
// first page with zero listing rows or at maxPages.
func FetchDirectory(ctx context.Context, client *Client, maxPages int) ([]*data.Company, error) {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	headers := map[string]string{"Referer": directoryReferer}

	var roster []*data.Company

	seen := make(map[string]bool)

	for page := 1; page <= maxPages; page++ {
		body, err := client.Get(ctx, fmt.Sprintf("%s?pageNo=%d", directoryPath, page), headers)
		if err != nil {
			return nil, fmt.Errorf("directory page %d: %w", page, err)
		}

		companies, err := parseDirectoryPage(body)
		if err != nil {
			return nil, fmt.Errorf("directory page %d: %w", page, err)
		}

		if len(companies) == 0 {
			log.Debug().Int("Page", page).Msg("empty directory page, roster complete")
			break
		}

		for _, company := range companies {
			if seen[company.Key()] {
				log.Warn().Str("Symbol", company.Symbol).Str("Key", company.Key()).
					Msg("duplicate identifier pair in directory, keeping first")
				continue
			}

			seen[company.Key()] = true
			roster = append(roster, company)
		}

		log.Info().Int("Page", page).Int("Companies", len(companies)).Msg("parsed directory page")
	}

	return roster, nil
}

// parseDirectoryPage extracts companies from one directory listing page.
// Rows without a usable identifier pair are skipped with a warning.
func parseDirectoryPage(body []byte) ([]*data.Company, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("directory page is not parseable HTML: %v", err)}
	}

	table := doc.Find("table.list")
	if table.Length() == 0 {
		return nil, &ParseError{Detail: "company listing table not found"}
	}

	var companies []*data.Company

	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		nameAnchor := cells.Eq(0).Find("a").First()
		symbolAnchor := cells.Eq(1).Find("a").First()
		if nameAnchor.Length() == 0 || symbolAnchor.Length() == 0 {
			log.Warn().Str("Row", strings.TrimSpace(row.Text())).
				Msg("listing row has no company anchors, skipping")
			return
		}

		onclick, _ := nameAnchor.Attr("onclick")

		match := cmDetailRe.FindStringSubmatch(onclick)
		if match == nil {
			log.Warn().Str("Company", strings.TrimSpace(nameAnchor.Text())).
				Msg("listing row has no identifier pair, skipping")
			return
		}

		companies = append(companies, &data.Company{
			CompanyID:  match[1],
			SecurityID: match[2],
			Name:       strings.TrimSpace(nameAnchor.Text()),
			Symbol:     strings.TrimSpace(symbolAnchor.Text()),
		})
	})

	return companies, nil
}

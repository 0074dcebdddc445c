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
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func directoryRow(companyID, securityID, name, symbol string) string {
	return fmt.Sprintf(
		`<tr><td><a onclick="cmDetail('%s','%s');return false;">%s</a></td><td><a href="#">%s</a></td></tr>`,
		companyID, securityID, name, symbol)
}

func directoryPage(rows ...string) string {
	page := `<html><body><table class="list"><thead><tr><th>Company Name</th><th>Stock Symbol</th></tr></thead><tbody>`
	for _, row := range rows {
		page += row
	}

	return page + `</tbody></table></body></html>`
}

func TestFetchDirectoryWalksAllPages(t *testing.T) {
	var requests atomic.Int32

	pages := map[string]string{
		"1": directoryPage(
			directoryRow("29", "146", "Ayala Corporation", "AC"),
			directoryRow("57", "212", "BDO Unibank, Inc.", "BDO"),
		),
		"2": directoryPage(
			directoryRow("86", "314", "Jollibee Foods Corporation", "JFC"),
		),
		"3": directoryPage(),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)

		assert.Equal(t, "/companyDirectory/search.ax", r.URL.Path)
		assert.Contains(t, r.Header.Get("Referer"), "/companyDirectory/form.do")

		page, ok := pages[r.URL.Query().Get("pageNo")]
		if !ok {
			t.Errorf("unexpected page request: %s", r.URL.RawQuery)
			page = directoryPage()
		}

		w.Write([]byte(page))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))

	roster, err := FetchDirectory(context.Background(), client, 0)
	require.NoError(t, err)
	require.Len(t, roster, 3)

	// page-then-row order
	assert.Equal(t, "AC", roster[0].Symbol)
	assert.Equal(t, "29", roster[0].CompanyID)
	assert.Equal(t, "146", roster[0].SecurityID)
	assert.Equal(t, "Ayala Corporation", roster[0].Name)
	assert.Equal(t, "BDO", roster[1].Symbol)
	assert.Equal(t, "JFC", roster[2].Symbol)

	// pagination stops at the first empty page
	assert.EqualValues(t, 3, requests.Load())
}

func TestFetchDirectoryHonorsMaxPages(t *testing.T) {
	var requests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := requests.Add(1)
		w.Write([]byte(directoryPage(
			directoryRow(fmt.Sprintf("%d", page), fmt.Sprintf("%d", 100+page), "Endless Holdings", "EH"),
		)))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))

	roster, err := FetchDirectory(context.Background(), client, 2)
	require.NoError(t, err)
	assert.Len(t, roster, 2)
	assert.EqualValues(t, 2, requests.Load())
}

func TestFetchDirectoryDropsDuplicateIdentifierPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageNo") != "1" {
			w.Write([]byte(directoryPage()))
			return
		}

		w.Write([]byte(directoryPage(
			directoryRow("29", "146", "Ayala Corporation", "AC"),
			directoryRow("29", "146", "Ayala Corporation", "AC"),
		)))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))

	roster, err := FetchDirectory(context.Background(), client, 0)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}

func TestParseDirectoryPageSkipsRowsWithoutIdentifiers(t *testing.T) {
	page := directoryPage(
		directoryRow("29", "146", "Ayala Corporation", "AC"),
		`<tr><td><a href="#">No Handler Corp</a></td><td><a href="#">NHC</a></td></tr>`,
		`<tr><td>Plain Cells Inc.</td><td>PCI</td></tr>`,
		`<tr><td colspan="2">spacer</td></tr>`,
	)

	companies, err := parseDirectoryPage([]byte(page))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "AC", companies[0].Symbol)
}

func TestParseDirectoryPageRequiresListingTable(t *testing.T) {
	_, err := parseDirectoryPage([]byte(`<html><body><p>maintenance window</p></body></html>`))
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseDirectoryPageUnescapesNames(t *testing.T) {
	page := directoryPage(directoryRow("10", "20", "SM Prime Holdings &amp; Co.", "SMPH"))

	companies, err := parseDirectoryPage([]byte(page))
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "SM Prime Holdings & Co.", companies[0].Name)
}

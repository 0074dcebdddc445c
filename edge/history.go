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
	"slices"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/pse-vault/psedata/data"
)

const (
	historyPath    = "/common/DisclosureCht.ax"
	historyReferer = DefaultBaseURL + "/companyPage/stockData.do"
)

// historyRequest is the fixed payload shape of the chart endpoint. Field
// names are an external contract and must be reproduced exactly.
type historyRequest struct {
	CompanyID  string `json:"cmpy_id"`
	SecurityID string `json:"security_id"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
}

// FetchSeries retrieves one company's daily price series for the inclusive
// date range and returns it sorted date-ascending with duplicate dates
// collapsed. An empty series is a valid outcome (newly listed or delisted
// companies). Zero start/end dates widen the range to 1900-01-01..today.
func FetchSeries(ctx context.Context, client *Client, company *data.Company, start, end data.Date) ([]*data.PricePoint, error) {
	if start.IsZero() {
		start = data.NewDate(1900, 1, 1)
	}

	if end.IsZero() {
		end = data.Today()
	}

	payload, err := json.Marshal(historyRequest{
		CompanyID:  company.CompanyID,
		SecurityID: company.SecurityID,
		StartDate:  start.Payload(),
		EndDate:    end.Payload(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal history request: %w", err)
	}

	// The endpoint only answers requests that look like the in-page AJAX
	// call, hence the Referer and X-Requested-With headers.
	body, err := client.PostJSON(ctx, historyPath, payload, map[string]string{
		"Referer":          historyReferer,
		"X-Requested-With": "XMLHttpRequest",
	})
	if err != nil {
		return nil, err
	}

	return parseSeries(body, company.Symbol)
}

// parseSeries normalizes the chartData records of one history response.
// Records without a parseable date are dropped with a warning; a null VALUE
// is kept as a nil field (illiquid day).
func parseSeries(body []byte, symbol string) ([]*data.PricePoint, error) {
	if !gjson.ValidBytes(body) {
		return nil, &ParseError{Detail: "history response is not valid JSON"}
	}

	records := gjson.GetBytes(body, "chartData")
	if !records.Exists() {
		return nil, &ParseError{Detail: "history response has no chartData field"}
	}

	if !records.IsArray() {
		return nil, &ParseError{Detail: "chartData is not a list"}
	}

	byDate := make(map[string]*data.PricePoint)

	records.ForEach(func(_, record gjson.Result) bool {
		dateStr := record.Get("CHART_DATE").String()
		if dateStr == "" {
			log.Warn().Str("Symbol", symbol).Msg("chart record has no date, dropping")
			return true
		}

		date, err := data.ParseChartDate(dateStr)
		if err != nil {
			log.Warn().Err(err).Str("Symbol", symbol).Str("ChartDate", dateStr).
				Msg("chart record date is unparseable, dropping")
			return true
		}

		point := &data.PricePoint{
			Date:  date,
			Open:  record.Get("OPEN").Float(),
			High:  record.Get("HIGH").Float(),
			Low:   record.Get("LOW").Float(),
			Close: record.Get("CLOSE").Float(),
		}

		if value := record.Get("VALUE"); value.Exists() && value.Type != gjson.Null {
			v := value.Float()
			point.Value = &v
		}

		// duplicate dates: last record wins
		byDate[date.String()] = point

		return true
	})

	points := make([]*data.PricePoint, 0, len(byDate))
	for _, point := range byDate {
		points = append(points, point)
	}

	slices.SortFunc(points, func(a, b *data.PricePoint) int {
		return a.Date.Compare(b.Date.Time)
	})

	return points, nil
}

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
package data

import (
	"fmt"
	"time"
)

const (
	// ISODateFormat is the canonical form used in artifacts and user input.
	ISODateFormat = "2006-01-02"

	// PayloadDateFormat is the MM-DD-YYYY form the EDGE chart endpoint
	// expects in request payloads.
	PayloadDateFormat = "01-02-2006"

	// chartDateFormat is the human-readable form EDGE uses in chartData
	// records, e.g. "Aug 30, 2024 00:00:00".
	chartDateFormat = "Jan 2, 2006 15:04:05"
)

// Date is a calendar day with no time component. The zero value is usable
// and reports IsZero.
type Date struct {
	time.Time
}

// NewDate returns the calendar date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate accepts either of the two date forms used on the command line
// and in config files (YYYY-MM-DD or MM-DD-YYYY).
func ParseDate(value string) (Date, error) {
	for _, layout := range []string{ISODateFormat, PayloadDateFormat} {
		if t, err := time.Parse(layout, value); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}

	return Date{}, fmt.Errorf("unrecognized date %q (expected YYYY-MM-DD or MM-DD-YYYY)", value)
}

// ParseChartDate parses the date string attached to one chartData record.
func ParseChartDate(value string) (Date, error) {
	t, err := time.Parse(chartDateFormat, value)
	if err != nil {
		return Date{}, fmt.Errorf("unrecognized chart date %q: %w", value, err)
	}

	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Payload serializes the date in the form the EDGE chart endpoint expects.
func (d Date) Payload() string {
	return d.Format(PayloadDateFormat)
}

func (d Date) String() string {
	return d.Format(ISODateFormat)
}

// MarshalCSV implements gocsv marshaling using the canonical ISO form.
func (d Date) MarshalCSV() (string, error) {
	return d.String(), nil
}

// UnmarshalCSV implements gocsv unmarshaling.
func (d *Date) UnmarshalCSV(value string) error {
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

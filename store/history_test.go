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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pse-vault/psedata/data"
)

func floatPtr(v float64) *float64 { return &v }

func samplePoints() []*data.PricePoint {
	return []*data.PricePoint{
		{Date: data.NewDate(2024, time.August, 28), Open: 10.0, High: 10.6, Low: 9.9, Close: 10.4},
		{Date: data.NewDate(2024, time.August, 29), Open: 10.5, High: 11.0, Low: 10.2, Close: 10.8, Value: floatPtr(12345.67)},
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "histories", "AC_Ayala_Corporation.csv")

	require.NoError(t, SaveHistory(path, samplePoints()))

	points, err := LoadHistory(path)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2024-08-28", points[0].Date.String())
	assert.Nil(t, points[0].Value)
	assert.InDelta(t, 10.4, points[0].Close, 1e-9)

	require.NotNil(t, points[1].Value)
	assert.InDelta(t, 12345.67, *points[1].Value, 1e-9)
}

func TestHistoryExists(t *testing.T) {
	dir := t.TempDir()

	assert.False(t, HistoryExists(filepath.Join(dir, "missing.csv")))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.False(t, HistoryExists(empty))

	saved := filepath.Join(dir, "saved.csv")
	require.NoError(t, SaveHistory(saved, samplePoints()))
	assert.True(t, HistoryExists(saved))
}

func TestWriteAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.csv")

	require.NoError(t, writeAtomic(path, []byte("payload")))
	require.NoError(t, writeAtomic(path, []byte("replaced")))

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(payload))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".psedata-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCompaniesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.csv")

	roster := []*data.Company{
		{CompanyID: "29", SecurityID: "146", Name: "Ayala Corporation", Symbol: "AC"},
		{CompanyID: "57", SecurityID: "212", Name: "BDO Unibank, Inc.", Symbol: "BDO"},
	}

	require.NoError(t, SaveCompanies(path, roster))

	loaded, err := LoadCompanies(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, roster[0], loaded[0])
	assert.Equal(t, roster[1], loaded[1])
}

func TestLoadCompaniesMissingFile(t *testing.T) {
	_, err := LoadCompanies(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

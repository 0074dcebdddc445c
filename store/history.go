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
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pse-vault/psedata/data"
)

// SaveHistory writes one company's price series artifact. The write is
// atomic (temp file + rename) so an interrupted run never leaves a
// truncated artifact that a later run would mistake for a finished one.
func SaveHistory(path string, points []*data.PricePoint) error {
	payload, err := gocsv.MarshalBytes(&points)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := writeAtomic(path, payload); err != nil {
		return fmt.Errorf("write history: %w", err)
	}

	return nil
}

// LoadHistory reads one company's price series artifact.
func LoadHistory(path string) ([]*data.PricePoint, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var points []*data.PricePoint
	if err := gocsv.UnmarshalBytes(payload, &points); err != nil {
		return nil, fmt.Errorf("unmarshal history %s: %w", filepath.Base(path), err)
	}

	return points, nil
}

// HistoryExists reports whether a non-empty history artifact is already on
// disk. Zero-byte files (e.g. from a full disk) do not count.
func HistoryExists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Size() > 0
}

func writeAtomic(path string, payload []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".psedata-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return nil
}

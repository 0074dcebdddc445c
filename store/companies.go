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

	"github.com/gocarina/gocsv"

	"github.com/pse-vault/psedata/data"
)

// SaveCompanies writes the roster artifact.
func SaveCompanies(path string, roster []*data.Company) error {
	payload, err := gocsv.MarshalBytes(&roster)
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}

	if err := writeAtomic(path, payload); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}

	return nil
}

// LoadCompanies reads a previously saved roster artifact.
func LoadCompanies(path string) ([]*data.Company, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var roster []*data.Company
	if err := gocsv.UnmarshalBytes(payload, &roster); err != nil {
		return nil, fmt.Errorf("unmarshal roster: %w", err)
	}

	return roster, nil
}

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

import "time"

// FetchStatus tracks one company through the download pipeline. Terminal
// states (Succeeded, Failed, Skipped) are final for the run.
type FetchStatus int

const (
	Pending FetchStatus = iota
	InFlight
	Succeeded
	Failed
	Skipped
)

func (status FetchStatus) String() string {
	switch status {
	case Pending:
		return "pending"
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	}

	return "unknown"
}

// FetchState is the pipeline outcome for one company.
type FetchState struct {
	Status   FetchStatus
	Rows     int
	Reason   string
	Attempts int
}

// Failure records one failed company for the run summary.
type Failure struct {
	Key      string
	Symbol   string
	Name     string
	Reason   string
	Attempts int
}

// RunSummary is the observable result of one pipeline run.
type RunSummary struct {
	StartTime time.Time
	EndTime   time.Time
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Failures  []Failure
}

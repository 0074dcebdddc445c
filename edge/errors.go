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
	"errors"
	"fmt"
)

// ErrRetriesExhausted marks a transport failure that was transient per
// attempt but permanent after the retry budget ran out.
var ErrRetriesExhausted = errors.New("retries exhausted")

// TransportError is a network or HTTP failure. Transient reports whether
// the failure class was retryable: true when the retry budget ran out on
// transient failures, false for a permanent HTTP failure.
type TransportError struct {
	Transient  bool
	StatusCode int
	Attempts   int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport: status %d after %d attempt(s)", e.StatusCode, e.Attempts)
	}

	return fmt.Sprintf("transport: %v after %d attempt(s)", e.Err, e.Attempts)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ParseError reports a source payload or page that did not match the
// expected shape. Retrying cannot fix a shape mismatch, so these are never
// retried.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return "parse: " + e.Detail
}

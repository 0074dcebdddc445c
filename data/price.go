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

// PricePoint is one trading day for one company. Value is nil on illiquid
// days where the source reports no traded value.
type PricePoint struct {
	Date  Date     `csv:"date"`
	Open  float64  `csv:"open"`
	High  float64  `csv:"high"`
	Low   float64  `csv:"low"`
	Close float64  `csv:"close"`
	Value *float64 `csv:"value"`
}

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

// Company is one listed company as published in the EDGE directory. The
// portal identifies a listing by the (CompanyID, SecurityID) pair; the stock
// symbol may repeat across share classes and is never used as a key.
type Company struct {
	CompanyID  string `csv:"companyId"`
	SecurityID string `csv:"securityId"`
	Name       string `csv:"companyName"`
	Symbol     string `csv:"stockSymbol"`
}

// Key returns the identifier pair in a form usable as a map key.
func (company *Company) Key() string {
	return company.CompanyID + ":" + company.SecurityID
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import "errors"

var (
	// ErrEmptyEndpoint indicates a search client with no endpoint configured.
	ErrEmptyEndpoint = errors.New("search endpoint must not be empty")

	// ErrInvalidEndpoint indicates an unparseable search endpoint URL.
	ErrInvalidEndpoint = errors.New("invalid search endpoint")

	// ErrSearchFailed indicates a non-OK response from the search endpoint.
	ErrSearchFailed = errors.New("search request failed")

	// ErrFetchFailed indicates a non-OK response while fetching a page.
	ErrFetchFailed = errors.New("page fetch failed")
)

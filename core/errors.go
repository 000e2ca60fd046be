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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidTask indicates a Task failed validation.
	ErrInvalidTask = errors.New("invalid task")

	// ErrInvalidPage indicates a Page failed validation.
	ErrInvalidPage = errors.New("invalid page")

	// ErrInvalidFact indicates a Fact failed validation.
	ErrInvalidFact = errors.New("invalid fact")

	// ErrEmptyQuery indicates the Query field is empty.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidPageNumber indicates a page number below 1.
	ErrInvalidPageNumber = errors.New("page number must be positive")

	// ErrInvalidTaskStatus indicates an invalid TaskStatus value.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrEmptyFactLabel indicates the fact Label field is empty.
	ErrEmptyFactLabel = errors.New("fact label cannot be empty")

	// ErrEmptyFactValue indicates the fact Value field is empty.
	ErrEmptyFactValue = errors.New("fact value cannot be empty")
)

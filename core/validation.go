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

import "fmt"

// ValidateTask validates a Task according to domain rules.
//
// Validation rules:
//   - Query must not be empty
//   - Status must be a known value
//
// NOT validated:
//   - Report/FailureReason (set by the orchestrator on terminal transitions)
//   - ID (0 is valid from database sequences)
func ValidateTask(task *Task) error {
	if task == nil {
		return fmt.Errorf("%w: task is nil", ErrInvalidTask)
	}

	if task.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTask, ErrEmptyQuery)
	}

	if err := ValidateTaskStatus(task.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	return nil
}

// ValidatePage validates a Page according to domain rules.
//
// Validation rules:
//   - Contents must not be empty
//   - Number must be positive
//
// NOT validated (populated by processors):
//   - Vector (can be empty until the embedding processor runs)
//   - ID (0 is valid from database sequences)
func ValidatePage(page *Page) error {
	if page == nil {
		return fmt.Errorf("%w: page is nil", ErrInvalidPage)
	}

	if page.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPage, ErrEmptyContent)
	}

	if page.Number < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidPage, ErrInvalidPageNumber)
	}

	return nil
}

// ValidateFact validates a Fact according to domain rules.
//
// Validation rules:
//   - Label must not be empty
//   - Value must not be empty
//
// NOT validated (populated by processors):
//   - Vector (can be empty until embedded)
func ValidateFact(fact *Fact) error {
	if fact == nil {
		return fmt.Errorf("%w: fact is nil", ErrInvalidFact)
	}

	if fact.Label == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFact, ErrEmptyFactLabel)
	}

	if fact.Value == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFact, ErrEmptyFactValue)
	}

	return nil
}

// ValidateTaskStatus validates that a TaskStatus has a valid value.
func ValidateTaskStatus(status TaskStatus) error {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return nil
	}
	return fmt.Errorf("%w: value %d", ErrInvalidTaskStatus, status)
}

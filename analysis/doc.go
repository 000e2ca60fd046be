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

// Package analysis runs market analysis tasks end to end.
//
// The Service accepts analysis requests, persists a task record, and hands
// the run to a worker pool. The Orchestrator drives one run through its
// lifecycle: research, synthesis, and report compilation, committing
// progress updates to the task store at each step. The Notifier turns the
// stored task state into a polled event stream for callers that want to
// follow a run.
//
// Task state is the single source of truth. The orchestrator writes it,
// the notifier reads it, and neither holds run state in memory.
package analysis

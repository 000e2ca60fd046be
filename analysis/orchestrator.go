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

package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/research"
	"github.com/poiesic/docufi/storage"
	"github.com/poiesic/docufi/synthesis"
)

// Progress messages committed to the task record at each step.
const (
	progressStarting     = "Starting analysis..."
	progressResearching  = "Researching internal and external data..."
	progressSynthesizing = "Synthesizing market size and top players..."
	progressComplete     = "Analysis complete."
)

// Orchestrator drives one analysis run through research, synthesis, and
// report compilation. It owns all task state transitions after creation.
type Orchestrator struct {
	tasks       storage.TaskRepository
	internal    research.Connector
	external    research.Connector
	synthesizer *synthesis.Synthesizer
	logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given collaborators.
func NewOrchestrator(
	tasks storage.TaskRepository,
	internal research.Connector,
	external research.Connector,
	synthesizer *synthesis.Synthesizer,
) (*Orchestrator, error) {
	if tasks == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if internal == nil || external == nil {
		return nil, ErrConnectorRequired
	}
	if synthesizer == nil {
		return nil, ErrSynthesizerRequired
	}

	return &Orchestrator{
		tasks:       tasks,
		internal:    internal,
		external:    external,
		synthesizer: synthesizer,
		logger:      slog.Default().With("component", "orchestrator"),
	}, nil
}

// Run executes one analysis for the given task. A run is not re-entrant;
// the Service submits exactly one run per created task. Any research or
// synthesis error moves the task to Failed with the cause recorded, and no
// partial report is ever stored.
func (o *Orchestrator) Run(ctx context.Context, id core.ID, query string) error {
	o.logger.Info("starting analysis", "task", id, "query", query)

	status := core.TaskStatusInProgress
	progress := progressStarting
	if _, err := o.tasks.UpdateTask(ctx, id, &storage.TaskUpdate{Status: &status, Progress: &progress}); err != nil {
		o.logger.Error("failed to start task", "task", id, "err", err)
		return err
	}

	report, err := o.analyze(ctx, id, query)
	if err != nil {
		o.commitFailure(ctx, id, err)
		return err
	}

	status = core.TaskStatusCompleted
	progress = progressComplete
	if _, err := o.tasks.UpdateTask(ctx, id, &storage.TaskUpdate{
		Status:   &status,
		Report:   &report,
		Progress: &progress,
	}); err != nil {
		o.logger.Error("failed to commit completed task", "task", id, "err", err)
		return err
	}

	o.logger.Info("analysis complete", "task", id)
	return nil
}

// analyze runs the research and synthesis steps and returns the compiled
// report. Task progress is updated as the run advances.
func (o *Orchestrator) analyze(ctx context.Context, id core.ID, query string) (string, error) {
	if err := o.setProgress(ctx, id, progressResearching); err != nil {
		return "", err
	}

	internalResult, err := o.internal.Research(ctx, query)
	if err != nil {
		return "", fmt.Errorf("internal research failed: %w", err)
	}

	externalResult, err := o.external.Research(ctx, query)
	if err != nil {
		return "", fmt.Errorf("external research failed: %w", err)
	}

	combined := internalResult.Content + "\n\n" + externalResult.Content

	if err := o.setProgress(ctx, id, progressSynthesizing); err != nil {
		return "", err
	}

	sectionTexts, err := o.synthesizer.SynthesizeAll(ctx, combined)
	if err != nil {
		return "", err
	}

	return synthesis.CompileReport(query, sectionTexts), nil
}

// setProgress commits a progress message to the task record.
func (o *Orchestrator) setProgress(ctx context.Context, id core.ID, text string) error {
	_, err := o.tasks.UpdateTask(ctx, id, &storage.TaskUpdate{Progress: &text})
	return err
}

// commitFailure moves the task to Failed with the cause recorded.
// Store errors here are logged, not retried; the run is already lost.
func (o *Orchestrator) commitFailure(ctx context.Context, id core.ID, cause error) {
	o.logger.Error("analysis failed", "task", id, "err", cause)

	status := core.TaskStatusFailed
	reason := cause.Error()
	progress := "Analysis failed: " + reason
	if _, err := o.tasks.UpdateTask(ctx, id, &storage.TaskUpdate{
		Status:        &status,
		FailureReason: &reason,
		Progress:      &progress,
	}); err != nil {
		o.logger.Error("failed to record task failure", "task", id, "err", err)
	}
}

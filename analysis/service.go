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
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
)

// Service accepts analysis requests and runs them asynchronously.
type Service struct {
	tasks        storage.TaskRepository
	orchestrator *Orchestrator
	pool         *ants.Pool
	logger       *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service) error

// WithPoolSize sets the worker pool size for concurrent analysis runs.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) ServiceOption {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}

		if s.pool != nil {
			s.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates an analysis service.
func NewService(tasks storage.TaskRepository, orchestrator *Orchestrator, opts ...ServiceOption) (*Service, error) {
	if tasks == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Service{
		tasks:        tasks,
		orchestrator: orchestrator,
		pool:         pool,
		logger:       slog.Default().With("component", "analysis-service"),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	return s, nil
}

// StartAnalysis creates a task for the query and submits exactly one
// orchestration run for it. The returned task is Pending; the run proceeds
// in the background and progress is observable through GetTask or a
// Notifier. Run errors are committed to the task record, not returned here.
func (s *Service) StartAnalysis(ctx context.Context, query string) (*core.Task, error) {
	task, err := s.tasks.CreateTask(ctx, query)
	if err != nil {
		return nil, err
	}

	id, runQuery := task.Id, task.Query
	// Background context: the run must outlive the request that started it.
	if err := s.pool.Submit(func() {
		if runErr := s.orchestrator.Run(context.Background(), id, runQuery); runErr != nil {
			s.logger.Error("analysis run failed", "task", id, "err", runErr)
		}
	}); err != nil {
		s.logger.Error("failed to submit analysis run", "task", id, "err", err)
		s.orchestrator.commitFailure(ctx, id, err)
		return nil, err
	}

	return task, nil
}

// GetTask retrieves the current state of a task.
func (s *Service) GetTask(ctx context.Context, id core.ID) (*core.Task, error) {
	return s.tasks.GetTask(ctx, id)
}

// Release frees the worker pool. In-flight runs finish; queued runs are
// dropped. The service should not be used after calling Release.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

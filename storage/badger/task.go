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

package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
)

// TaskRepository implements storage.TaskRepository for BadgerDB.
type TaskRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.TaskRepository = (*TaskRepository)(nil)

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(backend *Backend) (*TaskRepository, error) {
	idSeq, err := backend.GetSequence(taskIDSeq)
	if err != nil {
		return nil, err
	}

	return &TaskRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *TaskRepository) Close() error {
	return r.idSeq.Release()
}

// CreateTask inserts a new pending task for the given query.
func (r *TaskRepository) CreateTask(ctx context.Context, query string) (*core.Task, error) {
	now := time.Now().UTC()
	task := &core.Task{
		Query:     query,
		Status:    core.TaskStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := core.ValidateTask(task); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		task.Id = core.ID(nextID)

		key := makeTaskKey(task.Id)
		if err := tx.Set(key, storage.MarshalTask(task)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask retrieves a task by ID.
func (r *TaskRepository) GetTask(ctx context.Context, id core.ID) (*core.Task, error) {
	var result *core.Task
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readTask(tx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// UpdateTask applies a partial update to a task.
// The read-modify-write runs inside one transaction so concurrent readers
// never observe a partially applied update. Tasks in a terminal state
// reject all further writes.
func (r *TaskRepository) UpdateTask(ctx context.Context, id core.ID, update *storage.TaskUpdate) (*core.Task, error) {
	if update == nil {
		return nil, storage.ErrInvalidQuery
	}

	var result *core.Task
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		task, err := r.readTask(tx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return storage.ErrNotFound
		}
		if task.Status.Terminal() {
			return storage.ErrTaskFinalized
		}

		if update.Status != nil {
			if err := core.ValidateTaskStatus(*update.Status); err != nil {
				return err
			}
			task.Status = *update.Status
		}
		if update.Progress != nil {
			task.Progress = *update.Progress
		}
		if update.Report != nil {
			task.Report = *update.Report
		}
		if update.FailureReason != nil {
			task.FailureReason = *update.FailureReason
		}
		task.UpdatedAt = time.Now().UTC()

		if err := tx.Set(makeTaskKey(id), storage.MarshalTask(task)); err != nil {
			return err
		}
		result = task
		return tx.Commit()
	}, true)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// readTask reads a task inside a transaction. Returns nil if absent.
func (r *TaskRepository) readTask(tx *badger.Txn, id core.ID) (*core.Task, error) {
	item, err := tx.Get(makeTaskKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var task *core.Task
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		task, unmarshalErr = storage.UnmarshalTask(val)
		return unmarshalErr
	})
	return task, err
}

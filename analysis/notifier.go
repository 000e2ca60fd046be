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
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
)

// EventKind identifies the type of a notifier event.
type EventKind int

const (
	// EventProgress carries a progress message from a running task.
	EventProgress EventKind = iota + 1
	// EventComplete carries the final report. It is always the last event.
	EventComplete
	// EventError carries a failure reason. It is always the last event.
	EventError
)

// Event is one observation of a watched task.
type Event struct {
	Kind EventKind
	Text string
}

const defaultPollInterval = 2 * time.Second

// Notifier streams task state changes by polling the task store.
type Notifier struct {
	tasks          storage.TaskRepository
	pollInterval   time.Duration
	missingTimeout time.Duration // 0 means wait for the task indefinitely
	logger         *slog.Logger
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier) error

// WithPollInterval sets how often the task store is polled.
// Default is 2 seconds.
func WithPollInterval(interval time.Duration) NotifierOption {
	return func(n *Notifier) error {
		if interval <= 0 {
			return errors.New("poll interval must be positive")
		}
		n.pollInterval = interval
		return nil
	}
}

// WithMissingTaskTimeout bounds how long a watch waits for a task that does
// not exist yet. After the timeout an Error event is emitted and the stream
// ends. By default a watch polls indefinitely, which tolerates watching a
// task id before its creating transaction lands.
func WithMissingTaskTimeout(timeout time.Duration) NotifierOption {
	return func(n *Notifier) error {
		if timeout <= 0 {
			return errors.New("missing task timeout must be positive")
		}
		n.missingTimeout = timeout
		return nil
	}
}

// NewNotifier creates a notifier over the task store.
func NewNotifier(tasks storage.TaskRepository, opts ...NotifierOption) (*Notifier, error) {
	if tasks == nil {
		return nil, ErrTaskRepositoryRequired
	}

	n := &Notifier{
		tasks:        tasks,
		pollInterval: defaultPollInterval,
		logger:       slog.Default().With("component", "notifier"),
	}

	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// Watch returns a stream of events for the task. Progress events are
// deduplicated: a message equal to the last emitted one is suppressed. A
// Complete or Error event is terminal; the channel is closed after it.
// Cancelling ctx ends the stream without a terminal event.
func (n *Notifier) Watch(ctx context.Context, id core.ID) <-chan Event {
	events := make(chan Event)
	go n.watch(ctx, id, events)
	return events
}

func (n *Notifier) watch(ctx context.Context, id core.ID, events chan<- Event) {
	defer close(events)

	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	var lastProgress string
	var missingSince time.Time

	for {
		task, err := n.tasks.GetTask(ctx, id)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			if n.missingTimeout > 0 {
				if missingSince.IsZero() {
					missingSince = time.Now()
				} else if time.Since(missingSince) >= n.missingTimeout {
					n.send(ctx, events, Event{Kind: EventError, Text: "task not found"})
					return
				}
			}

		case err != nil:
			n.logger.Error("failed to poll task", "task", id, "err", err)
			n.send(ctx, events, Event{Kind: EventError, Text: err.Error()})
			return

		default:
			missingSince = time.Time{}

			switch task.Status {
			case core.TaskStatusCompleted:
				n.send(ctx, events, Event{Kind: EventComplete, Text: task.Report})
				return
			case core.TaskStatusFailed:
				n.send(ctx, events, Event{Kind: EventError, Text: task.FailureReason})
				return
			default:
				if task.Progress != "" && task.Progress != lastProgress {
					if !n.send(ctx, events, Event{Kind: EventProgress, Text: task.Progress}) {
						return
					}
					lastProgress = task.Progress
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// send delivers an event unless the watch context ends first.
func (n *Notifier) send(ctx context.Context, events chan<- Event, event Event) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- event:
		return true
	}
}

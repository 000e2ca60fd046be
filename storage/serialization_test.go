package storage

import (
	"testing"
	"time"

	"github.com/poiesic/docufi/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	task := &core.Task{
		Id:        42,
		Query:     "electric vehicles",
		Status:    core.TaskStatusInProgress,
		Progress:  "Researching internal and external data...",
		CreatedAt: now.Add(-time.Minute),
		UpdatedAt: now,
	}

	data := MarshalTask(task)
	got, err := UnmarshalTask(data)
	require.NoError(t, err)

	assert.Equal(t, task.Id, got.Id)
	assert.Equal(t, task.Query, got.Query)
	assert.Equal(t, task.Status, got.Status)
	assert.Equal(t, task.Progress, got.Progress)
	assert.Empty(t, got.Report)
	assert.Empty(t, got.FailureReason)
	assert.True(t, task.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, task.UpdatedAt.Equal(got.UpdatedAt))
}

func TestPageRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	page := &core.Page{
		Id:         7,
		DocumentId: 3,
		Number:     12,
		Contents:   "The EV market grew 40% year over year.",
		Vector:     []float32{0.25, -1.5, 0, 3.125},
		InsertedAt: now,
		UpdatedAt:  now,
	}

	data := MarshalPage(page)
	got, err := UnmarshalPage(data)
	require.NoError(t, err)

	assert.Equal(t, page.Id, got.Id)
	assert.Equal(t, page.DocumentId, got.DocumentId)
	assert.Equal(t, page.Number, got.Number)
	assert.Equal(t, page.Contents, got.Contents)
	assert.Equal(t, page.Vector, got.Vector)
}

func TestFactRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	fact := &core.Fact{
		DocumentId: 3,
		PageNumber: 2,
		Label:      "market size",
		Value:      "$1 Billion",
		Vector:     []float32{1, 2, 3},
		InsertedAt: now,
		UpdatedAt:  now,
	}
	fact.Id = core.IDFromContent(fact.Tuple())

	data := MarshalFact(fact)
	got, err := UnmarshalFact(data)
	require.NoError(t, err)

	assert.Equal(t, fact.Id, got.Id)
	assert.Equal(t, fact.Label, got.Label)
	assert.Equal(t, fact.Value, got.Value)
	assert.Equal(t, fact.Vector, got.Vector)
}

func TestUnmarshalTruncated(t *testing.T) {
	now := time.Now().UTC()
	task := &core.Task{Id: 1, Query: "ev", Status: core.TaskStatusPending, CreatedAt: now, UpdatedAt: now}

	data := MarshalTask(task)
	_, err := UnmarshalTask(data[:len(data)/2])
	assert.Error(t, err)
}

func TestIDRoundTrip(t *testing.T) {
	for _, id := range []core.ID{0, 1, 127, 128, 1 << 40, 1<<64 - 1} {
		got, err := UnmarshalID(MarshalID(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

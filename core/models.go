package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// TaskStatus identifies the lifecycle state of an analysis task.
type TaskStatus int

const (
	// TaskStatusPending means the task is created but not yet picked up.
	TaskStatusPending TaskStatus = iota + 1
	// TaskStatusInProgress means an orchestration run owns the task.
	TaskStatusInProgress
	// TaskStatusCompleted means the task finished with a report.
	TaskStatusCompleted
	// TaskStatusFailed means the task aborted with a failure reason.
	TaskStatusFailed
)

// Terminal reports whether the status permits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

func (s TaskStatus) String() string {
	switch s {
	case TaskStatusPending:
		return "PENDING"
	case TaskStatusInProgress:
		return "IN_PROGRESS"
	case TaskStatusCompleted:
		return "COMPLETED"
	case TaskStatusFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Task is one orchestrated market-analysis job with a persisted lifecycle.
// It is created in TaskStatusPending and mutated only by the orchestrator.
type Task struct {
	Id            ID
	Query         string // Immutable topic the analysis was requested for
	Status        TaskStatus
	Progress      string // Latest human-readable progress message (overwritten, not appended)
	Report        string // Compiled report text, set only on completion
	FailureReason string // Cause of failure, set only on failure
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Document represents an ingested source document.
type Document struct {
	Id         ID
	Filename   string
	InsertedAt time.Time
}

// Page is one chunk of an ingested document.
// The Vector field is populated asynchronously by the ingestion pipeline.
type Page struct {
	Id         ID
	DocumentId ID
	Number     int // 1-based page number within the document
	Contents   string
	Vector     []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Fact is a labeled statement extracted from a document page.
type Fact struct {
	Id         ID
	DocumentId ID
	PageNumber int
	Label      string
	Value      string
	Vector     []float32
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// Tuple returns a string representation of the fact as "(docID,Label,Value)".
// This is used for generating deterministic IDs.
func (f *Fact) Tuple() string {
	return "(" + strconv.FormatUint(uint64(f.DocumentId), 10) + "," + f.Label + "," + f.Value + ")"
}

// PageMatch is a page returned from vector similarity search.
type PageMatch struct {
	Page  *Page
	Score float32
}

// FactMatch is a fact returned from vector similarity search.
type FactMatch struct {
	Fact  *Fact
	Score float32
}

// SourceKind identifies which research mode produced a result.
type SourceKind int

const (
	// SourceInternal marks research drawn from the ingested document corpus.
	SourceInternal SourceKind = iota + 1
	// SourceExternal marks research drawn from the web.
	SourceExternal
)

func (k SourceKind) String() string {
	switch k {
	case SourceInternal:
		return "INTERNAL"
	case SourceExternal:
		return "EXTERNAL"
	}
	return "UNKNOWN"
}

// ResearchResult is the ephemeral output of one research mode.
// It is consumed by the orchestrator during synthesis and never persisted.
type ResearchResult struct {
	Source  SourceKind
	Content string
}

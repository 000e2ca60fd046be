package storage

import (
	"context"

	"github.com/poiesic/docufi/core"
)

// TaskUpdate describes a partial update to a task. Nil fields are left
// untouched. All set fields are applied atomically in one transaction.
type TaskUpdate struct {
	Status        *core.TaskStatus
	Progress      *string
	Report        *string
	FailureReason *string
}

// TaskRepository provides operations for managing analysis task records.
// Implementations must be thread-safe and serialize concurrent updates
// per task id so readers always observe a consistent snapshot.
type TaskRepository interface {
	// CreateTask inserts a new task in TaskStatusPending for the given query.
	// The task is durably stored before the call returns.
	CreateTask(ctx context.Context, query string) (*core.Task, error)

	// GetTask retrieves a task by ID.
	// Returns ErrNotFound if the task doesn't exist.
	GetTask(ctx context.Context, id core.ID) (*core.Task, error)

	// UpdateTask applies a partial update to a task and refreshes UpdatedAt.
	// Returns ErrNotFound if the task doesn't exist.
	// Returns ErrTaskFinalized if the stored task is already in a terminal
	// state; completed and failed tasks accept no further writes.
	UpdateTask(ctx context.Context, id core.ID, update *TaskUpdate) (*core.Task, error)

	// Close releases resources held by the repository.
	Close() error
}

// DocumentRepository provides operations for the ingested document corpus:
// documents, page chunks, and extracted facts, plus vector similarity
// search over pages and facts.
type DocumentRepository interface {
	// AddDocument inserts a new document record and assigns it an ID.
	AddDocument(ctx context.Context, filename string) (*core.Document, error)

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// AddPages adds page chunks to storage. For pages with ID=0, generates
	// new IDs from sequence and sets InsertedAt. Returns the pages with IDs
	// and timestamps populated.
	AddPages(ctx context.Context, pages ...*core.Page) ([]*core.Page, error)

	// UpdatePages updates existing pages (typically to attach embeddings).
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any page doesn't exist.
	UpdatePages(ctx context.Context, pages ...*core.Page) ([]*core.Page, error)

	// GetPages retrieves pages by their IDs.
	// Returns only the pages that exist (no error for missing pages).
	GetPages(ctx context.Context, ids ...core.ID) ([]*core.Page, error)

	// GetDocumentPages retrieves all pages of a document ordered by page number.
	GetDocumentPages(ctx context.Context, docID core.ID) ([]*core.Page, error)

	// AddFacts adds extracted facts to storage. Fact IDs are content-based
	// (IDFromContent of the fact tuple), so re-adding an identical fact
	// overwrites rather than duplicates.
	AddFacts(ctx context.Context, facts ...*core.Fact) ([]*core.Fact, error)

	// GetDocumentFacts retrieves all facts extracted from a document.
	GetDocumentFacts(ctx context.Context, docID core.ID) ([]*core.Fact, error)

	// FindSimilarPages finds pages similar to the given vector, best first.
	// A docID of 0 searches the whole corpus; a non-zero docID restricts
	// the search to that document. Pages without embeddings are skipped.
	FindSimilarPages(ctx context.Context, vector []float32, docID core.ID, limit int) ([]*core.PageMatch, error)

	// FindSimilarFacts finds facts similar to the given vector, best first.
	// Scoping works as for FindSimilarPages.
	FindSimilarFacts(ctx context.Context, vector []float32, docID core.ID, limit int) ([]*core.FactMatch, error)

	// Close releases resources held by the repository.
	Close() error
}

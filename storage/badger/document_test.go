package badger

import (
	"context"
	"testing"

	"github.com/poiesic/docufi/core"
)

func TestDocumentPages(t *testing.T) {
	taskRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, "report.pdf")
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}
	if doc.Id == 0 {
		t.Fatal("Expected non-zero document ID")
	}

	pages := []*core.Page{
		{DocumentId: doc.Id, Number: 2, Contents: "second page"},
		{DocumentId: doc.Id, Number: 1, Contents: "first page"},
		{DocumentId: doc.Id, Number: 3, Contents: "third page"},
	}
	added, err := docRepo.AddPages(ctx, pages...)
	if err != nil {
		t.Fatalf("Failed to add pages: %v", err)
	}
	for _, p := range added {
		if p.Id == 0 {
			t.Fatal("Expected non-zero page ID")
		}
	}

	// Pages come back ordered by page number regardless of insert order
	got, err := docRepo.GetDocumentPages(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get document pages: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 pages, got %d", len(got))
	}
	for i, p := range got {
		if p.Number != i+1 {
			t.Fatalf("Expected page number %d at position %d, got %d", i+1, i, p.Number)
		}
	}
}

func TestFactContentIDs(t *testing.T) {
	taskRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, "report.pdf")
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	fact := &core.Fact{DocumentId: doc.Id, PageNumber: 1, Label: "revenue", Value: "$10M"}
	if _, err := docRepo.AddFacts(ctx, fact); err != nil {
		t.Fatalf("Failed to add fact: %v", err)
	}
	if fact.Id != core.IDFromContent(fact.Tuple()) {
		t.Fatal("Fact ID not derived from content")
	}

	// Re-adding the same fact overwrites rather than duplicates
	dup := &core.Fact{DocumentId: doc.Id, PageNumber: 1, Label: "revenue", Value: "$10M"}
	if _, err := docRepo.AddFacts(ctx, dup); err != nil {
		t.Fatalf("Failed to re-add fact: %v", err)
	}

	facts, err := docRepo.GetDocumentFacts(ctx, doc.Id)
	if err != nil {
		t.Fatalf("Failed to get facts: %v", err)
	}
	if len(facts) != 1 {
		t.Fatalf("Expected 1 fact after duplicate insert, got %d", len(facts))
	}
}

func TestFindSimilarPages(t *testing.T) {
	taskRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc, err := docRepo.AddDocument(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}
	other, err := docRepo.AddDocument(ctx, "b.pdf")
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	pages := []*core.Page{
		{DocumentId: doc.Id, Number: 1, Contents: "close match", Vector: []float32{1, 0, 0}},
		{DocumentId: doc.Id, Number: 2, Contents: "weak match", Vector: []float32{0.1, 0.9, 0}},
		{DocumentId: doc.Id, Number: 3, Contents: "not embedded yet"},
		{DocumentId: other.Id, Number: 1, Contents: "other doc", Vector: []float32{0.9, 0.1, 0}},
	}
	if _, err := docRepo.AddPages(ctx, pages...); err != nil {
		t.Fatalf("Failed to add pages: %v", err)
	}

	query := []float32{1, 0, 0}

	// Whole-corpus search (docID 0)
	matches, err := docRepo.FindSimilarPages(ctx, query, 0, 5)
	if err != nil {
		t.Fatalf("Failed to search pages: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("Expected 3 embedded pages, got %d", len(matches))
	}
	if matches[0].Page.Contents != "close match" {
		t.Fatalf("Expected best match first, got %q", matches[0].Page.Contents)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Fatal("Matches not ordered best-first")
		}
	}

	// Scoped search excludes the other document
	scoped, err := docRepo.FindSimilarPages(ctx, query, doc.Id, 5)
	if err != nil {
		t.Fatalf("Failed to search scoped pages: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("Expected 2 scoped matches, got %d", len(scoped))
	}
	for _, m := range scoped {
		if m.Page.DocumentId != doc.Id {
			t.Fatalf("Scoped search leaked document %d", m.Page.DocumentId)
		}
	}

	// Limit truncates
	limited, err := docRepo.FindSimilarPages(ctx, query, 0, 1)
	if err != nil {
		t.Fatalf("Failed to search limited pages: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(limited))
	}
}

func TestFindSimilarFactsEmptyCorpus(t *testing.T) {
	taskRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()

	matches, err := docRepo.FindSimilarFacts(ctx, []float32{1, 0, 0}, 0, 10)
	if err != nil {
		t.Fatalf("Empty corpus search should not error: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("Expected no matches, got %d", len(matches))
	}
}

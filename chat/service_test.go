package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/docufi/ai"
	"github.com/poiesic/docufi/ai/mock"
	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
	badgerstore "github.com/poiesic/docufi/storage/badger"
)

type chatFixture struct {
	service  *Service
	docs     storage.DocumentRepository
	provider ai.AIProvider
}

func setupChat(t *testing.T) *chatFixture {
	t.Helper()

	_, docRepo, backend, err := badgerstore.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("failed to create repositories: %v", err)
	}
	t.Cleanup(func() {
		docRepo.Close()
		backend.Close()
	})

	provider := mock.NewMockProvider()
	service, err := NewService(docRepo, provider)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	return &chatFixture{service: service, docs: docRepo, provider: provider}
}

func (f *chatFixture) seed(t *testing.T, ctx context.Context) core.ID {
	t.Helper()

	doc, err := f.docs.AddDocument(ctx, "report.txt")
	if err != nil {
		t.Fatalf("failed to add document: %v", err)
	}
	_, err = f.docs.AddPages(ctx,
		&core.Page{DocumentId: doc.Id, Number: 1, Contents: "widget revenue grew 12%", Vector: []float32{1, 0, 0}},
		&core.Page{DocumentId: doc.Id, Number: 2, Contents: "appendix", Vector: []float32{0, 1, 0}},
	)
	if err != nil {
		t.Fatalf("failed to add pages: %v", err)
	}
	_, err = f.docs.AddFacts(ctx,
		&core.Fact{DocumentId: doc.Id, PageNumber: 1, Label: "revenue growth", Value: "12%", Vector: []float32{1, 0, 0}},
	)
	if err != nil {
		t.Fatalf("failed to add facts: %v", err)
	}
	return doc.Id
}

func TestAnswer(t *testing.T) {
	ctx := context.Background()
	f := setupChat(t)
	docID := f.seed(t, ctx)

	mp := f.provider.(*mock.MockProvider)
	mp.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	var prompt string
	mp.GetMockCompleter().CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		prompt = user
		return "Revenue grew 12%.", nil
	}

	answer, err := f.service.Answer(ctx, docID, "how did revenue develop?")
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}

	if answer.Reply != "Revenue grew 12%." {
		t.Errorf("unexpected reply %q", answer.Reply)
	}
	if len(answer.Pages) == 0 || answer.Pages[0].Page.Number != 1 {
		t.Errorf("expected best page match first, got %+v", answer.Pages)
	}
	if len(answer.Facts) == 0 || answer.Facts[0].Fact.Label != "revenue growth" {
		t.Errorf("expected fact match, got %+v", answer.Facts)
	}
	if answer.Pages[0].Score <= 0 {
		t.Errorf("match score missing: %v", answer.Pages[0].Score)
	}

	// The completion must be grounded in the retrieved material.
	if !strings.Contains(prompt, "widget revenue grew 12%") {
		t.Errorf("page context missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "revenue growth: 12%") {
		t.Errorf("facts missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Question: how did revenue develop?") {
		t.Errorf("question missing from prompt:\n%s", prompt)
	}
}

func TestAnswerScopedToDocument(t *testing.T) {
	ctx := context.Background()
	f := setupChat(t)
	f.seed(t, ctx)

	// A second document whose page is the best global match.
	other, err := f.docs.AddDocument(ctx, "other.txt")
	if err != nil {
		t.Fatalf("failed to add document: %v", err)
	}
	_, err = f.docs.AddPages(ctx,
		&core.Page{DocumentId: other.Id, Number: 1, Contents: "other doc content", Vector: []float32{1, 0, 0}},
	)
	if err != nil {
		t.Fatalf("failed to add pages: %v", err)
	}

	mp := f.provider.(*mock.MockProvider)
	mp.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}

	answer, err := f.service.Answer(ctx, other.Id, "what does it say?")
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}

	for _, match := range answer.Pages {
		if match.Page.DocumentId != other.Id {
			t.Errorf("match leaked from another document: %+v", match.Page)
		}
	}
}

func TestAnswerValidation(t *testing.T) {
	ctx := context.Background()
	f := setupChat(t)
	docID := f.seed(t, ctx)

	if _, err := f.service.Answer(ctx, 0, "question"); !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("expected ErrInvalidDocument, got %v", err)
	}
	if _, err := f.service.Answer(ctx, docID, "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := f.service.Answer(ctx, 999999, "question"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown document, got %v", err)
	}
}

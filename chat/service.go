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

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docufi/ai"
	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
)

const (
	chatPageLimit = 3
	chatFactLimit = 5

	assistantInstructions = "You are a helpful assistant that answers questions about documents."
)

// Answer is a grounded reply with the matches that informed it.
type Answer struct {
	Reply string
	Pages []*core.PageMatch
	Facts []*core.FactMatch
}

// Service answers questions about ingested documents.
type Service struct {
	docs      storage.DocumentRepository
	embedder  ai.Embedder
	completer ai.Completer
	logger    *slog.Logger
}

// NewService creates a chat service.
func NewService(docs storage.DocumentRepository, provider ai.AIProvider) (*Service, error) {
	if docs == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	return &Service{
		docs:      docs,
		embedder:  provider.Embedder(),
		completer: provider.Completer(),
		logger:    slog.Default().With("component", "chat"),
	}, nil
}

// Answer replies to a question about one document. The question is matched
// against the document's pages and facts, and the closest matches ground a
// single completion.
func (s *Service) Answer(ctx context.Context, docID core.ID, message string) (*Answer, error) {
	if docID == 0 {
		return nil, ErrInvalidDocument
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	// Fail fast on unknown documents instead of answering from nothing
	if _, err := s.docs.GetDocument(ctx, docID); err != nil {
		return nil, err
	}

	s.logger.Debug("answering question", "document", docID)

	vector, err := s.embedder.EmbedText(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to embed message: %w", err)
	}

	pages, err := s.docs.FindSimilarPages(ctx, vector, docID, chatPageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search pages: %w", err)
	}

	facts, err := s.docs.FindSimilarFacts(ctx, vector, docID, chatFactLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search facts: %w", err)
	}

	reply, err := s.completer.Complete(ctx, assistantInstructions, buildPrompt(message, pages, facts))
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &Answer{
		Reply: strings.TrimSpace(reply),
		Pages: pages,
		Facts: facts,
	}, nil
}

// buildPrompt grounds the question in page context and extracted facts.
func buildPrompt(message string, pages []*core.PageMatch, facts []*core.FactMatch) string {
	pageParts := make([]string, 0, len(pages))
	for _, match := range pages {
		pageParts = append(pageParts, match.Page.Contents)
	}

	factParts := make([]string, 0, len(facts))
	for _, match := range facts {
		factParts = append(factParts, match.Fact.Label+": "+match.Fact.Value)
	}

	return fmt.Sprintf(`Answer the following question based on the provided context and facts.

Context:
%s

Facts:
%s

Question: %s

Answer:`,
		strings.Join(pageParts, "\n"),
		strings.Join(factParts, "\n"),
		message)
}

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

package research

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
	internalPageLimit = 5
	internalFactLimit = 10

	// noInternalResults is returned when the corpus holds nothing relevant.
	noInternalResults = "No relevant information found in internal documents."
)

// InternalConnector searches the ingested corpus by vector similarity.
type InternalConnector struct {
	embedder ai.Embedder
	docs     storage.DocumentRepository
	logger   *slog.Logger
}

// NewInternalConnector creates a connector over the local document corpus.
func NewInternalConnector(embedder ai.Embedder, docs storage.DocumentRepository) (*InternalConnector, error) {
	if embedder == nil || docs == nil {
		return nil, ErrMissingDependency
	}

	return &InternalConnector{
		embedder: embedder,
		docs:     docs,
		logger:   slog.Default().With("component", "internal-research"),
	}, nil
}

// Research embeds the query and collects the closest pages and facts across
// the whole corpus. Embedding and storage failures are returned as errors
// since internal research is expected to work whenever the store does.
func (c *InternalConnector) Research(ctx context.Context, query string) (*core.ResearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	c.logger.Debug("executing internal search", "query", query)

	vector, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	pages, err := c.docs.FindSimilarPages(ctx, vector, 0, internalPageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search pages: %w", err)
	}

	facts, err := c.docs.FindSimilarFacts(ctx, vector, 0, internalFactLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search facts: %w", err)
	}

	if len(pages) == 0 && len(facts) == 0 {
		return &core.ResearchResult{
			Source:  core.SourceInternal,
			Content: noInternalResults,
		}, nil
	}

	pageLines := make([]string, 0, len(pages))
	for _, match := range pages {
		pageLines = append(pageLines, fmt.Sprintf("[Page %d from doc %d]: %s",
			match.Page.Number, match.Page.DocumentId, match.Page.Contents))
	}

	factLines := make([]string, 0, len(facts))
	for _, match := range facts {
		factLines = append(factLines, fmt.Sprintf("[Fact from doc %d]: %s: %s",
			match.Fact.DocumentId, match.Fact.Label, match.Fact.Value))
	}

	content := fmt.Sprintf(`Relevant Information from Internal Documents:

--- From Document Pages ---
%s

--- From Extracted Facts ---
%s`,
		strings.Join(pageLines, "\n"),
		strings.Join(factLines, "\n"))

	c.logger.Debug("internal search complete",
		"pages", len(pages),
		"facts", len(facts))

	return &core.ResearchResult{
		Source:  core.SourceInternal,
		Content: content,
	}, nil
}

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/docufi/ai"
	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
)

// embeddingProcessor generates embeddings for document pages.
type embeddingProcessor struct {
	docRepository storage.DocumentRepository
	embedder      ai.Embedder
	logger        *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(docRepository storage.DocumentRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if docRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		docRepository: docRepository,
		embedder:      embedder,
		logger:        logger.With("processor", "embeddings"),
	}, nil
}

// process generates embeddings for the specified pages.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing pages for embeddings", "pages", len(ids))

	slices.Sort(ids)

	pages, err := ep.docRepository.GetPages(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving pages", "err", err)
		return err
	}

	texts := make([]string, len(pages))
	for i, page := range pages {
		texts[i] = page.Contents
	}

	ep.logger.Debug("generating embeddings for pages", "pages", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(pages) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(pages), len(embeddings))
	}

	for i := range embeddings {
		pages[i].Vector = embeddings[i]
	}

	_, err = ep.docRepository.UpdatePages(ctx, pages...)
	return err
}

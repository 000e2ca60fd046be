package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/docufi/ai"
	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
)

const (
	factExtractAttempts = 3
	factExtractDelay    = time.Second
)

// factProcessor extracts facts from document pages and stores them with
// embeddings. Fact ids are content-based, so reprocessing a page
// overwrites its facts rather than duplicating them.
type factProcessor struct {
	docRepository storage.DocumentRepository
	embedder      ai.Embedder
	extractor     ai.FactExtractor
	logger        *slog.Logger
}

var _ processor = (*factProcessor)(nil)

// newFactProcessor creates a new fact processor.
func newFactProcessor(
	docRepository storage.DocumentRepository,
	embedder ai.Embedder,
	extractor ai.FactExtractor,
	logger *slog.Logger,
) (processor, error) {
	if docRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, fmt.Errorf("embedder required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("fact extractor required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &factProcessor{
		docRepository: docRepository,
		embedder:      embedder,
		extractor:     extractor,
		logger:        logger.With("processor", "facts"),
	}, nil
}

// process extracts and stores facts for the specified pages.
// A page whose extraction fails after retries is skipped so one bad page
// does not lose the facts of its siblings.
func (fp *factProcessor) process(ctx context.Context, ids ...core.ID) error {
	fp.logger.Info("processing pages for facts", "pages", len(ids))

	slices.Sort(ids)

	pages, err := fp.docRepository.GetPages(ctx, ids...)
	if err != nil {
		fp.logger.Error("error retrieving pages", "err", err)
		return err
	}

	facts := make([]*core.Fact, 0, len(pages)*4)
	for _, page := range pages {
		var extracted []ai.ExtractedFact
		err := RetryWithBackoff(ctx, func() error {
			var exErr error
			extracted, exErr = fp.extractor.ExtractFacts(ctx, page.Contents)
			return exErr
		}, factExtractAttempts, factExtractDelay)
		if err != nil {
			fp.logger.Error("error extracting facts from page",
				"page", page.Id, "number", page.Number, "err", err)
			continue
		}

		for _, ef := range extracted {
			facts = append(facts, &core.Fact{
				DocumentId: page.DocumentId,
				PageNumber: page.Number,
				Label:      ef.Label,
				Value:      ef.Value,
			})
		}
	}

	if len(facts) == 0 {
		fp.logger.Debug("no facts extracted")
		return nil
	}

	// Embed the fact statements so they participate in similarity search
	texts := make([]string, len(facts))
	for i, fact := range facts {
		texts[i] = fact.Label + ": " + fact.Value
	}

	embeddings, err := fp.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		fp.logger.Error("error generating fact embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(facts) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(facts), len(embeddings))
	}

	for i := range embeddings {
		facts[i].Vector = embeddings[i]
	}

	_, err = fp.docRepository.AddFacts(ctx, facts...)
	return err
}

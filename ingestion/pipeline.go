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

package ingestion

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docufi/ai"
	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
)

// Pipeline orchestrates document ingestion and enrichment.
// It manages concurrent processing of page embeddings and fact extraction.
type Pipeline struct {
	docRepository storage.DocumentRepository
	embeddingPool *ants.Pool
	factPool      *ants.Pool
	embeddingProc processor
	factProc      processor
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}
		if p.factPool != nil {
			p.factPool.Release()
		}

		// Create new pools
		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		factPool, err := ants.NewPool(size)
		if err != nil {
			embeddingPool.Release()
			return err
		}

		p.embeddingPool = embeddingPool
		p.factPool = factPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	docRepository storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if docRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	factPool, err := ants.NewPool(poolSize)
	if err != nil {
		embeddingPool.Release()
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		docRepository: docRepository,
		embeddingPool: embeddingPool,
		factPool:      factPool,
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processors after options are applied (so they get final config)
	embeddingProc, err := newEmbeddingProcessor(docRepository, provider.Embedder(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	factProc, err := newFactProcessor(docRepository, provider.Embedder(), provider.FactExtractor(), p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}

	p.embeddingProc = embeddingProc
	p.factProc = factProc

	return p, nil
}

// Ingest stores a document and its page texts, then enriches the pages
// asynchronously with embeddings and extracted facts.
// Errors during async processing are logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, filename string, pageTexts []string) (*core.Document, error) {
	if len(pageTexts) == 0 {
		return nil, ErrNoPages
	}

	document, err := p.docRepository.AddDocument(ctx, filename)
	if err != nil {
		return nil, err
	}

	pages := make([]*core.Page, len(pageTexts))
	for i, text := range pageTexts {
		pages[i] = &core.Page{
			DocumentId: document.Id,
			Number:     i + 1,
			Contents:   text,
		}
	}

	added, err := p.docRepository.AddPages(ctx, pages...)
	if err != nil {
		return nil, err
	}

	// Extract IDs
	ids := make([]core.ID, len(added))
	for i, page := range added {
		ids[i] = page.Id
	}

	// Submit for async processing
	p.embeddingPool.Submit(func() {
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing page embeddings", "err", err)
		}
	})

	p.factPool.Submit(func() {
		if err := p.factProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing facts", "err", err)
		}
	})

	return document, nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
	if p.factPool != nil {
		p.factPool.Release()
	}
}

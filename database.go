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

// Package docufi assembles the document analysis stack: badger-backed
// storage, AI services, document ingestion, market analysis, and chat.
package docufi

import (
	"log/slog"

	"github.com/poiesic/docufi/ai"
	"github.com/poiesic/docufi/ai/openai"
	"github.com/poiesic/docufi/analysis"
	"github.com/poiesic/docufi/chat"
	"github.com/poiesic/docufi/ingestion"
	"github.com/poiesic/docufi/research"
	"github.com/poiesic/docufi/research/web"
	"github.com/poiesic/docufi/storage"
	"github.com/poiesic/docufi/storage/badger"
	"github.com/poiesic/docufi/synthesis"
)

type Database struct {
	backend  *badger.Backend
	taskRepo storage.TaskRepository
	docRepo  storage.DocumentRepository
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the configuration for the OpenAI-compatible AI provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider supplies a pre-built AI provider instead of constructing
// the default OpenAI-compatible one. Used mainly for testing with mocks.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory, without persistence.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	// Create task repository
	taskRepo, err := badger.NewTaskRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create document repository
	docRepo, err := badger.NewDocumentRepository(backend)
	if err != nil {
		taskRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			docRepo.Close()
			taskRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:  backend,
		taskRepo: taskRepo,
		docRepo:  docRepo,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := db.docRepo.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := db.taskRepo.Close(); err != nil {
		db.logger.Error("error closing task repository", "err", err)
		return err
	}

	// Close backend
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) TaskRepository() storage.TaskRepository {
	return db.taskRepo
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.docRepo
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.docRepo, db.provider, opts...)
}

// NewAnalysisService wires the full market analysis stack: internal corpus
// research, external web research through the given search endpoint, and
// section synthesis.
func (db *Database) NewAnalysisService(searchEndpoint string, opts ...analysis.ServiceOption) (*analysis.Service, error) {
	internal, err := research.NewInternalConnector(db.provider.Embedder(), db.docRepo)
	if err != nil {
		return nil, err
	}

	searchClient, err := web.NewSearchClient(searchEndpoint)
	if err != nil {
		return nil, err
	}

	external, err := research.NewExternalConnector(searchClient, web.NewFetcher(), db.provider.Completer())
	if err != nil {
		return nil, err
	}

	synthesizer, err := synthesis.NewSynthesizer(db.provider.Completer())
	if err != nil {
		return nil, err
	}

	orchestrator, err := analysis.NewOrchestrator(db.taskRepo, internal, external, synthesizer)
	if err != nil {
		return nil, err
	}

	return analysis.NewService(db.taskRepo, orchestrator, opts...)
}

func (db *Database) NewNotifier(opts ...analysis.NotifierOption) (*analysis.Notifier, error) {
	return analysis.NewNotifier(db.taskRepo, opts...)
}

func (db *Database) NewChatService() (*chat.Service, error) {
	return chat.NewService(db.docRepo, db.provider)
}

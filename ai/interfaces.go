package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer produces a single text completion for a prompt.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete generates text from a system instruction and a user prompt.
	// Returns an error if the completion call fails; callers decide whether
	// that failure is fatal to their pipeline.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// FactExtractor extracts labeled fact statements from text.
// Implementations must be thread-safe for concurrent use.
type FactExtractor interface {
	// ExtractFacts analyzes text and extracts key facts as label/value pairs.
	// Returns an empty slice if no facts are found.
	// Returns an error if fact extraction fails.
	ExtractFacts(ctx context.Context, text string) ([]ExtractedFact, error)
}

// ExtractedFact is one fact statement identified in text.
type ExtractedFact struct {
	// Label names the fact, e.g. "market size" or "founding year".
	Label string

	// Value is the fact's content, e.g. "$1 Billion" or "2009".
	Value string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder, Completer, and FactExtractor
// instances, ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Completer returns the text completion service.
	// The returned Completer is safe for concurrent use.
	Completer() Completer

	// FactExtractor returns the fact extraction service.
	// The returned FactExtractor is safe for concurrent use.
	FactExtractor() FactExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

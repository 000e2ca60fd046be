package mock

import (
	"context"
	"strings"

	"github.com/poiesic/docufi/ai"
)

// MockFactExtractor is a test double for ai.FactExtractor.
// It allows custom behavior injection via function fields.
type MockFactExtractor struct {
	// ExtractFactsFunc is called by ExtractFacts if set.
	// If nil, uses default simple sentence extraction.
	ExtractFactsFunc func(ctx context.Context, text string) ([]ai.ExtractedFact, error)

	callCount int
}

// NewMockFactExtractor creates a mock fact extractor with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockExtractor().
func NewMockFactExtractor() *MockFactExtractor {
	return &MockFactExtractor{}
}

// ExtractFacts derives simple mock facts from text.
// Default behavior: each non-empty line becomes a fact, labeled by its
// first word with the rest of the line as the value.
func (m *MockFactExtractor) ExtractFacts(ctx context.Context, text string) ([]ai.ExtractedFact, error) {
	m.callCount++

	if m.ExtractFactsFunc != nil {
		return m.ExtractFactsFunc(ctx, text)
	}

	facts := make([]ai.ExtractedFact, 0, 5)
	for _, line := range strings.Split(text, "\n") {
		if len(facts) >= 5 { // Limit to 5 facts
			break
		}

		words := strings.Fields(line)
		if len(words) < 2 {
			continue
		}

		facts = append(facts, ai.ExtractedFact{
			Label: strings.ToLower(words[0]),
			Value: strings.Join(words[1:], " "),
		})
	}

	return facts, nil
}

// CallCount returns the number of times ExtractFacts was called.
func (m *MockFactExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockFactExtractor) Reset() {
	m.callCount = 0
	m.ExtractFactsFunc = nil
}

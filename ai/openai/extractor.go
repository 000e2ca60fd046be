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

package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/docufi/ai"
	"github.com/tmc/langchaingo/llms"
)

// FactExtractor implements ai.FactExtractor using OpenAI-compatible chat APIs.
// It shares the completer's underlying client and model.
type FactExtractor struct {
	client llms.Model
	logger *slog.Logger
}

// fact is an internal type used for JSON unmarshaling.
// It matches the structure expected by the LLM.
type fact struct {
	Label string `json:"label"`
	Value string `json:"value_text"`
}

// extraction is the wrapper structure for the LLM's JSON response.
type extraction struct {
	Facts []fact `json:"facts"`
}

// newFactExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance. The extractor rides on the
// completer's model rather than holding its own client.
func newFactExtractor(completer *Completer) *FactExtractor {
	return &FactExtractor{
		client: completer.client,
		logger: slog.Default().With("component", "openai-extractor"),
	}
}

// NewFactExtractor creates a new fact extractor using the provided configuration.
//
// Returns ai.FactExtractor interface to enforce abstraction.
func NewFactExtractor(config *ai.Config) (ai.FactExtractor, error) {
	completer, err := newCompleter(config)
	if err != nil {
		return nil, err
	}
	return newFactExtractor(completer), nil
}

// ExtractFacts extracts key facts from text using an LLM.
// Malformed JSON responses are retried up to 3 times before giving up.
func (e *FactExtractor) ExtractFacts(ctx context.Context, text string) ([]ai.ExtractedFact, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(factExtractionPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result extraction
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return []ai.ExtractedFact{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extraction response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extraction response after retries", "err", lastErr)
		return nil, lastErr
	}

	extracted := make([]ai.ExtractedFact, 0, len(result.Facts))
	for _, f := range result.Facts {
		label := strings.TrimSpace(f.Label)
		value := strings.TrimSpace(f.Value)
		if label == "" || value == "" {
			continue
		}
		extracted = append(extracted, ai.ExtractedFact{
			Label: label,
			Value: value,
		})
	}

	e.logger.Debug("extracted facts",
		"total", len(result.Facts),
		"kept", len(extracted))

	return extracted, nil
}

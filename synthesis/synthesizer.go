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

package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docufi/ai"
)

// Synthesizer writes report sections from combined research material.
type Synthesizer struct {
	completer ai.Completer
	logger    *slog.Logger
}

// NewSynthesizer creates a synthesizer backed by the given completer.
func NewSynthesizer(completer ai.Completer) (*Synthesizer, error) {
	if completer == nil {
		return nil, ErrMissingCompleter
	}

	return &Synthesizer{
		completer: completer,
		logger:    slog.Default().With("component", "synthesizer"),
	}, nil
}

// SynthesizeSection writes one section from the research context.
// Completion errors propagate to the caller; a report is never compiled
// from partial sections.
func (s *Synthesizer) SynthesizeSection(ctx context.Context, section Section, researchContext string) (string, error) {
	if strings.TrimSpace(researchContext) == "" {
		return "", ErrEmptyContext
	}

	s.logger.Debug("synthesizing section", "section", section.Name)

	prompt := fmt.Sprintf("Analyze the following research material and write the %q section of a market analysis report.\n\nResearch material:\n%s",
		section.Title, researchContext)

	text, err := s.completer.Complete(ctx, section.Instructions, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to synthesize section %s: %w", section.Name, err)
	}

	return strings.TrimSpace(text), nil
}

// SynthesizeAll writes every section in ReportSections, in order.
// The returned slice is parallel to ReportSections. The first section
// error aborts the whole pass.
func (s *Synthesizer) SynthesizeAll(ctx context.Context, researchContext string) ([]string, error) {
	texts := make([]string, 0, len(ReportSections))
	for _, section := range ReportSections {
		text, err := s.SynthesizeSection(ctx, section, researchContext)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// CompileReport assembles the final Markdown report from section texts.
// The texts slice must be parallel to ReportSections.
func CompileReport(query string, sectionTexts []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Market Analysis for %q\n", query)
	for i, section := range ReportSections {
		text := ""
		if i < len(sectionTexts) {
			text = sectionTexts[i]
		}
		fmt.Fprintf(&b, "\n## %s\n%s\n", section.Title, text)
	}
	return b.String()
}

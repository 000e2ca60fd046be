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
)

// SearchResult is a single hit from a web search.
type SearchResult struct {
	Url   string
	Title string
}

// SearchClient performs web searches.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// Fetcher retrieves the readable text of a web page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

const (
	externalResultLimit = 5

	// noExternalResults is returned when the search yields nothing.
	noExternalResults = "No relevant external sources found."

	// noProcessableResults is returned when every result failed to fetch
	// or summarize.
	noProcessableResults = "Could not process any of the found external sources."

	summarizerInstructions = "You are an expert at summarizing web content. Extract the key information relevant to the user's original query."
)

// credibleDomains restricts external searches to established market
// research and business news publishers.
var credibleDomains = []string{
	"gartner.com", "idc.com", "forrester.com", "bloomberg.com", "reuters.com",
	"worldbank.org", "statista.com", "forbes.com", "mckinsey.com",
}

// ExternalConnector researches a query on the public web. Results are
// fetched and summarized individually; a result that fails either step is
// skipped rather than failing the whole research pass.
type ExternalConnector struct {
	search    SearchClient
	fetcher   Fetcher
	completer ai.Completer
	logger    *slog.Logger
}

// NewExternalConnector creates a connector over a web search endpoint.
func NewExternalConnector(search SearchClient, fetcher Fetcher, completer ai.Completer) (*ExternalConnector, error) {
	if search == nil || fetcher == nil || completer == nil {
		return nil, ErrMissingDependency
	}

	return &ExternalConnector{
		search:    search,
		fetcher:   fetcher,
		completer: completer,
		logger:    slog.Default().With("component", "external-research"),
	}, nil
}

// buildSiteQuery restricts the query to the credible domain allow-list.
func buildSiteQuery(query string) string {
	sites := make([]string, 0, len(credibleDomains))
	for _, domain := range credibleDomains {
		sites = append(sites, "site:"+domain)
	}
	return fmt.Sprintf("%q (%s)", query, strings.Join(sites, " OR "))
}

// Research searches credible sources, fetches the top results, and returns
// their LLM summaries. Per-result failures are logged and skipped. A failed
// search or an empty result set produces a sentinel message, not an error.
func (c *ExternalConnector) Research(ctx context.Context, query string) (*core.ResearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	c.logger.Debug("executing external search", "query", query)

	results, err := c.search.Search(ctx, buildSiteQuery(query), externalResultLimit)
	if err != nil {
		c.logger.Warn("external search failed", "err", err)
		results = nil
	}

	if len(results) == 0 {
		return &core.ResearchResult{
			Source:  core.SourceExternal,
			Content: noExternalResults,
		}, nil
	}

	summaries := make([]string, 0, len(results))
	for _, result := range results {
		contents, err := c.fetcher.Fetch(ctx, result.Url)
		if err != nil {
			c.logger.Warn("failed to fetch result", "url", result.Url, "err", err)
			continue
		}
		if strings.TrimSpace(contents) == "" {
			continue
		}

		prompt := fmt.Sprintf("Original Query: %s\n\nContent:\n%s", query, contents)
		summary, err := c.completer.Complete(ctx, summarizerInstructions, prompt)
		if err != nil {
			c.logger.Warn("failed to summarize result", "url", result.Url, "err", err)
			continue
		}

		summaries = append(summaries, fmt.Sprintf("Source: %s\nSummary: %s", result.Url, summary))
	}

	if len(summaries) == 0 {
		return &core.ResearchResult{
			Source:  core.SourceExternal,
			Content: noProcessableResults,
		}, nil
	}

	c.logger.Debug("external search complete",
		"results", len(results),
		"summaries", len(summaries))

	return &core.ResearchResult{
		Source:  core.SourceExternal,
		Content: strings.Join(summaries, "\n\n---\n\n"),
	}, nil
}

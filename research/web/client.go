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

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/poiesic/docufi/research"
)

const defaultSearchTimeout = 15 * time.Second

// SearchClient queries a SearxNG-compatible JSON search endpoint.
type SearchClient struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// SearchClientOption configures a SearchClient.
type SearchClientOption func(*SearchClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) SearchClientOption {
	return func(c *SearchClient) {
		c.client = client
	}
}

// NewSearchClient creates a search client against the given endpoint,
// e.g. "http://localhost:8888".
func NewSearchClient(endpoint string, opts ...SearchClientOption) (*SearchClient, error) {
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}

	c := &SearchClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultSearchTimeout},
		logger:   slog.Default().With("component", "web-search"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// searchResponse mirrors the SearxNG JSON result envelope.
type searchResponse struct {
	Results []struct {
		Url   string `json:"url"`
		Title string `json:"title"`
	} `json:"results"`
}

// Search runs the query and returns at most maxResults hits.
func (c *SearchClient) Search(ctx context.Context, query string, maxResults int) ([]research.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("max_results", strconv.Itoa(maxResults))

	requestURL := c.endpoint + "/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("executing web search", "query", query, "max_results", maxResults)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]research.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if len(results) >= maxResults {
			break
		}
		if r.Url == "" {
			continue
		}
		results = append(results, research.SearchResult{Url: r.Url, Title: r.Title})
	}

	c.logger.Debug("web search complete", "results", len(results))
	return results, nil
}

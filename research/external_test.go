package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/docufi/ai/mock"
	"github.com/poiesic/docufi/core"
)

// fakeSearchClient returns canned results or a canned error.
type fakeSearchClient struct {
	results   []SearchResult
	err       error
	lastQuery string
}

func (f *fakeSearchClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// fakeFetcher maps URLs to page text; missing URLs fail.
type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	contents, ok := f.pages[url]
	if !ok {
		return "", errors.New("fetch failed")
	}
	return contents, nil
}

func newExternal(t *testing.T, search SearchClient, fetcher Fetcher, completer *mock.MockCompleter) *ExternalConnector {
	t.Helper()
	connector, err := NewExternalConnector(search, fetcher, completer)
	if err != nil {
		t.Fatalf("failed to create connector: %v", err)
	}
	return connector
}

func TestExternalResearch(t *testing.T) {
	ctx := context.Background()
	search := &fakeSearchClient{results: []SearchResult{
		{Url: "https://www.gartner.com/report1", Title: "Report 1"},
		{Url: "https://www.idc.com/report2", Title: "Report 2"},
	}}
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://www.gartner.com/report1": "widget market report one",
		"https://www.idc.com/report2":     "widget market report two",
	}}
	completer := mock.NewMockCompleter()
	completer.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
		return "summary of content", nil
	}

	connector := newExternal(t, search, fetcher, completer)
	result, err := connector.Research(ctx, "widget market")
	if err != nil {
		t.Fatalf("research failed: %v", err)
	}
	if result.Source != core.SourceExternal {
		t.Errorf("expected external source, got %v", result.Source)
	}

	if !strings.Contains(result.Content, "Source: https://www.gartner.com/report1\nSummary: summary of content") {
		t.Errorf("missing first summary block:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "\n\n---\n\n") {
		t.Errorf("summaries not joined with separator:\n%s", result.Content)
	}

	// Search query must carry the credible-domain restriction.
	if !strings.Contains(search.lastQuery, `"widget market"`) {
		t.Errorf("query text missing from search: %q", search.lastQuery)
	}
	if !strings.Contains(search.lastQuery, "site:gartner.com OR site:idc.com") {
		t.Errorf("site restriction missing from search: %q", search.lastQuery)
	}
}

func TestExternalResearchPartialFailure(t *testing.T) {
	ctx := context.Background()
	search := &fakeSearchClient{results: []SearchResult{
		{Url: "https://www.gartner.com/good"},
		{Url: "https://www.idc.com/broken"},
	}}
	fetcher := &fakeFetcher{pages: map[string]string{
		"https://www.gartner.com/good": "usable content",
	}}
	completer := mock.NewMockCompleter()

	connector := newExternal(t, search, fetcher, completer)
	result, err := connector.Research(ctx, "widget market")
	if err != nil {
		t.Fatalf("research failed: %v", err)
	}

	if !strings.Contains(result.Content, "https://www.gartner.com/good") {
		t.Errorf("surviving result missing:\n%s", result.Content)
	}
	if strings.Contains(result.Content, "broken") {
		t.Errorf("failed result should be skipped:\n%s", result.Content)
	}
}

func TestExternalResearchNoResults(t *testing.T) {
	ctx := context.Background()
	completer := mock.NewMockCompleter()

	t.Run("empty result set", func(t *testing.T) {
		connector := newExternal(t, &fakeSearchClient{}, &fakeFetcher{}, completer)
		result, err := connector.Research(ctx, "widget market")
		if err != nil {
			t.Fatalf("research failed: %v", err)
		}
		if result.Content != "No relevant external sources found." {
			t.Errorf("expected no-results sentinel, got %q", result.Content)
		}
	})

	t.Run("search error", func(t *testing.T) {
		search := &fakeSearchClient{err: errors.New("search endpoint down")}
		connector := newExternal(t, search, &fakeFetcher{}, completer)
		result, err := connector.Research(ctx, "widget market")
		if err != nil {
			t.Fatalf("search errors should degrade, not fail: %v", err)
		}
		if result.Content != "No relevant external sources found." {
			t.Errorf("expected no-results sentinel, got %q", result.Content)
		}
	})

	t.Run("all results fail", func(t *testing.T) {
		search := &fakeSearchClient{results: []SearchResult{{Url: "https://www.forbes.com/gone"}}}
		connector := newExternal(t, search, &fakeFetcher{}, completer)
		result, err := connector.Research(ctx, "widget market")
		if err != nil {
			t.Fatalf("research failed: %v", err)
		}
		if result.Content != "Could not process any of the found external sources." {
			t.Errorf("expected unprocessable sentinel, got %q", result.Content)
		}
	})
}

package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "widget market", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"url":"https://www.gartner.com/a","title":"Report A"},
			{"url":"https://www.idc.com/b","title":"Report B"},
			{"url":"","title":"no url"},
			{"url":"https://www.forbes.com/c","title":"Report C"}
		]}`))
	}))
	defer server.Close()

	client, err := NewSearchClient(server.URL)
	require.NoError(t, err)

	results, err := client.Search(context.Background(), "widget market", 2)
	require.NoError(t, err)

	// Empty URLs are dropped, the rest truncated to maxResults.
	require.Len(t, results, 2)
	assert.Equal(t, "https://www.gartner.com/a", results[0].Url)
	assert.Equal(t, "Report A", results[0].Title)
	assert.Equal(t, "https://www.idc.com/b", results[1].Url)
}

func TestSearchClientErrors(t *testing.T) {
	t.Run("empty endpoint", func(t *testing.T) {
		_, err := NewSearchClient("")
		assert.ErrorIs(t, err, ErrEmptyEndpoint)
	})

	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client, err := NewSearchClient(server.URL)
		require.NoError(t, err)

		_, err = client.Search(context.Background(), "query", 5)
		assert.ErrorIs(t, err, ErrSearchFailed)
	})

	t.Run("malformed response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer server.Close()

		client, err := NewSearchClient(server.URL)
		require.NoError(t, err)

		_, err = client.Search(context.Background(), "query", 5)
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrSearchFailed))
	})
}

func TestFetcher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Report</title></head>
			<body><h1>Widget Market</h1><p>The market reached $10B in 2024.</p></body></html>`))
	}))
	defer server.Close()

	fetcher := NewFetcher()
	text, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.True(t, strings.Contains(text, "The market reached $10B in 2024."))
	assert.False(t, strings.Contains(text, "<p>"))
}

func TestFetcherStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher()
	_, err := fetcher.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

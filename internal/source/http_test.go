package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autosearch/internal/domain"
)

func TestHTTPExecutorQueriesServer(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/suggestions", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		_ = json.NewEncoder(w).Encode(SuggestionsResponse{
			Query:       gotQuery,
			Suggestions: []domain.Suggestion{{ID: "1", Text: "hello world"}},
		})
	}))
	defer srv.Close()

	e, err := NewHTTPExecutor(srv.URL+"/api/", nil)
	require.NoError(t, err)

	got, err := e.Query(context.Background(), "hello w")
	require.NoError(t, err)
	assert.Equal(t, "hello w", gotQuery)
	assert.Equal(t, []string{"1"}, ids(got))
}

func TestHTTPExecutorStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e, err := NewHTTPExecutor(srv.URL, nil)
	require.NoError(t, err)
	_, err = e.Query(context.Background(), "x")
	assert.ErrorIs(t, err, ErrStatus)
}

func TestHTTPExecutorCancel(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	e, err := NewHTTPExecutor(srv.URL, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Query(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPExecutorValidatesURL(t *testing.T) {
	_, err := NewHTTPExecutor("ftp://example.com", nil)
	assert.Error(t, err)
	_, err = NewHTTPExecutor("://bad", nil)
	assert.Error(t, err)
}

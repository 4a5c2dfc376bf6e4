package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"autosearch/internal/domain"
	"autosearch/internal/query"
)

// ErrStatus is returned when the server answers with a non-200 status
var ErrStatus = errors.New("unexpected status")

// DefaultMaxInFlight bounds concurrent requests of one HTTPExecutor
const DefaultMaxInFlight = 4

// SuggestionsResponse is the body of GET /suggestions
type SuggestionsResponse struct {
	Query       string              `json:"query"`
	Suggestions []domain.Suggestion `json:"suggestions"`
}

// HTTPExecutor queries a suggestion server such as the one started by
// `autosearch serve`
type HTTPExecutor struct {
	base   *url.URL
	client *http.Client
	sem    *semaphore.Weighted
}

var _ query.Executor = (*HTTPExecutor)(nil)

// NewHTTPExecutor creates an executor for the server at baseURL. A nil client
// uses one with a 10 second timeout.
func NewHTTPExecutor(baseURL string, client *http.Client) (*HTTPExecutor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid url %q: scheme must be http or https", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPExecutor{
		base:   u,
		client: client,
		sem:    semaphore.NewWeighted(DefaultMaxInFlight),
	}, nil
}

func (e *HTTPExecutor) Query(ctx context.Context, text string) ([]domain.Suggestion, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)

	u := *e.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/suggestions"
	u.RawQuery = url.Values{"q": {text}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", text, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query %q: %w: %s", text, ErrStatus, resp.Status)
	}

	var body SuggestionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("query %q: decode response: %w", text, err)
	}
	return body.Suggestions, nil
}

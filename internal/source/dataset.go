// Package source provides Query Executors for the autocomplete widget: an
// in-memory dataset that can be loaded from a file and hot reloaded, git
// repository discovery, an HTTP client for a remote suggestion server and a
// wrapper that injects latency and failures.
package source

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"autosearch/internal/domain"
	"autosearch/internal/query"
)

// Dataset answers queries from a list of suggestions held in memory.
// A suggestion matches when its text, or any word in it, starts with the
// query, ignoring case. Matches keep dataset order.
type Dataset struct {
	mu    sync.RWMutex
	items []domain.Suggestion
	group singleflight.Group
}

var _ query.Executor = (*Dataset)(nil)

// NewDataset creates a dataset holding items
func NewDataset(items []domain.Suggestion) *Dataset {
	d := &Dataset{}
	d.Replace(items)
	return d
}

// Replace swaps the dataset contents
func (d *Dataset) Replace(items []domain.Suggestion) {
	cp := make([]domain.Suggestion, len(items))
	copy(cp, items)

	d.mu.Lock()
	d.items = cp
	d.mu.Unlock()
}

// Len returns the number of suggestions held
func (d *Dataset) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.items)
}

// Query returns the matching suggestions. Concurrent calls for the same text
// share one scan.
func (d *Dataset) Query(ctx context.Context, text string) ([]domain.Suggestion, error) {
	needle := strings.ToLower(strings.TrimSpace(text))
	ch := d.group.DoChan(needle, func() (interface{}, error) {
		return d.match(needle), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		shared := res.Val.([]domain.Suggestion)
		out := make([]domain.Suggestion, len(shared))
		copy(out, shared)
		return out, nil
	}
}

func (d *Dataset) match(needle string) []domain.Suggestion {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := []domain.Suggestion{}
	for _, s := range d.items {
		if matches(strings.ToLower(s.Text), needle) {
			out = append(out, s)
		}
	}
	return out
}

func matches(text, needle string) bool {
	if strings.HasPrefix(text, needle) {
		return true
	}
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, needle) {
			return true
		}
	}
	return false
}

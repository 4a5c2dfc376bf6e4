package cli

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"autosearch/internal/config"
	"autosearch/internal/domain"
	"autosearch/internal/eventbus"
	"autosearch/internal/query"
	"autosearch/internal/source"
)

// executor is the configured query source plus what it needs torn down
type executor struct {
	query.Executor
	description string
	closers     []func() error
}

// Description names the source for the UI header
func (e *executor) Description() string {
	return e.description
}

// Close stops background work such as file watching
func (e *executor) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			log.Printf("Error closing source: %v", err)
		}
	}
}

// buildExecutor creates the executor selected by cfg.Source
func buildExecutor(ctx context.Context, cfg *config.Config, bus eventbus.EventBus, logger *log.Logger) (*executor, error) {
	src := cfg.Source
	e := &executor{}

	switch src.Kind {
	case config.SourceMemory:
		if src.Path == "" {
			e.Executor = source.NewDataset(sampleSuggestions())
			e.description = fmt.Sprintf("built-in sample (%d countries)", len(sampleSuggestions()))
			break
		}
		items, err := source.LoadFile(src.Path)
		if err != nil {
			return nil, err
		}
		dataset := source.NewDataset(items)
		e.Executor = dataset
		e.description = fmt.Sprintf("%s (%d suggestions)", src.Path, len(items))

		if src.Watch {
			w, err := source.NewWatcher(src.Path, dataset, bus, logger)
			if err != nil {
				return nil, err
			}
			if err := w.Start(ctx); err != nil {
				_ = w.Stop()
				return nil, err
			}
			e.closers = append(e.closers, w.Stop)
			e.description += ", watching"
		}

	case config.SourceRepos:
		scanner, err := source.NewRepoScanner(bus, logger, src.Exclude)
		if err != nil {
			return nil, err
		}
		items, err := scanner.Scan(ctx, src.Path)
		if err != nil {
			return nil, err
		}
		e.Executor = source.NewDataset(items)
		abs, _ := filepath.Abs(src.Path)
		e.description = fmt.Sprintf("git repositories under %s (%d found)", abs, len(items))

	case config.SourceHTTP:
		client, err := source.NewHTTPExecutor(src.URL, nil)
		if err != nil {
			return nil, err
		}
		e.Executor = client
		e.description = src.URL

	default:
		return nil, fmt.Errorf("%w: unknown source.kind %q", config.ErrInvalidConfig, src.Kind)
	}

	if src.Latency.Duration > 0 || src.Jitter.Duration > 0 || src.FailureRate > 0 {
		e.Executor = source.NewSimulated(e.Executor, src.Latency.Duration, src.Jitter.Duration, src.FailureRate)
		e.description += fmt.Sprintf(", latency %s±%s, %.0f%% failures", src.Latency.Duration, src.Jitter.Duration, src.FailureRate*100)
	}
	return e, nil
}

// runQuery runs one query outside of the widget, applying the same checks
// the widget applies to results
func runQuery(ctx context.Context, exec query.Executor, text string, limit int) ([]domain.Suggestion, error) {
	items, err := exec.Query(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateSuggestions(items); err != nil {
		return nil, fmt.Errorf("malformed result: %w", err)
	}
	if limit <= 0 {
		limit = query.DefaultLimit
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

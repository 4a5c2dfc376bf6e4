package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	"autosearch/internal/domain"
	"autosearch/internal/eventbus"
)

// DefaultMaxDepth bounds how far below a root repositories are searched for
const DefaultMaxDepth = 5

// branchLookups bounds concurrent git processes
const branchLookups = 8

// Repo is the Data of a suggestion produced by Scan
type Repo struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Branch string `json:"branch,omitempty"` // empty when git could not tell
}

// RepoScanner finds git repositories in the filesystem
type RepoScanner struct {
	bus      eventbus.EventBus
	logger   *log.Logger
	exclude  []string
	maxDepth int
}

// NewRepoScanner creates a scanner skipping directories matched by the
// doublestar patterns in exclude, relative to each root
func NewRepoScanner(bus eventbus.EventBus, logger *log.Logger, exclude []string) (*RepoScanner, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("bad exclude pattern %q", pattern)
		}
	}
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RepoScanner{
		bus:      bus,
		logger:   logger,
		exclude:  exclude,
		maxDepth: DefaultMaxDepth,
	}, nil
}

// Scan walks roots in parallel and returns one suggestion per repository,
// sorted by path. The id is the repository path, the text its name.
func (s *RepoScanner) Scan(ctx context.Context, roots ...string) ([]domain.Suggestion, error) {
	var (
		mu    sync.Mutex
		repos []Repo
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, root := range roots {
		g.Go(func() error {
			found, err := s.scanDirectory(gctx, root)
			if err != nil {
				return err
			}
			mu.Lock()
			repos = append(repos, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].Path < repos[j].Path })
	s.lookupBranches(ctx, repos)

	items := make([]domain.Suggestion, 0, len(repos))
	seen := make(map[string]bool, len(repos))
	for _, r := range repos {
		// Overlapping roots report the same repository twice
		if seen[r.Path] {
			continue
		}
		seen[r.Path] = true
		items = append(items, domain.Suggestion{ID: r.Path, Text: r.Name, Data: r})
	}
	return items, nil
}

// lookupBranches fills in Branch where git can tell it. Failures leave the
// field empty.
func (s *RepoScanner) lookupBranches(ctx context.Context, repos []Repo) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(branchLookups)
	for i := range repos {
		g.Go(func() error {
			branch, err := currentBranch(ctx, repos[i].Path)
			if err != nil {
				s.logger.Printf("Could not read branch of %s: %v", repos[i].Path, err)
				return nil
			}
			repos[i].Branch = branch
			return nil
		})
	}
	_ = g.Wait()
}

// scanDirectory recursively scans a directory for git repositories
func (s *RepoScanner) scanDirectory(ctx context.Context, root string) ([]Repo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	var repos []Repo
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if path == root {
				return err
			}
			s.logger.Printf("Error walking path %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		if relPath != "." && strings.Count(relPath, string(filepath.Separator)) > s.maxDepth {
			return filepath.SkipDir
		}

		if d.Name() == ".git" {
			repoPath := filepath.Dir(path)
			repos = append(repos, Repo{Name: filepath.Base(repoPath), Path: repoPath})
			return filepath.SkipDir
		}

		if path != root && (strings.HasPrefix(d.Name(), ".") || s.excluded(relPath)) {
			return filepath.SkipDir
		}
		return nil
	})

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Printf("Error scanning directory %s: %v", root, err)
			s.bus.Publish(eventbus.ErrorEvent{
				Message: fmt.Sprintf("Failed to scan %s", root),
				Err:     err,
			})
		}
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	s.bus.Publish(eventbus.ScanCompletedEvent{Root: root, ReposFound: len(repos)})
	return repos, nil
}

func (s *RepoScanner) excluded(relPath string) bool {
	rel := filepath.ToSlash(relPath)
	for _, pattern := range s.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

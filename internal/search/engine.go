// Package search implements the hybrid query engine: a token-based
// full-text pass followed by a substring fallback, merged and deduplicated
// with per-source contribution metrics.
package search

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/starford/raido/internal/index"
	"github.com/starford/raido/internal/models"
)

// Source records which query path produced a result.
type Source int

const (
	SourceFullText Source = iota
	SourceFallback
	SourceBoth
)

func (s Source) String() string {
	switch s {
	case SourceFullText:
		return "fts"
	case SourceFallback:
		return "fallback"
	case SourceBoth:
		return "both"
	}
	return "unknown"
}

// Options is the immutable per-call configuration of a search.
type Options struct {
	Limit         int
	FullText      bool // token-based pass enabled
	CaseSensitive bool // fallback only; token matching is always case-insensitive
	Regex         bool // route solely through the regex fallback
}

// Result is one search hit with its source attribution.
type Result struct {
	Entry  models.Entry
	Source Source
}

// Metrics describes how a search was answered.
type Metrics struct {
	TotalElapsed    time.Duration
	FullTextElapsed time.Duration
	FullTextCount   int
	FallbackCount   int
	TotalCount      int
	FullTextPercent float64
	Files           int
	Dirs            int
	Folders         map[string]int // parent folder -> result count, for display grouping
}

// Response is the ordered result list plus its metrics.
type Response struct {
	Results []Result
	Metrics Metrics
}

// Group is one display bucket: a parent folder and its sorted children.
type Group struct {
	Folder  string
	Entries []models.Entry
}

// Engine answers queries against a path store.
type Engine struct {
	store  index.Store
	logger *slog.Logger
}

// New creates an Engine.
func New(store index.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger}
}

// Search executes the hybrid pipeline. The full-text pass runs first when
// enabled and available; if it does not fill the limit, the substring
// fallback tops the list up with entries not already found, deduplicated by
// path. Full-text hits keep their rank order and fallback hits are appended
// in store order. An empty query returns an empty response without touching
// either store. Regex mode routes solely through the fallback and reports an
// invalid pattern before any query runs.
func (e *Engine) Search(query string, opts Options) (Response, error) {
	query = strings.TrimSpace(query)
	if query == "" || opts.Limit <= 0 {
		return Response{Metrics: Metrics{Folders: map[string]int{}}}, nil
	}

	start := time.Now()

	if opts.Regex {
		entries, err := e.store.QueryFallbackRegex(query, opts.Limit, opts.CaseSensitive)
		if err != nil {
			return Response{}, err
		}
		resp := Response{Results: make([]Result, 0, len(entries))}
		for _, entry := range entries {
			resp.Results = append(resp.Results, Result{Entry: entry, Source: SourceFallback})
		}
		resp.Metrics = e.finishMetrics(resp.Results, 0, 0, start)
		return resp, nil
	}

	var (
		results  []Result
		seen     = make(map[string]int) // path -> index into results
		ftsCount int
		ftsTime  time.Duration
	)

	if opts.FullText && e.store.FullTextAvailable() {
		ftsStart := time.Now()
		hits, err := e.store.QueryTokens(query, opts.Limit)
		ftsTime = time.Since(ftsStart)
		if err != nil {
			// Degrade to the fallback rather than failing the search.
			e.logger.Warn("search: full-text query failed", slog.String("error", err.Error()))
		}
		for _, hit := range hits {
			if _, dup := seen[hit.Entry.Path]; dup {
				continue
			}
			seen[hit.Entry.Path] = len(results)
			results = append(results, Result{Entry: hit.Entry, Source: SourceFullText})
		}
		ftsCount = len(results)
	}

	if len(results) < opts.Limit {
		entries, err := e.store.QueryFallback(query, opts.Limit, opts.CaseSensitive)
		if err != nil {
			return Response{}, err
		}
		for _, entry := range entries {
			if i, dup := seen[entry.Path]; dup {
				results[i].Source = SourceBoth
				continue
			}
			seen[entry.Path] = len(results)
			results = append(results, Result{Entry: entry, Source: SourceFallback})
			if len(results) >= opts.Limit {
				break
			}
		}
	}

	return Response{
		Results: results,
		Metrics: e.finishMetrics(results, ftsCount, ftsTime, start),
	}, nil
}

func (e *Engine) finishMetrics(results []Result, ftsCount int, ftsTime time.Duration, start time.Time) Metrics {
	m := Metrics{
		FullTextElapsed: ftsTime,
		FullTextCount:   ftsCount,
		FallbackCount:   len(results) - ftsCount,
		TotalCount:      len(results),
		Folders:         make(map[string]int),
	}
	for _, r := range results {
		m.Folders[r.Entry.Parent]++
		if r.Entry.IsDir {
			m.Dirs++
		} else {
			m.Files++
		}
	}
	if m.TotalCount > 0 {
		m.FullTextPercent = float64(ftsCount) / float64(m.TotalCount) * 100
	}
	m.TotalElapsed = time.Since(start)
	return m
}

// Grouped buckets the results by parent folder for tree-style display:
// folders sorted ascending, children sorted within each folder.
func (r Response) Grouped() []Group {
	byFolder := make(map[string][]models.Entry)
	for _, res := range r.Results {
		byFolder[res.Entry.Parent] = append(byFolder[res.Entry.Parent], res.Entry)
	}
	folders := make([]string, 0, len(byFolder))
	for f := range byFolder {
		folders = append(folders, f)
	}
	sort.Strings(folders)

	groups := make([]Group, 0, len(folders))
	for _, f := range folders {
		children := byFolder[f]
		sort.Slice(children, func(i, j int) bool { return children[i].Path < children[j].Path })
		groups = append(groups, Group{Folder: f, Entries: children})
	}
	return groups
}

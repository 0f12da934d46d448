// Package search implements continuation-based pagination over the Media
// API: results are anchored on the last image's upload time, deduplicated
// by URI, and walked further when a cost filter hides a whole page.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/JaimeStill/kahuna/internal/gateway"
	"github.com/JaimeStill/kahuna/internal/images"
	"github.com/JaimeStill/kahuna/internal/metrics"
)

// Searcher runs one Media API search.
type Searcher interface {
	Search(ctx context.Context, query string, opts gateway.SearchOptions) ([]images.Image, error)
}

// Result is an ordered, URI-unique result set.
type Result struct {
	Images    []images.Image
	Exhausted bool
}

// System runs the first page and subsequent pages of a search.
type System interface {
	// Start fetches the first page for sc. Exhausted is set when it is empty.
	Start(ctx context.Context, sc Context) (Result, error)

	// FetchMore extends current with the next page(s). current is never
	// modified; on error the caller keeps its previous set.
	FetchMore(ctx context.Context, sc Context, current []images.Image) (Result, error)
}

type engine struct {
	searcher Searcher
	pageSize int
	logger   *slog.Logger
}

// New creates an engine. A pageSize of zero lets the gateway choose.
func New(searcher Searcher, pageSize int, logger *slog.Logger) System {
	return &engine{
		searcher: searcher,
		pageSize: pageSize,
		logger:   logger.With("system", "search"),
	}
}

func (e *engine) Start(ctx context.Context, sc Context) (Result, error) {
	page, err := e.searcher.Search(ctx, sc.Query, gateway.SearchOptions{
		Since:    sc.Since,
		Archived: sc.Archived,
		Length:   e.pageSize,
	})
	if err != nil {
		return Result{}, fmt.Errorf("start search: %w", err)
	}

	present := make(map[string]struct{}, len(page))
	first := appendNew(nil, page, present)

	e.logger.Debug("search started", "query", sc.Query, "count", len(first))
	return Result{Images: first, Exhausted: len(first) == 0}, nil
}

func (e *engine) FetchMore(ctx context.Context, sc Context, current []images.Image) (Result, error) {
	if len(current) == 0 {
		return Result{Images: current, Exhausted: true}, nil
	}

	acc := slices.Clone(current)
	present := make(map[string]struct{}, len(acc))
	for _, img := range acc {
		present[img.URI] = struct{}{}
	}

	pages := 0
	defer func() { metrics.RecordWalk(pages) }()

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		until := acc[len(acc)-1].UploadTime
		page, err := e.searcher.Search(ctx, sc.Query, gateway.SearchOptions{
			Until:    &until,
			Archived: sc.Archived,
			Length:   e.pageSize,
		})
		pages++
		if err != nil {
			return Result{}, fmt.Errorf("fetch more: %w", err)
		}

		before := len(acc)
		acc = appendNew(acc, page, present)
		added := acc[before:]

		if len(added) == 0 {
			e.logger.Debug("search exhausted", "query", sc.Query, "pages", pages, "count", len(acc))
			return Result{Images: acc, Exhausted: true}, nil
		}

		if !sc.FreeOnly || slices.ContainsFunc(added, images.Image.IsFree) {
			e.logger.Debug("fetched more", "query", sc.Query, "pages", pages, "added", len(acc)-len(current))
			return Result{Images: acc, Exhausted: false}, nil
		}
	}
}

// FreeFilter reports whether img is visible under sc's cost filter.
func FreeFilter(img images.Image, sc Context) bool {
	return !sc.FreeOnly || img.IsFree()
}

// Visible returns the images of set that pass FreeFilter, in order.
func Visible(set []images.Image, sc Context) []images.Image {
	out := make([]images.Image, 0, len(set))
	for _, img := range set {
		if FreeFilter(img, sc) {
			out = append(out, img)
		}
	}
	return out
}

// appendNew appends the images of page whose URI is not yet present,
// keeping received order and recording each appended URI.
func appendNew(acc, page []images.Image, present map[string]struct{}) []images.Image {
	for _, img := range page {
		if _, dup := present[img.URI]; dup {
			continue
		}
		present[img.URI] = struct{}{}
		acc = append(acc, img)
	}
	return acc
}

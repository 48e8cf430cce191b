// Package importer performs bulk creation of CSV-parsed rows against the
// backend with bounded concurrency. Each accepted row is created
// independently; a row that fails leaves the already-created rows in place.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/smirnoffmg/who-read-whom/internal/logging"
)

// DefaultWorkers caps concurrent create requests when no width is given.
const DefaultWorkers = 4

// Failure records one row that the backend rejected.
type Failure struct {
	// Index is the position of the row within the accepted data slice.
	Index int
	// Label is a human-readable identifier for the row (name, title, key).
	Label string
	Err   error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %v", f.Label, f.Err)
}

// Tally summarizes a bulk import. Created+Failed equals the number of rows
// submitted; Failures holds one entry per failed row in submission order.
type Tally struct {
	Created  int
	Failed   int
	Failures []Failure
}

// CreateFunc issues a single create call for one row.
type CreateFunc[T any] func(ctx context.Context, row T) error

// LabelFunc renders a row identifier for failure reporting.
type LabelFunc[T any] func(row T) string

// Run creates every row using at most workers concurrent requests. It never
// rolls back: rows created before a failure stay created, and remaining rows
// are still attempted. The context cancels in-flight requests only; the
// per-row outcome is always recorded.
func Run[T any](ctx context.Context, rows []T, workers int, create CreateFunc[T], label LabelFunc[T]) Tally {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	log := logging.Get(logging.CategoryImporter)
	log.Infow("bulk import started", "rows", len(rows), "workers", workers)

	var (
		mu    sync.Mutex
		tally Tally
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, row := range rows {
		g.Go(func() error {
			err := create(ctx, row)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				tally.Failed++
				tally.Failures = append(tally.Failures, Failure{Index: i, Label: label(row), Err: err})
				log.Warnw("row create failed", "row", label(row), "error", err)
				return nil
			}
			tally.Created++
			return nil
		})
	}

	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	sort.Slice(tally.Failures, func(a, b int) bool {
		return tally.Failures[a].Index < tally.Failures[b].Index
	})

	log.Infow("bulk import finished", "created", tally.Created, "failed", tally.Failed)
	return tally
}

package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
	"github.com/smirnoffmg/who-read-whom/internal/logging"
)

// ErrInvalidSelection means the selected entity itself is unusable (zero id
// or blank title/name), which aborts assembly rather than silently rendering
// an empty graph.
var ErrInvalidSelection = errors.New("selected entity is missing id or name")

// WriterFetcher fetches single writers.
type WriterFetcher interface {
	Get(ctx context.Context, id int64) (*domain.Writer, error)
}

// WorkFetcher fetches single works.
type WorkFetcher interface {
	Get(ctx context.Context, id int64) (*domain.Work, error)
}

// OpinionFetcher fetches the opinions related to one side of the join.
type OpinionFetcher interface {
	ByWriter(ctx context.Context, writerID int64) ([]domain.Opinion, error)
	ByWork(ctx context.Context, workID int64) ([]domain.Opinion, error)
}

// Selection is the current pick: at most one of Writer/Work is set. The
// caller enforces mutual exclusion; when both are set, Writer wins.
type Selection struct {
	Writer *domain.Writer
	Work   *domain.Work
}

// Same reports whether two selections name the same entity. Responses carry
// the selection they were assembled for, so a late response for a replaced
// selection can be recognized and dropped.
func (s Selection) Same(o Selection) bool {
	switch {
	case s.Writer != nil && o.Writer != nil:
		return s.Writer.ID == o.Writer.ID
	case s.Work != nil && o.Work != nil:
		return s.Work.ID == o.Work.ID
	}
	return s.Writer == nil && s.Work == nil && o.Writer == nil && o.Work == nil
}

// Assembler builds graphs by fetching the minimal set of related entities.
type Assembler struct {
	writers  WriterFetcher
	works    WorkFetcher
	opinions OpinionFetcher
}

// NewAssembler creates an assembler over the given fetchers.
func NewAssembler(writers WriterFetcher, works WorkFetcher, opinions OpinionFetcher) *Assembler {
	return &Assembler{writers: writers, works: works, opinions: opinions}
}

// Assemble produces the graph for the selection.
//
// Failure semantics: a failed fetch of the opinions list is fatal and
// retryable by calling Assemble again. A failed fetch of an individual
// related entity only omits that node and its links; the operation still
// completes (partial-failure isolation).
func (a *Assembler) Assemble(ctx context.Context, sel Selection) (*Graph, error) {
	switch {
	case sel.Writer != nil:
		return a.assembleForWriter(ctx, sel.Writer)
	case sel.Work != nil:
		return a.assembleForWork(ctx, sel.Work)
	default:
		// No selection: a distinct state from "selected but unconnected".
		return &Graph{Nodes: []Node{}, Links: []Link{}}, nil
	}
}

func (a *Assembler) assembleForWriter(ctx context.Context, writer *domain.Writer) (*Graph, error) {
	if writer.ID == 0 || writer.Name == "" {
		return nil, fmt.Errorf("writer selection: %w", ErrInvalidSelection)
	}

	// The selected node is always materialized, relationships or not.
	selected := Node{
		ID:       WriterNodeID(writer.ID),
		Kind:     KindWriter,
		Label:    writer.Name,
		WriterID: writer.ID,
	}

	opinions, err := a.opinions.ByWriter(ctx, writer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load opinions for writer %d: %w", writer.ID, err)
	}

	workIDs := distinctWorkIDs(opinions)
	fetched := a.fetchWorks(ctx, workIDs)

	nodes := []Node{selected}
	for _, id := range workIDs {
		if w, ok := fetched[id]; ok {
			nodes = append(nodes, Node{
				ID:     WorkNodeID(w.ID),
				Kind:   KindWork,
				Label:  w.Title,
				WorkID: w.ID,
			})
		}
	}

	links := make([]Link, 0, len(opinions))
	for _, o := range opinions {
		if _, ok := fetched[o.WorkID]; !ok {
			continue
		}
		links = append(links, Link{
			Source:    selected.ID,
			Target:    WorkNodeID(o.WorkID),
			Sentiment: o.Sentiment,
			Quote:     o.Quote,
			Citation:  o.Source,
		})
	}

	return &Graph{Nodes: nodes, Links: links}, nil
}

func (a *Assembler) assembleForWork(ctx context.Context, work *domain.Work) (*Graph, error) {
	if work.ID == 0 || work.Title == "" {
		return nil, fmt.Errorf("work selection: %w", ErrInvalidSelection)
	}

	selected := Node{
		ID:     WorkNodeID(work.ID),
		Kind:   KindWork,
		Label:  work.Title,
		WorkID: work.ID,
	}

	opinions, err := a.opinions.ByWork(ctx, work.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load opinions for work %d: %w", work.ID, err)
	}

	writerIDs := distinctWriterIDs(opinions)
	fetched := a.fetchWriters(ctx, writerIDs)

	nodes := []Node{selected}
	for _, id := range writerIDs {
		if w, ok := fetched[id]; ok {
			nodes = append(nodes, Node{
				ID:       WriterNodeID(w.ID),
				Kind:     KindWriter,
				Label:    w.Name,
				WriterID: w.ID,
			})
		}
	}

	// Links always run writer -> work, regardless of which side is selected.
	links := make([]Link, 0, len(opinions))
	for _, o := range opinions {
		if _, ok := fetched[o.WriterID]; !ok {
			continue
		}
		links = append(links, Link{
			Source:    WriterNodeID(o.WriterID),
			Target:    selected.ID,
			Sentiment: o.Sentiment,
			Quote:     o.Quote,
			Citation:  o.Source,
		})
	}

	return &Graph{Nodes: nodes, Links: links}, nil
}

// fetchWorks loads the given works concurrently. Individual failures are
// logged and dropped; the returned map holds only the successes.
func (a *Assembler) fetchWorks(ctx context.Context, ids []int64) map[int64]*domain.Work {
	var mu sync.Mutex
	fetched := make(map[int64]*domain.Work, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			w, err := a.works.Get(gctx, id)
			if err != nil {
				logging.Get(logging.CategoryGraph).Warnw("skipping work node", "work_id", id, "error", err)
				return nil
			}
			mu.Lock()
			fetched[id] = w
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return fetched
}

func (a *Assembler) fetchWriters(ctx context.Context, ids []int64) map[int64]*domain.Writer {
	var mu sync.Mutex
	fetched := make(map[int64]*domain.Writer, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			w, err := a.writers.Get(gctx, id)
			if err != nil {
				logging.Get(logging.CategoryGraph).Warnw("skipping writer node", "writer_id", id, "error", err)
				return nil
			}
			mu.Lock()
			fetched[id] = w
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return fetched
}

func distinctWorkIDs(opinions []domain.Opinion) []int64 {
	seen := make(map[int64]struct{}, len(opinions))
	var ids []int64
	for _, o := range opinions {
		if _, ok := seen[o.WorkID]; !ok {
			seen[o.WorkID] = struct{}{}
			ids = append(ids, o.WorkID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func distinctWriterIDs(opinions []domain.Opinion) []int64 {
	seen := make(map[int64]struct{}, len(opinions))
	var ids []int64
	for _, o := range opinions {
		if _, ok := seen[o.WriterID]; !ok {
			seen[o.WriterID] = struct{}{}
			ids = append(ids, o.WriterID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

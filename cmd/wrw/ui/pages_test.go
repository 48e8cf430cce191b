package ui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smirnoffmg/who-read-whom/internal/api"
	"github.com/smirnoffmg/who-read-whom/internal/config"
	"github.com/smirnoffmg/who-read-whom/internal/domain"
	"github.com/smirnoffmg/who-read-whom/internal/graph"
	"github.com/smirnoffmg/who-read-whom/internal/store"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// run executes a command synchronously and returns its message.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd, "expected a command")
	return cmd()
}

func newTestDeps(t *testing.T, handler http.Handler) Deps {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.API.Timeout = 2 * time.Second

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout)
	writerSvc := api.NewWriterService(client)
	workSvc := api.NewWorkService(client)
	opinionSvc := api.NewOpinionService(client)

	return Deps{
		Config:     cfg,
		Writers:    store.NewWriters(writerSvc),
		Works:      store.NewWorks(workSvc),
		Opinions:   store.NewOpinions(opinionSvc),
		WriterSvc:  writerSvc,
		WorkSvc:    workSvc,
		OpinionSvc: opinionSvc,
		Assembler:  graph.NewAssembler(writerSvc, workSvc, opinionSvc),
	}
}

// writerBackend is a minimal in-memory writers endpoint.
type writerBackend struct {
	writers    []domain.Writer
	failDelete bool
}

func (b *writerBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/writers":
		json.NewEncoder(w).Encode(b.writers)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/writers/"):
		if b.failDelete {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "writer has opinions"})
			return
		}
		b.writers = b.writers[:0]
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && r.URL.Path == "/writers":
		var params domain.WriterParams
		json.NewDecoder(r.Body).Decode(&params)
		created := domain.Writer{ID: int64(len(b.writers) + 1), Name: params.Name, BirthYear: params.BirthYear}
		b.writers = append(b.writers, created)
		json.NewEncoder(w).Encode(created)
	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no route"})
	}
}

func seededWritersPage(t *testing.T, backend *writerBackend) WritersPage {
	t.Helper()
	deps := newTestDeps(t, backend)
	page := NewWritersPage(deps, NewStyles(LightTheme()))
	page.SetSize(120, 40)

	msg := run(t, page.fetchCmd())
	page, _ = page.Update(msg)
	return page
}

func TestWritersPageValidationBlocksSave(t *testing.T) {
	page := seededWritersPage(t, &writerBackend{})

	page, _ = page.Update(key("n"))
	require.Equal(t, editingNew, page.editingID)

	// Empty name: validation fails, nothing leaves the client.
	page, cmd := page.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.True(t, page.form.HasErrors())
	assert.Equal(t, editingNew, page.editingID, "form stays open on invalid input")
}

func TestWritersPageCreateRoundTrip(t *testing.T) {
	backend := &writerBackend{}
	page := seededWritersPage(t, backend)

	page, _ = page.Update(key("n"))
	page.form.SetValue("name", "Jane Austen")
	page.form.SetValue("birth_year", "1775")

	page, cmd := page.Update(key("enter"))
	require.NotNil(t, cmd, "valid input dispatches the save")

	page, _ = page.Update(run(t, cmd))
	assert.Empty(t, page.editingID, "form closes after the save lands")
	require.Len(t, page.deps.Writers.Items(), 1)
	assert.Equal(t, "Jane Austen", page.deps.Writers.Items()[0].Name)
}

func TestWritersPageEditSnapshotAndCancel(t *testing.T) {
	died := 1817
	backend := &writerBackend{writers: []domain.Writer{
		{ID: 1, Name: "Jane Austen", BirthYear: 1775, DeathYear: &died},
	}}
	page := seededWritersPage(t, backend)

	page, _ = page.Update(key("e"))
	require.Equal(t, "1", page.editingID)
	assert.Equal(t, "Jane Austen", page.form.Value("name"))
	assert.Equal(t, "1775", page.form.Value("birth_year"))
	assert.Equal(t, "1817", page.form.Value("death_year"))

	// Cancel discards the form without touching the cache.
	page, _ = page.Update(key("esc"))
	assert.Empty(t, page.editingID)
	assert.Equal(t, "Jane Austen", page.deps.Writers.Items()[0].Name)
}

func TestWritersPageDeleteDialogClosesOnAbsence(t *testing.T) {
	backend := &writerBackend{writers: []domain.Writer{{ID: 1, Name: "Jane Austen", BirthYear: 1775}}}
	page := seededWritersPage(t, backend)

	page, _ = page.Update(key("d"))
	require.True(t, page.confirm.Active)
	assert.Contains(t, page.confirm.Target, "Jane Austen")

	page, cmd := page.Update(key("y"))
	require.True(t, page.confirm.Waiting)

	page, _ = page.Update(run(t, cmd))
	assert.False(t, page.confirm.Active, "dialog closes once the list no longer holds the target")
	assert.Empty(t, page.deps.Writers.Items())
}

func TestWritersPageDeleteDialogStaysOpenOnFailure(t *testing.T) {
	backend := &writerBackend{
		writers:    []domain.Writer{{ID: 1, Name: "Jane Austen", BirthYear: 1775}},
		failDelete: true,
	}
	page := seededWritersPage(t, backend)

	page, _ = page.Update(key("d"))
	page, cmd := page.Update(key("y"))
	page, _ = page.Update(run(t, cmd))

	assert.True(t, page.confirm.Active, "target still present, dialog must not close")
	assert.False(t, page.confirm.Waiting)
	assert.Equal(t, "writer has opinions", page.deps.Writers.Err())
}

func TestWritersPageRejectsUnparseableYears(t *testing.T) {
	page := seededWritersPage(t, &writerBackend{})

	page, _ = page.Update(key("n"))
	page.form.SetValue("name", "Jane Austen")
	page.form.SetValue("birth_year", "seventeen-seventy-five")
	page.form.SetValue("death_year", "eighteen-seventeen")

	page, cmd := page.Update(key("enter"))
	assert.Nil(t, cmd, "unparseable years must not reach the backend")
	assert.Equal(t, "must be a valid number", page.form.errors["birth_year"])
	assert.Equal(t, "must be a valid number", page.form.errors["death_year"])
}

func TestWritersPageSortsColumns(t *testing.T) {
	backend := &writerBackend{writers: []domain.Writer{
		{ID: 1, Name: "Mark Twain", BirthYear: 1835},
		{ID: 2, Name: "Jane Austen", BirthYear: 1775},
	}}
	page := seededWritersPage(t, backend)
	require.Equal(t, "Mark Twain", page.pageItems()[0].Name, "store order before sorting")

	page, _ = page.Update(key("s")) // ID
	page, _ = page.Update(key("s")) // Name
	assert.Equal(t, "Jane Austen", page.pageItems()[0].Name)
	assert.Contains(t, page.View(), "Name ^")

	page, _ = page.Update(key("S"))
	assert.Equal(t, "Mark Twain", page.pageItems()[0].Name)
	assert.Contains(t, page.View(), "Name v")

	// Cycling past the last column restores store order.
	for i := 0; i < len(writerColumns())-1; i++ {
		page, _ = page.Update(key("s"))
	}
	assert.Equal(t, -1, page.sortCol)
	assert.Equal(t, "Mark Twain", page.pageItems()[0].Name)
}

func TestWritersPagePagination(t *testing.T) {
	backend := &writerBackend{}
	for i := 1; i <= pageSize+5; i++ {
		backend.writers = append(backend.writers, domain.Writer{ID: int64(i), Name: "w", BirthYear: 1900})
	}
	page := seededWritersPage(t, backend)

	assert.Len(t, page.pageItems(), pageSize)

	page, _ = page.Update(key("]"))
	assert.Equal(t, 1, page.pageIdx)
	assert.Len(t, page.pageItems(), 5)

	// No third page.
	page, _ = page.Update(key("]"))
	assert.Equal(t, 1, page.pageIdx)

	page, _ = page.Update(key("["))
	assert.Equal(t, 0, page.pageIdx)
}

func TestOpinionsPageRejectsSelfOpinion(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /works", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Work{{ID: 3, Title: "Emma", AuthorID: 7}})
	})
	mux.HandleFunc("GET /opinions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Opinion{})
	})
	deps := newTestDeps(t, mux)
	styles := NewStyles(LightTheme())

	works := NewWorksPage(deps, styles)
	msg := run(t, works.fetchCmd())
	works, _ = works.Update(msg)

	page := NewOpinionsPage(deps, styles)
	page.SetSize(120, 40)
	page, _ = page.Update(key("n"))
	page.form.SetValue("writer_id", "7")
	page.form.SetValue("work_id", "3")
	page.form.SetValue("quote", "magnificent")
	page.form.SetValue("source", "diary")

	page, cmd := page.Update(key("enter"))
	assert.Nil(t, cmd, "self-opinion must not reach the backend")
	assert.True(t, page.form.HasErrors())
}

func TestOpinionsPageSelfOpinionErrorShowsAmidFieldErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /works", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Work{{ID: 3, Title: "Emma", AuthorID: 7}})
	})
	deps := newTestDeps(t, mux)
	ctx, cancel := deps.opCtx()
	deps.Works.FetchAll(ctx, deps.Config.API.FetchLimit, 0)
	cancel()

	page := NewOpinionsPage(deps, NewStyles(LightTheme()))
	page.SetSize(120, 40)
	page, _ = page.Update(key("n"))
	page.form.SetValue("writer_id", "7")
	page.form.SetValue("work_id", "3")
	// Quote left blank: the authorship error must not wait for it to clear.
	page.form.SetValue("source", "diary")

	page, cmd := page.Update(key("enter"))
	assert.Nil(t, cmd)
	assert.Equal(t, domain.ErrSelfOpinion.Error(), page.form.errors["writer_id"])
	assert.NotEmpty(t, page.form.errors["quote"])
}

func TestOpinionsPageRejectsUnparseableStatementYear(t *testing.T) {
	deps := newTestDeps(t, http.NotFoundHandler())
	page := NewOpinionsPage(deps, NewStyles(LightTheme()))
	page.SetSize(120, 40)

	page, _ = page.Update(key("n"))
	page.form.SetValue("writer_id", "2")
	page.form.SetValue("work_id", "3")
	page.form.SetValue("quote", "magnificent")
	page.form.SetValue("source", "diary")
	page.form.SetValue("statement_year", "eighteen-oh-five")

	page, cmd := page.Update(key("enter"))
	assert.Nil(t, cmd, "the year must not be coerced away")
	assert.Equal(t, "must be a valid number", page.form.errors["statement_year"])
}

func TestGraphPageSearchAndAssemble(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /writers", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") != "" {
			json.NewEncoder(w).Encode([]domain.Writer{{ID: 2, Name: "Mark Twain", BirthYear: 1835}})
			return
		}
		json.NewEncoder(w).Encode([]domain.Writer{})
	})
	mux.HandleFunc("GET /works", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Work{})
	})
	mux.HandleFunc("GET /works/1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.Work{ID: 1, Title: "Emma", AuthorID: 7})
	})
	mux.HandleFunc("GET /opinions/writer/2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Opinion{
			{WriterID: 2, WorkID: 1, Sentiment: true, Quote: "Sublime.", Source: "Letters"},
		})
	})

	deps := newTestDeps(t, mux)
	page := NewGraphPage(deps, NewStyles(LightTheme()))
	page.SetSize(120, 40)

	// Focus search and type; each keystroke opens a new debounce window.
	page, _ = page.Update(key("/"))
	require.True(t, page.Capturing())
	page, _ = page.Update(key("t"))
	page, _ = page.Update(key("w"))

	// The first keystroke's window was superseded; its tick must be ignored.
	page, cmd := page.Update(DebounceMsg{Seq: 1})
	assert.Nil(t, cmd)

	// The live window dispatches the search.
	page, cmd = page.Update(DebounceMsg{Seq: 2})
	require.NotNil(t, cmd)
	page, _ = page.Update(run(t, cmd))
	require.Len(t, page.results, 1)
	assert.Equal(t, "writer: Mark Twain", page.results[0].label)

	// First enter leaves the search box, second selects the candidate.
	page, _ = page.Update(key("enter"))
	require.False(t, page.Capturing())
	page, cmd = page.Update(key("enter"))
	require.NotNil(t, cmd)
	page, _ = page.Update(run(t, cmd))

	require.NotNil(t, page.graph)
	assert.Len(t, page.graph.Nodes, 2)
	assert.Len(t, page.graph.Links, 1)
	assert.Contains(t, page.View(), "Mark Twain")
	assert.Contains(t, page.View(), "Emma")
}

func TestGraphPageFatalErrorOffersRetry(t *testing.T) {
	failing := true
	mux := http.NewServeMux()
	mux.HandleFunc("GET /opinions/writer/2", func(w http.ResponseWriter, r *http.Request) {
		if failing {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "db down"})
			return
		}
		json.NewEncoder(w).Encode([]domain.Opinion{})
	})

	deps := newTestDeps(t, mux)
	page := NewGraphPage(deps, NewStyles(LightTheme()))
	page.SetSize(120, 40)
	page.selection = graph.Selection{Writer: &domain.Writer{ID: 2, Name: "Mark Twain", BirthYear: 1835}}

	msg := run(t, page.assembleCmd(page.selection))
	page, _ = page.Update(msg)
	require.NotEmpty(t, page.fatalErr)
	assert.Contains(t, page.View(), "[r] retry")

	// Retry after the backend recovers.
	failing = false
	page, cmd := page.Update(key("r"))
	page, _ = page.Update(run(t, cmd))
	assert.Empty(t, page.fatalErr)
	require.NotNil(t, page.graph)
	assert.Len(t, page.graph.Nodes, 1, "lone selected node, zero links")
}

func TestGraphPageDropsStaleAssembleResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /opinions/writer/1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Opinion{})
	})
	mux.HandleFunc("GET /opinions/writer/2", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Opinion{})
	})

	deps := newTestDeps(t, mux)
	page := NewGraphPage(deps, NewStyles(LightTheme()))
	page.SetSize(120, 40)

	first := graph.Selection{Writer: &domain.Writer{ID: 1, Name: "Jane Austen", BirthYear: 1775}}
	second := graph.Selection{Writer: &domain.Writer{ID: 2, Name: "Mark Twain", BirthYear: 1835}}

	// The first selection's response arrives after the user moved on.
	late := run(t, page.assembleCmd(first))

	page.selection = second
	page, _ = page.Update(run(t, page.assembleCmd(second)))
	require.NotNil(t, page.graph)

	page, _ = page.Update(late)
	require.NotNil(t, page.graph)
	assert.Equal(t, "writer-2", page.graph.Nodes[0].ID, "late response for a replaced selection is dropped")
}

func TestGraphPageNoSelectionRendersEmptyState(t *testing.T) {
	deps := newTestDeps(t, http.NotFoundHandler())
	page := NewGraphPage(deps, NewStyles(LightTheme()))
	page.SetSize(120, 40)

	assert.Contains(t, page.View(), "select a writer or work")
}

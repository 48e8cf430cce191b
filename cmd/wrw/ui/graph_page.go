package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smirnoffmg/who-read-whom/internal/domain"
	"github.com/smirnoffmg/who-read-whom/internal/graph"
)

type (
	graphSearchedMsg struct {
		query   string
		writers []domain.Writer
		works   []domain.Work
		err     error
	}
	graphAssembledMsg struct {
		sel   graph.Selection
		graph *graph.Graph
		err   error
	}
)

// searchResult is one row of the combined writer/work candidate list.
type searchResult struct {
	label  string
	writer *domain.Writer
	work   *domain.Work
}

// GraphPage renders the opinion graph for one selected writer or work.
// Search is debounced; picking a candidate replaces the previous selection
// (writer and work selection are mutually exclusive).
type GraphPage struct {
	deps   Deps
	styles Styles

	search    textinput.Model
	searching bool
	debounce  Debouncer

	results []searchResult
	cursor  int

	selection graph.Selection
	graph     *graph.Graph
	fatalErr  string

	width  int
	height int
}

// NewGraphPage creates the graph tab.
func NewGraphPage(deps Deps, styles Styles) GraphPage {
	si := textinput.New()
	si.Placeholder = "search writers and works..."
	si.CharLimit = 200
	si.Width = 40

	return GraphPage{
		deps:     deps,
		styles:   styles,
		search:   si,
		debounce: NewDebouncer(DefaultSearchDebounce),
	}
}

// Capturing reports whether the search input owns the keyboard.
func (p GraphPage) Capturing() bool {
	return p.searching
}

// SetSize updates the layout size.
func (p *GraphPage) SetSize(w, h int) {
	p.width = w
	p.height = h
}

func (p GraphPage) searchCmd(query string) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()

		limit := deps.Config.API.SearchLimit
		writers, werr := deps.WriterSvc.Search(ctx, query, limit, 0)
		works, kerr := deps.WorkSvc.Search(ctx, query, limit, 0)

		err := werr
		if err == nil {
			err = kerr
		}
		return graphSearchedMsg{query: query, writers: writers, works: works, err: err}
	}
}

func (p GraphPage) assembleCmd(sel graph.Selection) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		g, err := deps.Assembler.Assemble(ctx, sel)
		return graphAssembledMsg{sel: sel, graph: g, err: err}
	}
}

// Update handles the page's messages.
func (p GraphPage) Update(msg tea.Msg) (GraphPage, tea.Cmd) {
	switch msg := msg.(type) {
	case DebounceMsg:
		if !p.debounce.Live(msg) {
			return p, nil
		}
		query := strings.TrimSpace(p.search.Value())
		if query == "" {
			p.results = nil
			p.cursor = 0
			return p, nil
		}
		return p, p.searchCmd(query)

	case graphSearchedMsg:
		// A response for text the user has since changed is stale.
		if msg.query != strings.TrimSpace(p.search.Value()) {
			return p, nil
		}
		if msg.err != nil {
			p.results = nil
			return p, nil
		}
		p.results = p.results[:0]
		for _, w := range msg.writers {
			p.results = append(p.results, searchResult{label: "writer: " + w.Name, writer: &w})
		}
		for _, w := range msg.works {
			p.results = append(p.results, searchResult{label: "work: " + w.Title, work: &w})
		}
		if p.cursor >= len(p.results) {
			p.cursor = 0
		}
		return p, nil

	case graphAssembledMsg:
		// A response for a selection the user has since replaced is stale.
		if !msg.sel.Same(p.selection) {
			return p, nil
		}
		if msg.err != nil {
			p.graph = nil
			p.fatalErr = msg.err.Error()
			return p, nil
		}
		p.fatalErr = ""
		p.graph = msg.graph
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p GraphPage) handleKey(msg tea.KeyMsg) (GraphPage, tea.Cmd) {
	if p.searching {
		switch msg.String() {
		case "esc":
			p.searching = false
			p.search.Blur()
			return p, nil
		case "enter":
			p.searching = false
			p.search.Blur()
			return p, nil
		case "up":
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		case "down":
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
			return p, nil
		}

		var cmd tea.Cmd
		p.search, cmd = p.search.Update(msg)
		var tick tea.Cmd
		p.debounce, tick = p.debounce.Next()
		return p, tea.Batch(cmd, tick)
	}

	switch msg.String() {
	case "/":
		p.searching = true
		p.search.Focus()
		return p, nil
	case "up":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil
	case "down":
		if p.cursor < len(p.results)-1 {
			p.cursor++
		}
		return p, nil
	case "enter":
		if p.cursor < 0 || p.cursor >= len(p.results) {
			return p, nil
		}
		res := p.results[p.cursor]
		// Selecting one side clears the other.
		if res.writer != nil {
			p.selection = graph.Selection{Writer: res.writer}
		} else {
			p.selection = graph.Selection{Work: res.work}
		}
		return p, p.assembleCmd(p.selection)
	case "r":
		// Retry after a failed opinions fetch.
		if p.selection.Writer != nil || p.selection.Work != nil {
			return p, p.assembleCmd(p.selection)
		}
		return p, nil
	case "esc":
		p.selection = graph.Selection{}
		p.graph = nil
		p.fatalErr = ""
		p.results = nil
		p.search.SetValue("")
		return p, nil
	}
	return p, nil
}

// View renders the page.
func (p GraphPage) View() string {
	var sb strings.Builder

	sb.WriteString(p.styles.Title.Render("Opinion graph"))
	sb.WriteString("\n")

	searchStyle := p.styles.FieldIdle
	if p.searching {
		searchStyle = p.styles.FieldActive
	}
	sb.WriteString(searchStyle.Render(p.search.View()))
	sb.WriteString("\n")

	for i, res := range p.results {
		marker := "  "
		style := p.styles.Body
		if i == p.cursor {
			marker = "> "
			style = p.styles.Bold
		}
		sb.WriteString(marker + style.Render(res.label) + "\n")
	}
	if len(p.results) > 0 {
		sb.WriteString("\n")
	}

	if p.fatalErr != "" {
		sb.WriteString(p.styles.Banner.Render(p.fatalErr))
		sb.WriteString(p.styles.Muted.Render("  [r] retry"))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(p.renderGraph())
	return sb.String()
}

// renderGraph draws the assembled graph as node/link listings. The empty
// graph (no selection) and the lone-node graph (a selection with no
// opinions) read differently on purpose.
func (p GraphPage) renderGraph() string {
	if p.graph == nil || (p.selection.Writer == nil && p.selection.Work == nil) {
		return p.styles.Muted.Render("select a writer or work to explore its opinions")
	}
	g := p.graph

	var sb strings.Builder
	for _, n := range g.Nodes {
		style := p.styles.WorkNode
		if n.Kind == graph.KindWriter {
			style = p.styles.WriterNode
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", style.Render("["+n.Kind.String()+"]"), n.Label))
	}

	if len(g.Links) == 0 {
		sb.WriteString(p.styles.Muted.Render("no opinions recorded"))
		sb.WriteString("\n")
		return sb.String()
	}

	labels := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		labels[n.ID] = n.Label
	}

	t := NewSimpleTable("Opinions", []string{"Writer", "Work", "Sentiment", "Quote", "Citation"})
	for _, l := range g.Links {
		sentiment := p.styles.LinkNegative.Render("negative")
		if l.Sentiment {
			sentiment = p.styles.LinkPositive.Render("positive")
		}
		t.AddRow(labels[l.Source], labels[l.Target], sentiment, l.Quote, l.Citation)
	}
	sb.WriteString("\n" + t.View(p.styles))
	return sb.String()
}

package ui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smirnoffmg/who-read-whom/internal/api"
	"github.com/smirnoffmg/who-read-whom/internal/config"
	"github.com/smirnoffmg/who-read-whom/internal/graph"
	"github.com/smirnoffmg/who-read-whom/internal/store"
)

// pageID identifies one console tab.
type pageID int

const (
	pageWriters pageID = iota
	pageWorks
	pageOpinions
	pageGraph
)

var pageTitles = []string{"Writers", "Works", "Opinions", "Graph"}

// Deps wires the console to the backend: one store per entity plus the raw
// services for operations that bypass the caches (search, bulk import).
type Deps struct {
	Config   *config.Config
	Writers  *store.Writers
	Works    *store.Works
	Opinions *store.Opinions

	WriterSvc  *api.WriterService
	WorkSvc    *api.WorkService
	OpinionSvc *api.OpinionService

	Assembler *graph.Assembler
}

// opCtx returns the context for one backend round-trip.
func (d Deps) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d.Config.API.Timeout)
}

// App is the root console model: a header with tabs, the active page, and a
// footer with key help.
type App struct {
	deps   Deps
	styles Styles

	active   pageID
	writers  WritersPage
	works    WorksPage
	opinions OpinionsPage
	graph    GraphPage

	width  int
	height int
	ready  bool
}

// NewApp builds the console over the given dependencies.
func NewApp(deps Deps) App {
	styles := DefaultStyles()
	return App{
		deps:     deps,
		styles:   styles,
		active:   pageWriters,
		writers:  NewWritersPage(deps, styles),
		works:    NewWorksPage(deps, styles),
		opinions: NewOpinionsPage(deps, styles),
		graph:    NewGraphPage(deps, styles),
	}
}

// Init kicks off the initial data loads for every entity page.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.writers.fetchCmd(),
		a.works.fetchCmd(),
		a.opinions.fetchCmd(),
	)
}

// capturing reports whether the active page wants raw key input (a form or
// search box has focus), which disables the global shortcuts.
func (a App) capturing() bool {
	switch a.active {
	case pageWriters:
		return a.writers.Capturing()
	case pageWorks:
		return a.works.Capturing()
	case pageOpinions:
		return a.opinions.Capturing()
	case pageGraph:
		return a.graph.Capturing()
	}
	return false
}

// Update routes messages: global keys first, then the active page. Data
// messages go to every page so a change made on one tab is visible on the
// others after their next render.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.writers.SetSize(msg.Width, msg.Height-4)
		a.works.SetSize(msg.Width, msg.Height-4)
		a.opinions.SetSize(msg.Width, msg.Height-4)
		a.graph.SetSize(msg.Width, msg.Height-4)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.capturing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				a.active = pageWriters
				return a, nil
			case "2":
				a.active = pageWorks
				return a, nil
			case "3":
				a.active = pageOpinions
				return a, nil
			case "4":
				a.active = pageGraph
				return a, nil
			case "tab":
				a.active = (a.active + 1) % 4
				return a, nil
			case "shift+tab":
				a.active = (a.active + 3) % 4
				return a, nil
			}
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg.(type) {
	case writersChangedMsg, writerDeletedMsg, writersImportedMsg,
		worksChangedMsg, workDeletedMsg, worksImportedMsg,
		opinionsChangedMsg, opinionDeletedMsg, opinionsImportedMsg,
		graphSearchedMsg, graphAssembledMsg, DebounceMsg, exportedMsg:
		// Data/flow messages reach every page regardless of focus.
		a.writers, cmd = a.writers.Update(msg)
		cmds = append(cmds, cmd)
		a.works, cmd = a.works.Update(msg)
		cmds = append(cmds, cmd)
		a.opinions, cmd = a.opinions.Update(msg)
		cmds = append(cmds, cmd)
		a.graph, cmd = a.graph.Update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)
	}

	switch a.active {
	case pageWriters:
		a.writers, cmd = a.writers.Update(msg)
	case pageWorks:
		a.works, cmd = a.works.Update(msg)
	case pageOpinions:
		a.opinions, cmd = a.opinions.Update(msg)
	case pageGraph:
		a.graph, cmd = a.graph.Update(msg)
	}
	return a, cmd
}

// View renders header, active page and footer.
func (a App) View() string {
	if !a.ready {
		return "loading..."
	}

	var sb strings.Builder
	sb.WriteString(a.renderTabs())
	sb.WriteString("\n")

	switch a.active {
	case pageWriters:
		sb.WriteString(a.writers.View())
	case pageWorks:
		sb.WriteString(a.works.View())
	case pageOpinions:
		sb.WriteString(a.opinions.View())
	case pageGraph:
		sb.WriteString(a.graph.View())
	}

	sb.WriteString("\n")
	sb.WriteString(a.styles.Footer.Render(a.footerHelp()))
	return sb.String()
}

func (a App) renderTabs() string {
	var tabs []string
	for i, title := range pageTitles {
		if pageID(i) == a.active {
			tabs = append(tabs, a.styles.TabActive.Render(title))
		} else {
			tabs = append(tabs, a.styles.TabInactive.Render(title))
		}
	}
	return a.styles.Header.Render("who-read-whom") + "  " + strings.Join(tabs, " ")
}

func (a App) footerHelp() string {
	if a.capturing() {
		return "[enter] confirm  [esc] cancel  [tab] next field"
	}
	base := "[1-4/tab] pages  [q] quit"
	switch a.active {
	case pageGraph:
		return "[/] search  [enter] select  [r] retry  [esc] clear  " + base
	default:
		return "[n] new  [e] edit  [d] delete  [s] sort  [r] refresh  [x] export  [i] import  [[/]] page  " + base
	}
}

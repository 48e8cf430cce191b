package ui

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smirnoffmg/who-read-whom/internal/csvio"
	"github.com/smirnoffmg/who-read-whom/internal/domain"
	"github.com/smirnoffmg/who-read-whom/internal/importer"
)

type worksMode int

const (
	worksBrowse worksMode = iota
	worksEdit
	worksImportPath
	worksImportPreview
)

type (
	worksChangedMsg struct{}
	workDeletedMsg  struct{ id int64 }
	worksParsedMsg  struct {
		result csvio.ImportResult[domain.Work]
		err    error
	}
	worksImportedMsg struct{ tally importer.Tally }
)

// WorksPage is the works CRUD tab.
type WorksPage struct {
	deps   Deps
	styles Styles

	table   table.Model
	mode    worksMode
	pageIdx int
	sortCol int
	sortAsc bool

	editingID string
	form      Form
	saving    bool

	confirm  Confirm
	deleteID int64

	importPath textinput.Model
	preview    csvio.ImportResult[domain.Work]

	flash  string
	width  int
	height int
}

func workColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Title", Width: 36},
		{Title: "Author", Width: 28},
	}
}

// NewWorksPage creates the works tab.
func NewWorksPage(deps Deps, styles Styles) WorksPage {
	t := table.New(
		table.WithColumns(workColumns()),
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)

	pi := textinput.New()
	pi.Placeholder = "path to works CSV..."
	pi.CharLimit = 300
	pi.Width = 50

	return WorksPage{
		deps:       deps,
		styles:     styles,
		table:      t,
		sortCol:    -1,
		importPath: pi,
	}
}

// Capturing reports whether a form or path input owns the keyboard.
func (p WorksPage) Capturing() bool {
	return p.mode == worksEdit || p.mode == worksImportPath
}

// SetSize updates the layout size.
func (p *WorksPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	p.table.SetWidth(w - 4)
}

func (p WorksPage) fetchCmd() tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		deps.Works.FetchAll(ctx, deps.Config.API.FetchLimit, 0)
		return worksChangedMsg{}
	}
}

func (p WorksPage) saveCmd(editingID string, params domain.WorkParams) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		if editingID == editingNew {
			deps.Works.Create(ctx, params)
		} else {
			id, _ := strconv.ParseInt(editingID, 10, 64)
			deps.Works.Update(ctx, id, params)
		}
		return worksChangedMsg{}
	}
}

func (p WorksPage) deleteCmd(id int64) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		deps.Works.Delete(ctx, id)
		return workDeletedMsg{id: id}
	}
}

func (p WorksPage) exportCmd() tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		path := fmt.Sprintf("works-%s.csv", time.Now().Format("2006-01-02"))
		err := os.WriteFile(path, []byte(csvio.ExportWorks(deps.Works.Items())), 0o644)
		return exportedMsg{entity: "works", path: path, err: err}
	}
}

func (p WorksPage) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return worksParsedMsg{err: err}
		}
		result, err := csvio.ImportWorks(string(data))
		return worksParsedMsg{result: result, err: err}
	}
}

func (p WorksPage) importCmd(rows []domain.Work) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()

		params := make([]domain.WorkParams, 0, len(rows))
		for _, w := range rows {
			params = append(params, domain.WorkParams{Title: w.Title, AuthorID: w.AuthorID})
		}
		tally := importer.Run(ctx, params, deps.Config.Import.Workers,
			func(ctx context.Context, row domain.WorkParams) error {
				_, err := deps.WorkSvc.Create(ctx, row)
				return err
			},
			func(row domain.WorkParams) string { return row.Title },
		)

		refresh, cancel2 := deps.opCtx()
		defer cancel2()
		deps.Works.FetchAll(refresh, deps.Config.API.FetchLimit, 0)
		return worksImportedMsg{tally: tally}
	}
}

func workForm() Form {
	return NewForm(
		FieldSpec{Key: "title", Label: "Title", Kind: FieldText},
		FieldSpec{Key: "author_id", Label: "Author ID", Kind: FieldInt},
	)
}

// Update handles the page's messages.
func (p WorksPage) Update(msg tea.Msg) (WorksPage, tea.Cmd) {
	switch msg := msg.(type) {
	case worksChangedMsg:
		if p.saving {
			p.saving = false
			p.mode = worksBrowse
			p.editingID = ""
		}
		p.reload()
		return p, nil

	case writersChangedMsg:
		// Author names resolve through the writers cache.
		p.reload()
		return p, nil

	case workDeletedMsg:
		if !worksContain(p.deps.Works.Items(), msg.id) {
			p.confirm.Close()
		} else {
			p.confirm.Waiting = false
		}
		p.reload()
		return p, nil

	case worksParsedMsg:
		if msg.err != nil {
			p.mode = worksBrowse
			p.flash = p.styles.Error.Render("import: " + msg.err.Error())
			return p, nil
		}
		p.preview = msg.result
		p.mode = worksImportPreview
		return p, nil

	case worksImportedMsg:
		p.mode = worksBrowse
		p.flash = importFlash(p.styles, msg.tally)
		p.reload()
		return p, nil

	case exportedMsg:
		if msg.entity == "works" {
			if msg.err != nil {
				p.flash = p.styles.Error.Render("export: " + msg.err.Error())
			} else {
				p.flash = p.styles.Success.Render("exported " + msg.path)
			}
		}
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}

	if p.mode == worksBrowse {
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p WorksPage) handleKey(msg tea.KeyMsg) (WorksPage, tea.Cmd) {
	switch p.mode {
	case worksEdit:
		switch msg.String() {
		case "esc":
			p.mode = worksBrowse
			p.editingID = ""
			return p, nil
		case "enter":
			params := domain.WorkParams{
				Title:    p.form.Value("title"),
				AuthorID: p.form.Int64Value("author_id"),
			}
			errs := p.form.ParseErrors()
			mergeFieldErrors(errs, params.Validate())
			if len(errs) > 0 {
				p.form.SetErrors(errs)
				return p, nil
			}
			p.form.SetErrors(nil)
			p.saving = true
			return p, p.saveCmd(p.editingID, params)
		}
		var cmd tea.Cmd
		p.form, cmd = p.form.Update(msg)
		return p, cmd

	case worksImportPath:
		switch msg.String() {
		case "esc":
			p.mode = worksBrowse
			return p, nil
		case "enter":
			path := p.importPath.Value()
			if path == "" {
				return p, nil
			}
			return p, p.parseCmd(path)
		}
		var cmd tea.Cmd
		p.importPath, cmd = p.importPath.Update(msg)
		return p, cmd

	case worksImportPreview:
		switch msg.String() {
		case "esc", "n":
			p.mode = worksBrowse
			return p, nil
		case "y":
			if !p.preview.IsValid {
				return p, nil
			}
			return p, p.importCmd(p.preview.Data)
		}
		return p, nil
	}

	if p.confirm.Active {
		switch msg.String() {
		case "y":
			if !p.confirm.Waiting {
				p.confirm.Waiting = true
				return p, p.deleteCmd(p.deleteID)
			}
		case "n", "esc":
			p.confirm.Close()
		}
		return p, nil
	}

	switch msg.String() {
	case "n":
		p.mode = worksEdit
		p.editingID = editingNew
		p.form = workForm()
		return p, nil
	case "e", "enter":
		w, ok := p.selected()
		if !ok {
			return p, nil
		}
		p.mode = worksEdit
		p.editingID = strconv.FormatInt(w.ID, 10)
		p.form = workForm()
		p.form.SetValue("title", w.Title)
		p.form.SetValue("author_id", strconv.FormatInt(w.AuthorID, 10))
		return p, nil
	case "d":
		w, ok := p.selected()
		if !ok {
			return p, nil
		}
		p.deleteID = w.ID
		p.confirm.Open(fmt.Sprintf("work %q (id %d)", w.Title, w.ID))
		return p, nil
	case "r":
		return p, p.fetchCmd()
	case "x":
		return p, p.exportCmd()
	case "i":
		p.mode = worksImportPath
		p.importPath.SetValue("")
		p.importPath.Focus()
		return p, nil
	case "]":
		if (p.pageIdx+1)*pageSize < len(p.deps.Works.Items()) {
			p.pageIdx++
			p.reload()
		}
		return p, nil
	case "[":
		if p.pageIdx > 0 {
			p.pageIdx--
			p.reload()
		}
		return p, nil
	case "s":
		p.sortCol = cycleSortCol(p.sortCol, len(workColumns()))
		p.sortAsc = true
		p.reload()
		return p, nil
	case "S":
		if p.sortCol >= 0 {
			p.sortAsc = !p.sortAsc
			p.reload()
		}
		return p, nil
	case "esc":
		p.flash = ""
		p.deps.Works.ClearError()
		return p, nil
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func worksContain(works []domain.Work, id int64) bool {
	for _, w := range works {
		if w.ID == id {
			return true
		}
	}
	return false
}

func (p WorksPage) selected() (domain.Work, bool) {
	items := p.pageItems()
	idx := p.table.Cursor()
	if idx < 0 || idx >= len(items) {
		return domain.Work{}, false
	}
	return items[idx], true
}

func (p WorksPage) sortItems(items []domain.Work) {
	if p.sortCol < 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !p.sortAsc {
			a, b = b, a
		}
		switch p.sortCol {
		case 0:
			return a.ID < b.ID
		case 1:
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		default:
			return strings.ToLower(p.authorName(a.AuthorID)) < strings.ToLower(p.authorName(b.AuthorID))
		}
	})
}

func (p WorksPage) pageItems() []domain.Work {
	items := p.deps.Works.Items()
	p.sortItems(items)
	start := p.pageIdx * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// authorName resolves an author id through the writers cache, falling back
// to the bare id while the cache is cold.
func (p WorksPage) authorName(id int64) string {
	for _, w := range p.deps.Writers.Items() {
		if w.ID == id {
			return w.Name
		}
	}
	return "#" + strconv.FormatInt(id, 10)
}

func (p *WorksPage) reload() {
	items := p.deps.Works.Items()
	for p.pageIdx > 0 && p.pageIdx*pageSize >= len(items) {
		p.pageIdx--
	}
	p.table.SetColumns(sortedColumns(workColumns(), p.sortCol, p.sortAsc))

	rows := make([]table.Row, 0, pageSize)
	for _, w := range p.pageItems() {
		rows = append(rows, table.Row{
			strconv.FormatInt(w.ID, 10),
			w.Title,
			p.authorName(w.AuthorID),
		})
	}
	p.table.SetRows(rows)
}

// View renders the page.
func (p WorksPage) View() string {
	var sb strings.Builder

	sb.WriteString(p.styles.Title.Render("Works"))
	sb.WriteString("\n")

	if errMsg := p.deps.Works.Err(); errMsg != "" {
		sb.WriteString(p.styles.Banner.Render(errMsg) + p.styles.Muted.Render("  [esc] dismiss"))
		sb.WriteString("\n")
	}
	if p.flash != "" {
		sb.WriteString(p.flash)
		sb.WriteString("\n")
	}

	switch p.mode {
	case worksEdit:
		title := "Edit work"
		if p.editingID == editingNew {
			title = "New work"
		}
		sb.WriteString(p.styles.Dialog.Render(p.styles.Title.Render(title) + "\n" + p.form.View(p.styles)))
		return sb.String()

	case worksImportPath:
		sb.WriteString(p.styles.Dialog.Render("Import works from CSV\n\n" + p.importPath.View()))
		return sb.String()

	case worksImportPreview:
		sb.WriteString(renderImportPreview(p.styles, "works", len(p.preview.Data), p.preview.Errors, p.preview.IsValid))
		return sb.String()
	}

	if p.confirm.Active {
		sb.WriteString(p.confirm.View(p.styles))
		sb.WriteString("\n")
	}

	sb.WriteString(p.table.View())
	sb.WriteString("\n")
	sb.WriteString(p.styles.Muted.Render(pageIndicator(p.pageIdx, len(p.deps.Works.Items()))))
	if p.deps.Works.Loading() {
		sb.WriteString(p.styles.Muted.Render("  loading..."))
	}
	return sb.String()
}

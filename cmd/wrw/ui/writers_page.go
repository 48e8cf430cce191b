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

// pageSize is how many rows an entity page shows at once. Fetches pull the
// whole list; pagination is purely a display concern.
const pageSize = 15

// editingNew is the editingID sentinel for a create-in-progress, as opposed
// to "" (not editing) and a numeric id (updating that entity).
const editingNew = "new"

type writersMode int

const (
	writersBrowse writersMode = iota
	writersEdit
	writersImportPath
	writersImportPreview
)

// Messages shared by the entity pages.
type (
	writersChangedMsg   struct{}
	writerDeletedMsg    struct{ id int64 }
	writersParsedMsg    struct {
		result csvio.ImportResult[domain.Writer]
		err    error
	}
	writersImportedMsg struct{ tally importer.Tally }
	writerWorksMsg     struct {
		writer string
		works  []domain.Work
	}

	// exportedMsg reports a finished CSV export for any entity.
	exportedMsg struct {
		entity string
		path   string
		err    error
	}
)

// WritersPage is the writers CRUD tab.
type WritersPage struct {
	deps   Deps
	styles Styles

	table   table.Model
	mode    writersMode
	pageIdx int

	// sortCol is the sorted column index, -1 for store order.
	sortCol int
	sortAsc bool

	// editingID is "" while browsing, "new" for a create, or the decimal id
	// of the writer being updated.
	editingID string
	form      Form
	saving    bool

	confirm  Confirm
	deleteID int64

	importPath textinput.Model
	preview    csvio.ImportResult[domain.Writer]

	// worksOf holds the name of the writer whose works panel is open.
	worksOf   string
	worksList []domain.Work

	flash  string
	width  int
	height int
}

func writerColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 28},
		{Title: "Born", Width: 6},
		{Title: "Died", Width: 6},
		{Title: "Bio", Width: 36},
	}
}

// NewWritersPage creates the writers tab.
func NewWritersPage(deps Deps, styles Styles) WritersPage {
	t := table.New(
		table.WithColumns(writerColumns()),
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)

	pi := textinput.New()
	pi.Placeholder = "path to writers CSV..."
	pi.CharLimit = 300
	pi.Width = 50

	return WritersPage{
		deps:       deps,
		styles:     styles,
		table:      t,
		sortCol:    -1,
		importPath: pi,
	}
}

// Capturing reports whether a form or path input owns the keyboard.
func (p WritersPage) Capturing() bool {
	return p.mode == writersEdit || p.mode == writersImportPath
}

// SetSize updates the layout size.
func (p *WritersPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	p.table.SetWidth(w - 4)
}

func (p WritersPage) fetchCmd() tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		deps.Writers.FetchAll(ctx, deps.Config.API.FetchLimit, 0)
		return writersChangedMsg{}
	}
}

func (p WritersPage) saveCmd(editingID string, params domain.WriterParams) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		if editingID == editingNew {
			deps.Writers.Create(ctx, params)
		} else {
			id, _ := strconv.ParseInt(editingID, 10, 64)
			deps.Writers.Update(ctx, id, params)
		}
		return writersChangedMsg{}
	}
}

func (p WritersPage) deleteCmd(id int64) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		deps.Writers.Delete(ctx, id)
		return writerDeletedMsg{id: id}
	}
}

func (p WritersPage) exportCmd() tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		path := fmt.Sprintf("writers-%s.csv", time.Now().Format("2006-01-02"))
		err := os.WriteFile(path, []byte(csvio.ExportWriters(deps.Writers.Items())), 0o644)
		return exportedMsg{entity: "writers", path: path, err: err}
	}
}

func (p WritersPage) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return writersParsedMsg{err: err}
		}
		result, err := csvio.ImportWriters(string(data))
		return writersParsedMsg{result: result, err: err}
	}
}

func (p WritersPage) importCmd(rows []domain.Writer) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()

		params := make([]domain.WriterParams, 0, len(rows))
		for _, w := range rows {
			params = append(params, domain.WriterParams{
				Name:      w.Name,
				BirthYear: w.BirthYear,
				DeathYear: w.DeathYear,
				Bio:       w.Bio,
			})
		}
		tally := importer.Run(ctx, params, deps.Config.Import.Workers,
			func(ctx context.Context, row domain.WriterParams) error {
				_, err := deps.WriterSvc.Create(ctx, row)
				return err
			},
			func(row domain.WriterParams) string { return row.Name },
		)

		refresh, cancel2 := deps.opCtx()
		defer cancel2()
		deps.Writers.FetchAll(refresh, deps.Config.API.FetchLimit, 0)
		return writersImportedMsg{tally: tally}
	}
}

func (p WritersPage) worksByAuthorCmd(w domain.Writer) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		works := deps.Works.FetchByAuthor(ctx, w.ID)
		return writerWorksMsg{writer: w.Name, works: works}
	}
}

func writerForm() Form {
	return NewForm(
		FieldSpec{Key: "name", Label: "Name", Kind: FieldText},
		FieldSpec{Key: "birth_year", Label: "Birth year", Kind: FieldInt},
		FieldSpec{Key: "death_year", Label: "Death year", Kind: FieldInt, Placeholder: "blank if living"},
		FieldSpec{Key: "bio", Label: "Bio", Kind: FieldText, Placeholder: "optional"},
	)
}

// Update handles the page's messages.
func (p WritersPage) Update(msg tea.Msg) (WritersPage, tea.Cmd) {
	switch msg := msg.(type) {
	case writersChangedMsg:
		if p.saving {
			p.saving = false
			p.mode = writersBrowse
			p.editingID = ""
		}
		p.reload()
		return p, nil

	case writerDeletedMsg:
		// The dialog closes only once the refreshed list confirms the
		// target is gone; on failure it stays open over the error banner.
		if !p.deps.Writers.Contains(msg.id) {
			p.confirm.Close()
		} else {
			p.confirm.Waiting = false
		}
		p.reload()
		return p, nil

	case writersParsedMsg:
		if msg.err != nil {
			p.mode = writersBrowse
			p.flash = p.styles.Error.Render("import: " + msg.err.Error())
			return p, nil
		}
		p.preview = msg.result
		p.mode = writersImportPreview
		return p, nil

	case writersImportedMsg:
		p.mode = writersBrowse
		p.flash = importFlash(p.styles, msg.tally)
		p.reload()
		return p, nil

	case writerWorksMsg:
		p.worksOf = msg.writer
		p.worksList = msg.works
		return p, nil

	case exportedMsg:
		if msg.entity == "writers" {
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

	if p.mode == writersBrowse {
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p WritersPage) handleKey(msg tea.KeyMsg) (WritersPage, tea.Cmd) {
	switch p.mode {
	case writersEdit:
		switch msg.String() {
		case "esc":
			p.mode = writersBrowse
			p.editingID = ""
			return p, nil
		case "enter":
			params := domain.WriterParams{
				Name:      p.form.Value("name"),
				BirthYear: p.form.IntValue("birth_year"),
				DeathYear: p.form.OptionalInt("death_year"),
				Bio:       p.form.OptionalString("bio"),
			}
			// Invalid input never reaches the backend.
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

	case writersImportPath:
		switch msg.String() {
		case "esc":
			p.mode = writersBrowse
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

	case writersImportPreview:
		switch msg.String() {
		case "esc", "n":
			p.mode = writersBrowse
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
		p.mode = writersEdit
		p.editingID = editingNew
		p.form = writerForm()
		return p, nil
	case "e", "enter":
		w, ok := p.selected()
		if !ok {
			return p, nil
		}
		p.mode = writersEdit
		p.editingID = strconv.FormatInt(w.ID, 10)
		p.form = writerForm()
		// Snapshot current values; cancel later discards the snapshot.
		p.form.SetValue("name", w.Name)
		p.form.SetValue("birth_year", strconv.Itoa(w.BirthYear))
		if w.DeathYear != nil {
			p.form.SetValue("death_year", strconv.Itoa(*w.DeathYear))
		}
		if w.Bio != nil {
			p.form.SetValue("bio", *w.Bio)
		}
		return p, nil
	case "d":
		w, ok := p.selected()
		if !ok {
			return p, nil
		}
		p.deleteID = w.ID
		p.confirm.Open(fmt.Sprintf("writer %q (id %d)", w.Name, w.ID))
		return p, nil
	case "w":
		writer, ok := p.selected()
		if !ok {
			return p, nil
		}
		return p, p.worksByAuthorCmd(writer)
	case "r":
		return p, p.fetchCmd()
	case "x":
		return p, p.exportCmd()
	case "i":
		p.mode = writersImportPath
		p.importPath.SetValue("")
		p.importPath.Focus()
		return p, nil
	case "]":
		if (p.pageIdx+1)*pageSize < len(p.deps.Writers.Items()) {
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
		p.sortCol = cycleSortCol(p.sortCol, len(writerColumns()))
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
		p.worksOf = ""
		p.worksList = nil
		p.deps.Writers.ClearError()
		return p, nil
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

// selected returns the writer under the table cursor.
func (p WritersPage) selected() (domain.Writer, bool) {
	items := p.pageItems()
	idx := p.table.Cursor()
	if idx < 0 || idx >= len(items) {
		return domain.Writer{}, false
	}
	return items[idx], true
}

// sortItems orders a local copy of the store's list by the active column.
func (p WritersPage) sortItems(items []domain.Writer) {
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
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		case 2:
			return a.BirthYear < b.BirthYear
		case 3:
			return yearOrZero(a.DeathYear) < yearOrZero(b.DeathYear)
		default:
			return strings.ToLower(textOrEmpty(a.Bio)) < strings.ToLower(textOrEmpty(b.Bio))
		}
	})
}

func (p WritersPage) pageItems() []domain.Writer {
	items := p.deps.Writers.Items()
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

// reload refreshes the table rows from the store, clamping the page index
// after deletions shrink the list.
func (p *WritersPage) reload() {
	items := p.deps.Writers.Items()
	for p.pageIdx > 0 && p.pageIdx*pageSize >= len(items) {
		p.pageIdx--
	}
	p.table.SetColumns(sortedColumns(writerColumns(), p.sortCol, p.sortAsc))

	rows := make([]table.Row, 0, pageSize)
	for _, w := range p.pageItems() {
		died := ""
		if w.DeathYear != nil {
			died = strconv.Itoa(*w.DeathYear)
		}
		bio := ""
		if w.Bio != nil {
			bio = *w.Bio
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(w.ID, 10),
			w.Name,
			strconv.Itoa(w.BirthYear),
			died,
			bio,
		})
	}
	p.table.SetRows(rows)
}

// View renders the page.
func (p WritersPage) View() string {
	var sb strings.Builder

	sb.WriteString(p.styles.Title.Render("Writers"))
	sb.WriteString("\n")

	if errMsg := p.deps.Writers.Err(); errMsg != "" {
		sb.WriteString(p.styles.Banner.Render(errMsg) + p.styles.Muted.Render("  [esc] dismiss"))
		sb.WriteString("\n")
	}
	if p.flash != "" {
		sb.WriteString(p.flash)
		sb.WriteString("\n")
	}

	switch p.mode {
	case writersEdit:
		title := "Edit writer"
		if p.editingID == editingNew {
			title = "New writer"
		}
		sb.WriteString(p.styles.Dialog.Render(p.styles.Title.Render(title) + "\n" + p.form.View(p.styles)))
		return sb.String()

	case writersImportPath:
		sb.WriteString(p.styles.Dialog.Render("Import writers from CSV\n\n" + p.importPath.View()))
		return sb.String()

	case writersImportPreview:
		sb.WriteString(renderImportPreview(p.styles, "writers", len(p.preview.Data), p.preview.Errors, p.preview.IsValid))
		return sb.String()
	}

	if p.confirm.Active {
		sb.WriteString(p.confirm.View(p.styles))
		sb.WriteString("\n")
	}

	if p.worksOf != "" {
		t := NewSimpleTable("Works by "+p.worksOf, []string{"ID", "Title"})
		for _, w := range p.worksList {
			t.AddRow(strconv.FormatInt(w.ID, 10), w.Title)
		}
		if len(p.worksList) == 0 {
			sb.WriteString(p.styles.Muted.Render("no works recorded for " + p.worksOf))
		} else {
			sb.WriteString(t.View(p.styles))
		}
		sb.WriteString(p.styles.Muted.Render("  [esc] close"))
		sb.WriteString("\n")
	}

	sb.WriteString(p.table.View())
	sb.WriteString("\n")
	sb.WriteString(p.styles.Muted.Render(pageIndicator(p.pageIdx, len(p.deps.Writers.Items()))))
	if p.deps.Writers.Loading() {
		sb.WriteString(p.styles.Muted.Render("  loading..."))
	}
	return sb.String()
}

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

type opinionsMode int

const (
	opinionsBrowse opinionsMode = iota
	opinionsEdit
	opinionsImportPath
	opinionsImportPreview
)

type (
	opinionsChangedMsg struct{}
	opinionDeletedMsg  struct{ writerID, workID int64 }
	opinionsParsedMsg  struct {
		result csvio.ImportResult[domain.Opinion]
		err    error
	}
	opinionsImportedMsg struct{ tally importer.Tally }
	opinionSnapshotMsg  struct{ opinion *domain.Opinion }
)

// OpinionsPage is the opinions CRUD tab. Opinions have no surrogate id; the
// (writer_id, work_id) pair identifies them everywhere, including in the
// editingID sentinel.
type OpinionsPage struct {
	deps   Deps
	styles Styles

	table   table.Model
	mode    opinionsMode
	pageIdx int
	sortCol int
	sortAsc bool

	editingID  string
	editWriter int64
	editWork   int64
	form       Form
	saving     bool

	confirm      Confirm
	deleteWriter int64
	deleteWork   int64

	importPath textinput.Model
	preview    csvio.ImportResult[domain.Opinion]

	flash  string
	width  int
	height int
}

func opinionColumns() []table.Column {
	return []table.Column{
		{Title: "Writer", Width: 22},
		{Title: "Work", Width: 26},
		{Title: "Sentiment", Width: 10},
		{Title: "Quote", Width: 40},
		{Title: "Source", Width: 20},
	}
}

// NewOpinionsPage creates the opinions tab.
func NewOpinionsPage(deps Deps, styles Styles) OpinionsPage {
	t := table.New(
		table.WithColumns(opinionColumns()),
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)

	pi := textinput.New()
	pi.Placeholder = "path to opinions CSV..."
	pi.CharLimit = 300
	pi.Width = 50

	return OpinionsPage{
		deps:       deps,
		styles:     styles,
		table:      t,
		sortCol:    -1,
		importPath: pi,
	}
}

// Capturing reports whether a form or path input owns the keyboard.
func (p OpinionsPage) Capturing() bool {
	return p.mode == opinionsEdit || p.mode == opinionsImportPath
}

// SetSize updates the layout size.
func (p *OpinionsPage) SetSize(w, h int) {
	p.width = w
	p.height = h
	p.table.SetWidth(w - 4)
}

func (p OpinionsPage) fetchCmd() tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		deps.Opinions.FetchAll(ctx, deps.Config.API.FetchLimit, 0)
		return opinionsChangedMsg{}
	}
}

func (p OpinionsPage) createCmd(params domain.OpinionParams) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		deps.Opinions.Create(ctx, params)
		return opinionsChangedMsg{}
	}
}

func (p OpinionsPage) updateCmd(writerID, workID int64, params domain.OpinionUpdateParams) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		deps.Opinions.Update(ctx, writerID, workID, params)
		return opinionsChangedMsg{}
	}
}

// snapshotCmd re-fetches the opinion being edited so the form starts from
// server-confirmed state rather than the possibly stale cache row.
func (p OpinionsPage) snapshotCmd(writerID, workID int64) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		opinion, err := deps.OpinionSvc.Get(ctx, writerID, workID)
		if err != nil {
			return opinionSnapshotMsg{}
		}
		return opinionSnapshotMsg{opinion: opinion}
	}
}

func (p OpinionsPage) deleteCmd(writerID, workID int64) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()
		deps.Opinions.Delete(ctx, writerID, workID)
		return opinionDeletedMsg{writerID: writerID, workID: workID}
	}
}

func (p OpinionsPage) exportCmd() tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		path := fmt.Sprintf("opinions-%s.csv", time.Now().Format("2006-01-02"))
		err := os.WriteFile(path, []byte(csvio.ExportOpinions(deps.Opinions.Items())), 0o644)
		return exportedMsg{entity: "opinions", path: path, err: err}
	}
}

func (p OpinionsPage) parseCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return opinionsParsedMsg{err: err}
		}
		result, err := csvio.ImportOpinions(string(data))
		return opinionsParsedMsg{result: result, err: err}
	}
}

func (p OpinionsPage) importCmd(rows []domain.Opinion) tea.Cmd {
	deps := p.deps
	return func() tea.Msg {
		ctx, cancel := deps.opCtx()
		defer cancel()

		params := make([]domain.OpinionParams, 0, len(rows))
		for _, o := range rows {
			params = append(params, domain.OpinionParams{
				WriterID:      o.WriterID,
				WorkID:        o.WorkID,
				Sentiment:     o.Sentiment,
				Quote:         o.Quote,
				Source:        o.Source,
				Page:          o.Page,
				StatementYear: o.StatementYear,
			})
		}
		tally := importer.Run(ctx, params, deps.Config.Import.Workers,
			func(ctx context.Context, row domain.OpinionParams) error {
				_, err := deps.OpinionSvc.Create(ctx, row)
				return err
			},
			func(row domain.OpinionParams) string {
				return fmt.Sprintf("%d-%d", row.WriterID, row.WorkID)
			},
		)

		refresh, cancel2 := deps.opCtx()
		defer cancel2()
		deps.Opinions.FetchAll(refresh, deps.Config.API.FetchLimit, 0)
		return opinionsImportedMsg{tally: tally}
	}
}

func opinionForm(creating bool) Form {
	specs := []FieldSpec{}
	if creating {
		specs = append(specs,
			FieldSpec{Key: "writer_id", Label: "Writer ID", Kind: FieldInt},
			FieldSpec{Key: "work_id", Label: "Work ID", Kind: FieldInt},
		)
	}
	specs = append(specs,
		FieldSpec{Key: "sentiment", Label: "Sentiment", Kind: FieldBool},
		FieldSpec{Key: "quote", Label: "Quote", Kind: FieldText},
		FieldSpec{Key: "source", Label: "Source", Kind: FieldText},
		FieldSpec{Key: "page", Label: "Page", Kind: FieldText, Placeholder: "optional"},
		FieldSpec{Key: "statement_year", Label: "Year stated", Kind: FieldInt, Placeholder: "optional"},
	)
	return NewForm(specs...)
}

// Update handles the page's messages.
func (p OpinionsPage) Update(msg tea.Msg) (OpinionsPage, tea.Cmd) {
	switch msg := msg.(type) {
	case opinionsChangedMsg:
		if p.saving {
			p.saving = false
			p.mode = opinionsBrowse
			p.editingID = ""
		}
		p.reload()
		return p, nil

	case writersChangedMsg, worksChangedMsg:
		// Writer and work names resolve through the sibling caches.
		p.reload()
		return p, nil

	case opinionDeletedMsg:
		if !opinionsContain(p.deps.Opinions.Items(), msg.writerID, msg.workID) {
			p.confirm.Close()
		} else {
			p.confirm.Waiting = false
		}
		p.reload()
		return p, nil

	case opinionsParsedMsg:
		if msg.err != nil {
			p.mode = opinionsBrowse
			p.flash = p.styles.Error.Render("import: " + msg.err.Error())
			return p, nil
		}
		p.preview = msg.result
		p.mode = opinionsImportPreview
		return p, nil

	case opinionsImportedMsg:
		p.mode = opinionsBrowse
		p.flash = importFlash(p.styles, msg.tally)
		p.reload()
		return p, nil

	case opinionSnapshotMsg:
		// Ignore the snapshot if editing moved on or the fetch failed.
		if msg.opinion == nil || p.mode != opinionsEdit || p.editingID != msg.opinion.Key() {
			return p, nil
		}
		p.form.SetBool("sentiment", msg.opinion.Sentiment)
		p.form.SetValue("quote", msg.opinion.Quote)
		p.form.SetValue("source", msg.opinion.Source)
		if msg.opinion.Page != nil {
			p.form.SetValue("page", *msg.opinion.Page)
		}
		if msg.opinion.StatementYear != nil {
			p.form.SetValue("statement_year", strconv.Itoa(*msg.opinion.StatementYear))
		}
		return p, nil

	case exportedMsg:
		if msg.entity == "opinions" {
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

	if p.mode == opinionsBrowse {
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p OpinionsPage) handleKey(msg tea.KeyMsg) (OpinionsPage, tea.Cmd) {
	switch p.mode {
	case opinionsEdit:
		switch msg.String() {
		case "esc":
			p.mode = opinionsBrowse
			p.editingID = ""
			return p, nil
		case "enter":
			if p.editingID == editingNew {
				return p.saveNew()
			}
			return p.saveExisting()
		}
		var cmd tea.Cmd
		p.form, cmd = p.form.Update(msg)
		return p, cmd

	case opinionsImportPath:
		switch msg.String() {
		case "esc":
			p.mode = opinionsBrowse
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

	case opinionsImportPreview:
		switch msg.String() {
		case "esc", "n":
			p.mode = opinionsBrowse
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
				return p, p.deleteCmd(p.deleteWriter, p.deleteWork)
			}
		case "n", "esc":
			p.confirm.Close()
		}
		return p, nil
	}

	switch msg.String() {
	case "n":
		p.mode = opinionsEdit
		p.editingID = editingNew
		p.form = opinionForm(true)
		return p, nil
	case "e", "enter":
		o, ok := p.selected()
		if !ok {
			return p, nil
		}
		p.mode = opinionsEdit
		p.editingID = o.Key()
		p.editWriter = o.WriterID
		p.editWork = o.WorkID
		p.form = opinionForm(false)
		p.form.SetBool("sentiment", o.Sentiment)
		p.form.SetValue("quote", o.Quote)
		p.form.SetValue("source", o.Source)
		if o.Page != nil {
			p.form.SetValue("page", *o.Page)
		}
		if o.StatementYear != nil {
			p.form.SetValue("statement_year", strconv.Itoa(*o.StatementYear))
		}
		return p, p.snapshotCmd(o.WriterID, o.WorkID)
	case "d":
		o, ok := p.selected()
		if !ok {
			return p, nil
		}
		p.deleteWriter = o.WriterID
		p.deleteWork = o.WorkID
		p.confirm.Open(fmt.Sprintf("the opinion of %s about %s",
			p.writerName(o.WriterID), p.workTitle(o.WorkID)))
		return p, nil
	case "r":
		return p, p.fetchCmd()
	case "x":
		return p, p.exportCmd()
	case "i":
		p.mode = opinionsImportPath
		p.importPath.SetValue("")
		p.importPath.Focus()
		return p, nil
	case "]":
		if (p.pageIdx+1)*pageSize < len(p.deps.Opinions.Items()) {
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
		p.sortCol = cycleSortCol(p.sortCol, len(opinionColumns()))
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
		p.deps.Opinions.ClearError()
		return p, nil
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p OpinionsPage) saveNew() (OpinionsPage, tea.Cmd) {
	params := domain.OpinionParams{
		WriterID:      p.form.Int64Value("writer_id"),
		WorkID:        p.form.Int64Value("work_id"),
		Sentiment:     p.form.BoolValue("sentiment"),
		Quote:         p.form.Value("quote"),
		Source:        p.form.Value("source"),
		Page:          p.form.OptionalString("page"),
		StatementYear: p.form.OptionalInt("statement_year"),
	}
	errs := p.form.ParseErrors()
	mergeFieldErrors(errs, params.Validate())
	// Writers cannot opine on their own work. The check runs against the
	// cached work regardless of other field validity, so its error shows
	// alongside theirs instead of waiting for them to clear.
	for _, w := range p.deps.Works.Items() {
		if w.ID == params.WorkID {
			if err := params.CheckAuthorship(w); err != nil {
				if _, seen := errs["writer_id"]; !seen {
					errs["writer_id"] = err
				}
			}
			break
		}
	}
	if len(errs) > 0 {
		p.form.SetErrors(errs)
		return p, nil
	}
	p.form.SetErrors(nil)
	p.saving = true
	return p, p.createCmd(params)
}

func (p OpinionsPage) saveExisting() (OpinionsPage, tea.Cmd) {
	params := domain.OpinionUpdateParams{
		Sentiment:     p.form.BoolValue("sentiment"),
		Quote:         p.form.Value("quote"),
		Source:        p.form.Value("source"),
		Page:          p.form.OptionalString("page"),
		StatementYear: p.form.OptionalInt("statement_year"),
	}
	errs := p.form.ParseErrors()
	mergeFieldErrors(errs, params.Validate())
	if len(errs) > 0 {
		p.form.SetErrors(errs)
		return p, nil
	}
	p.form.SetErrors(nil)
	p.saving = true
	return p, p.updateCmd(p.editWriter, p.editWork, params)
}

func opinionsContain(opinions []domain.Opinion, writerID, workID int64) bool {
	for _, o := range opinions {
		if o.WriterID == writerID && o.WorkID == workID {
			return true
		}
	}
	return false
}

func (p OpinionsPage) selected() (domain.Opinion, bool) {
	items := p.pageItems()
	idx := p.table.Cursor()
	if idx < 0 || idx >= len(items) {
		return domain.Opinion{}, false
	}
	return items[idx], true
}

// sortItems orders by the displayed cell values, so the writer and work
// columns sort by resolved name rather than id.
func (p OpinionsPage) sortItems(items []domain.Opinion) {
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
			return strings.ToLower(p.writerName(a.WriterID)) < strings.ToLower(p.writerName(b.WriterID))
		case 1:
			return strings.ToLower(p.workTitle(a.WorkID)) < strings.ToLower(p.workTitle(b.WorkID))
		case 2:
			return !a.Sentiment && b.Sentiment
		case 3:
			return strings.ToLower(a.Quote) < strings.ToLower(b.Quote)
		default:
			return strings.ToLower(a.Source) < strings.ToLower(b.Source)
		}
	})
}

func (p OpinionsPage) pageItems() []domain.Opinion {
	items := p.deps.Opinions.Items()
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

func (p OpinionsPage) writerName(id int64) string {
	for _, w := range p.deps.Writers.Items() {
		if w.ID == id {
			return w.Name
		}
	}
	return "writer #" + strconv.FormatInt(id, 10)
}

func (p OpinionsPage) workTitle(id int64) string {
	for _, w := range p.deps.Works.Items() {
		if w.ID == id {
			return w.Title
		}
	}
	return "work #" + strconv.FormatInt(id, 10)
}

func (p *OpinionsPage) reload() {
	items := p.deps.Opinions.Items()
	for p.pageIdx > 0 && p.pageIdx*pageSize >= len(items) {
		p.pageIdx--
	}
	p.table.SetColumns(sortedColumns(opinionColumns(), p.sortCol, p.sortAsc))

	rows := make([]table.Row, 0, pageSize)
	for _, o := range p.pageItems() {
		sentiment := "negative"
		if o.Sentiment {
			sentiment = "positive"
		}
		rows = append(rows, table.Row{
			p.writerName(o.WriterID),
			p.workTitle(o.WorkID),
			sentiment,
			o.Quote,
			o.Source,
		})
	}
	p.table.SetRows(rows)
}

// View renders the page.
func (p OpinionsPage) View() string {
	var sb strings.Builder

	sb.WriteString(p.styles.Title.Render("Opinions"))
	sb.WriteString("\n")

	if errMsg := p.deps.Opinions.Err(); errMsg != "" {
		sb.WriteString(p.styles.Banner.Render(errMsg) + p.styles.Muted.Render("  [esc] dismiss"))
		sb.WriteString("\n")
	}
	if p.flash != "" {
		sb.WriteString(p.flash)
		sb.WriteString("\n")
	}

	switch p.mode {
	case opinionsEdit:
		title := "Edit opinion"
		if p.editingID == editingNew {
			title = "New opinion"
		}
		sb.WriteString(p.styles.Dialog.Render(p.styles.Title.Render(title) + "\n" + p.form.View(p.styles)))
		return sb.String()

	case opinionsImportPath:
		sb.WriteString(p.styles.Dialog.Render("Import opinions from CSV\n\n" + p.importPath.View()))
		return sb.String()

	case opinionsImportPreview:
		sb.WriteString(renderImportPreview(p.styles, "opinions", len(p.preview.Data), p.preview.Errors, p.preview.IsValid))
		return sb.String()
	}

	if p.confirm.Active {
		sb.WriteString(p.confirm.View(p.styles))
		sb.WriteString("\n")
	}

	sb.WriteString(p.table.View())
	sb.WriteString("\n")
	sb.WriteString(p.styles.Muted.Render(pageIndicator(p.pageIdx, len(p.deps.Opinions.Items()))))
	if p.deps.Opinions.Loading() {
		sb.WriteString(p.styles.Muted.Render("  loading..."))
	}
	return sb.String()
}

package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/session"
	"github.com/yildizm/CodeLens/internal/table"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// gridView is a table.Grid whose cells are already HTML-escaped
type gridView struct {
	Headers []template.HTML
	Rows    [][]template.HTML
}

type stageButton struct {
	Stage     string
	Number    int
	Title     string
	Enabled   bool
	Selected  bool
	HasErrors bool
}

type statCell struct {
	Label string
	Value int
}

type pageData struct {
	Name       string
	Flash      string
	Snapshot   session.Snapshot
	Submitting bool
	Stages     []stageButton
	Stats      []statCell
	Tokens     gridView
	Categories gridView
	Errors     gridView
}

// newGridView marks cells as safe; callers must render the grid with table.HTML
func newGridView(grid table.Grid) gridView {
	view := gridView{
		Headers: make([]template.HTML, len(grid.Headers)),
		Rows:    make([][]template.HTML, len(grid.Rows)),
	}
	for i, h := range grid.Headers {
		view.Headers[i] = template.HTML(h)
	}
	for i, row := range grid.Rows {
		cells := make([]template.HTML, len(row))
		for j, cell := range row {
			cells[j] = template.HTML(cell)
		}
		view.Rows[i] = cells
	}
	return view
}

func (s *Server) buildPage(flash string) pageData {
	snap := s.session.Snapshot()
	data := pageData{
		Name:       s.opts.Name,
		Flash:      flash,
		Snapshot:   snap,
		Submitting: snap.Status == session.StatusSubmitting,
	}

	for i, stage := range analysis.Stages {
		data.Stages = append(data.Stages, stageButton{
			Stage:     stage.String(),
			Number:    i + 1,
			Title:     stage.Title(),
			Enabled:   snap.Available.Has(stage),
			Selected:  snap.Stage == stage,
			HasErrors: snap.Result.HasErrors(stage),
		})
	}

	if snap.Result == nil {
		return data
	}

	for _, category := range analysis.StatCategories {
		data.Stats = append(data.Stats, statCell{
			Label: analysis.StatLabel(category),
			Value: snap.Result.Stats.Get(category),
		})
	}
	data.Tokens = newGridView(table.Render(table.Tokens(snap.Result.Tokens), table.TokenColumns, table.HTML))
	data.Categories = newGridView(table.Render(table.Categories(snap.Result), table.CategoryColumns, table.HTML))
	data.Errors = newGridView(table.Render(table.Errors(snap.Panel.Errors), table.ErrorColumns, table.HTML))
	return data
}

// renderPage executes the template into a buffer before writing the status
func (s *Server) renderPage(w http.ResponseWriter, _ *http.Request, status int, flash string) {
	var buf bytes.Buffer
	if err := s.template.ExecuteTemplate(&buf, "index.html", s.buildPage(flash)); err != nil {
		s.logger.Error("failed to render page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

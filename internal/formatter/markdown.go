package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/session"
	"github.com/yildizm/CodeLens/internal/table"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct {
	showTokens bool
}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown(showTokens bool) Formatter {
	return &markdownFormatter{showTokens: showTokens}
}

func (f *markdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder
	snap := report.Snapshot

	// Header with generation timestamp
	fmt.Fprintf(&b, "# Code Analysis Report: %s\n\n", markdownCell(report.Name))
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	if snap.Notice != nil {
		fmt.Fprintf(&b, "> **Error:** %s\n\n", markdownCell(snap.Notice.Message))
	}

	if snap.Result == nil {
		return []byte(b.String()), nil
	}

	f.writeSummaryTable(&b, snap.Result)
	f.writeStagesTable(&b, snap)

	if f.showTokens {
		b.WriteString("## Tokens\n\n")
		writeMarkdownGrid(&b, table.Render(snap.Result.Tokens, table.TokenColumns, markdownCell))

		b.WriteString("## Token Categories\n\n")
		writeMarkdownGrid(&b, table.Render(table.Categories(snap.Result), table.CategoryColumns, markdownCell))
	}

	f.writePanel(&b, snap.Panel)

	return []byte(b.String()), nil
}

// writeSummaryTable writes the statistics table
func (f *markdownFormatter) writeSummaryTable(b *strings.Builder, result *analysis.Result) {
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	for _, category := range analysis.StatCategories {
		fmt.Fprintf(b, "| %s | %s |\n", analysis.StatLabel(category), formatNumber(result.Stats.Get(category)))
	}
	b.WriteString("\n")
}

// writeStagesTable writes one row per stage
func (f *markdownFormatter) writeStagesTable(b *strings.Builder, snap session.Snapshot) {
	b.WriteString("## Stages\n\n")
	b.WriteString("| Stage | State | Errors | Message |\n")
	b.WriteString("|-------|-------|--------|---------|\n")
	for _, s := range analysis.Stages {
		status := snap.Result.Status(s)
		fmt.Fprintf(b, "| %s | %s | %d | %s |\n",
			s.Title(), stageState(snap, s), len(snap.Result.Errors(s)), markdownCell(status.Message))
	}
	b.WriteString("\n")
}

// writePanel writes the selected stage's findings
func (f *markdownFormatter) writePanel(b *strings.Builder, panel session.Panel) {
	if panel.Stage == analysis.StageNone {
		return
	}

	fmt.Fprintf(b, "## %s Errors\n\n", panel.Stage.Title())
	if len(panel.Errors) == 0 {
		fmt.Fprintf(b, "%s\n", markdownCell(panel.Message))
		return
	}
	writeMarkdownGrid(b, table.Render(panel.Errors, table.ErrorColumns, markdownCell))
}

func writeMarkdownGrid(b *strings.Builder, grid table.Grid) {
	if grid.Len() == 0 {
		b.WriteString("_None_\n\n")
		return
	}

	b.WriteString("| " + strings.Join(grid.Headers, " | ") + " |\n")
	rule := make([]string, len(grid.Headers))
	for i := range rule {
		rule[i] = "---"
	}
	b.WriteString("|" + strings.Join(rule, "|") + "|\n")
	for _, row := range grid.Rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	b.WriteString("\n")
}

// markdownCell renders untrusted text inert inside a Markdown table cell
func markdownCell(s string) string {
	s = table.HTML(table.Terminal(s))
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "`", "\\`")
	return s
}

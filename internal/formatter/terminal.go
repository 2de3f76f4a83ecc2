package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/session"
	"github.com/yildizm/CodeLens/internal/table"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts       *termfmt.TerminalOptions
	showTokens bool
	compact    bool

	passed  *color.Color
	failed  *color.Color
	muted   *color.Color
	heading *color.Color
}

// NewTerminal creates a new terminal formatter
func NewTerminal(o Options) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = o.Color
	opts.Emoji = o.Emoji

	f := &terminalFormatter{
		opts:       opts,
		showTokens: o.ShowTokens,
		compact:    o.Compact,
		passed:     color.New(color.FgGreen),
		failed:     color.New(color.FgRed, color.Bold),
		muted:      color.New(color.Faint),
		heading:    color.New(color.Bold),
	}
	for _, c := range []*color.Color{f.passed, f.failed, f.muted, f.heading} {
		if o.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder
	snap := report.Snapshot

	f.writeHeader(&b, report.Name)

	if snap.Notice != nil {
		f.writeNotice(&b, snap.Notice)
	}

	if snap.Result == nil {
		if snap.Notice == nil {
			b.WriteString("No analysis result.\n")
		}
		return []byte(b.String()), nil
	}

	f.writeStatistics(&b, snap.Result)
	f.writeStages(&b, snap)

	if f.showTokens && !f.compact {
		f.writeTokens(&b, snap.Result)
	}

	f.writePanel(&b, snap.Panel)

	return []byte(b.String()), nil
}

// writeHeader writes a header with box drawing
func (f *terminalFormatter) writeHeader(b *strings.Builder, name string) {
	header := "Code Analysis Summary: " + table.Terminal(name)
	width := runewidth.StringWidth(header)

	b.WriteString("╔" + strings.Repeat("═", width+2) + "╗\n")
	b.WriteString("║ " + f.heading.Sprint(header) + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", width+2) + "╝\n\n")
}

// writeNotice writes the current failure notice
func (f *terminalFormatter) writeNotice(b *strings.Builder, notice *session.Notice) {
	symbol := termfmt.GetEmoji("error", f.opts)
	fmt.Fprintf(b, "%s %s\n", symbol, f.failed.Sprint(table.Terminal(notice.Message)))
	if notice.Detail != "" && !f.compact {
		fmt.Fprintf(b, "   %s\n", f.muted.Sprint(table.Terminal(notice.Detail)))
	}
	b.WriteString("\n")
}

// writeStatistics writes statistics with tree-style formatting using go-termfmt
func (f *terminalFormatter) writeStatistics(b *strings.Builder, result *analysis.Result) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Statistics\n")

	items := make([]termfmt.TreeItem, 0, len(analysis.StatCategories))
	for i, category := range analysis.StatCategories {
		items = append(items, termfmt.TreeItem{
			Label: analysis.StatLabel(category),
			Value: formatNumber(result.Stats.Get(category)),
			Last:  i == len(analysis.StatCategories)-1,
		})
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeStages writes the gated stage pipeline
func (f *terminalFormatter) writeStages(b *strings.Builder, snap session.Snapshot) {
	b.WriteString(f.heading.Sprint("Stages") + "\n")

	items := make([]termfmt.TreeItem, 0, len(analysis.Stages))
	for i, stage := range analysis.Stages {
		label := stage.Title()
		if stage == snap.Stage {
			label += " *"
		}

		var value string
		switch state := stageState(snap, stage); state {
		case StagePassed:
			value = f.passed.Sprint(string(state))
		case StageFailed:
			value = f.failed.Sprintf("%s (%s)", state, pluralize(len(snap.Result.Errors(stage)), "error"))
		default:
			value = f.muted.Sprint(string(state))
		}

		items = append(items, termfmt.TreeItem{
			Label: label,
			Value: value,
			Last:  i == len(analysis.Stages)-1,
		})
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeTokens writes the token table
func (f *terminalFormatter) writeTokens(b *strings.Builder, result *analysis.Result) {
	b.WriteString(f.heading.Sprint("Tokens") + "\n")
	if len(result.Tokens) == 0 {
		b.WriteString(f.muted.Sprint("(no tokens)") + "\n\n")
		return
	}
	grid := table.Render(result.Tokens, table.TokenColumns, table.Terminal)
	b.WriteString(grid.Text() + "\n")
}

// writePanel writes the selected stage's errors or the success message
func (f *terminalFormatter) writePanel(b *strings.Builder, panel session.Panel) {
	if panel.Stage == analysis.StageNone {
		return
	}

	fmt.Fprintf(b, "%s\n", f.heading.Sprintf("%s Errors", panel.Stage.Title()))

	if panel.Success {
		symbol := termfmt.GetEmoji("success", f.opts)
		fmt.Fprintf(b, "%s %s\n", symbol, f.passed.Sprint(panel.Message))
		return
	}

	if len(panel.Errors) == 0 {
		fmt.Fprintf(b, "%s\n", f.passed.Sprint(panel.Message))
		return
	}

	grid := table.Render(panel.Errors, table.ErrorColumns, table.Terminal)
	b.WriteString(grid.Text())
}

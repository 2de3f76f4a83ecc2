package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/emoji"
	"github.com/yildizm/CodeLens/internal/table"
	"github.com/yildizm/CodeLens/internal/ui/components"
)

const cardWidth = 18

// View renders the whole screen
func (m *InteractiveModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.renderLoadingScreen()
	}

	sections := []string{
		m.renderHeader(),
		m.renderEditor(),
	}
	if m.snap.Notice != nil {
		sections = append(sections, m.renderNotice())
	}
	sections = append(sections,
		m.renderStageBar(),
		m.renderStats(),
		m.renderRecords(),
		m.renderPanel(),
		m.renderHelp(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *InteractiveModel) renderLoadingScreen() string {
	loading := m.styles.render(m.styles.Title, "Starting CodeLens...")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, loading)
}

func (m *InteractiveModel) renderHeader() string {
	title := m.styles.render(m.styles.Title, emoji.GetEmoji("code")+" CodeLens")
	if m.opts.Name != "" {
		title += m.styles.render(m.styles.Muted, " "+m.opts.Name)
	}

	status := m.styles.render(m.styles.Muted, "ready")
	switch {
	case m.pending:
		status = m.spinner.View() + " " + m.styles.render(m.styles.Warning, "analyzing...")
	case m.snap.HasResult():
		status = m.styles.render(m.styles.Valid, fmt.Sprintf("%d tokens, %d errors",
			len(m.snap.Result.Tokens), m.snap.Result.ErrorCount()))
	}
	return title + "  " + status
}

func (m *InteractiveModel) renderEditor() string {
	box := m.styles.Blurred
	if m.focus == FocusEditor {
		box = m.styles.Focused
	}
	return box.Render(m.editor.View())
}

func (m *InteractiveModel) renderNotice() string {
	notice := m.snap.Notice
	lines := []string{m.styles.render(m.styles.Invalid, emoji.GetEmoji("error")+" "+notice.Message)}
	if notice.Detail != "" && notice.Detail != notice.Message {
		lines = append(lines, m.styles.render(m.styles.Muted, notice.Detail))
	}
	if notice.Dismissible {
		lines = append(lines, m.styles.render(m.styles.Help, "esc to dismiss"))
	}
	return m.styles.Notice.Render(strings.Join(lines, "\n"))
}

// renderStageBar draws the three stage selectors; locked stages cannot be chosen
func (m *InteractiveModel) renderStageBar() string {
	parts := make([]string, 0, len(analysis.Stages))
	for i, stage := range analysis.Stages {
		label := fmt.Sprintf("[%d] %s %s", i+1, emoji.GetEmoji(stage.String()), stage.Title())

		switch {
		case !m.snap.Available.Has(stage):
			label = m.styles.render(m.styles.Locked, emoji.GetEmoji("locked")+" "+label)
		case stage == m.snap.Stage:
			label = m.styles.render(m.styles.Selected, " "+label+" ")
		case m.snap.Result.HasErrors(stage):
			label = m.styles.render(m.styles.Invalid, label)
		default:
			label = m.styles.render(m.styles.Valid, label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "   ")
}

func (m *InteractiveModel) renderStats() string {
	columns := max(m.width/cardWidth, 1)
	dashboard := components.CreateResultStats(m.snap.Result, columns)
	dashboard.SetCardSize(cardWidth-2, 2)
	return dashboard.Render()
}

func (m *InteractiveModel) renderRecords() string {
	heading := "Tokens"
	if m.view == ViewCategories {
		heading = "Token categories"
	}
	heading = m.styles.render(m.styles.Header, emoji.GetEmoji("token")+" "+heading)

	box := m.styles.Blurred
	if m.focus == FocusResults {
		box = m.styles.Focused
	}

	body := m.records.View()
	if len(m.records.Rows()) == 0 {
		body = m.styles.render(m.styles.Muted, "no tokens yet, press ctrl+s to analyze")
	}
	return box.Render(heading + "\n" + body)
}

// renderPanel draws the errors of the selected stage
func (m *InteractiveModel) renderPanel() string {
	panel := m.snap.Panel
	width := max(m.width-2, 0)

	if panel.Stage == analysis.StageNone {
		box := components.NewSummaryBox("Errors", width)
		box.AddLine("no stage selected")
		return box.Render()
	}

	box := components.NewSummaryBox(panel.Stage.Title()+" errors", width)
	switch {
	case panel.Success:
		box.Status = components.StatusSuccess
		box.AddLine(emoji.GetEmoji("success") + " " + panel.Message)
	case len(panel.Errors) == 0:
		box.Status = components.StatusSuccess
		box.AddLine(panel.Message)
	default:
		box.Status = components.StatusError
		grid := table.Render(table.Errors(panel.Errors), table.ErrorColumns, table.Terminal)
		box.AddLines(grid.Text())
	}
	return box.Render()
}

func (m *InteractiveModel) renderHelp() string {
	help := "ctrl+s analyze • tab switch pane • esc dismiss • ctrl+c quit"
	if m.focus == FocusResults {
		help = "1/2/3 stage • t tokens/categories • ↑/↓ scroll • ctrl+s analyze • tab edit • q quit"
	}
	return m.styles.render(m.styles.Help, help)
}

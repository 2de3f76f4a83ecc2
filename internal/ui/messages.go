package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/session"
)

// Common message types shared across UI models
type analysisCompleteMsg struct {
	result *analysis.Result
}

type analysisErrorMsg struct {
	err error
}

// CreateAnalysisCommand creates a tea command that submits the session source
func CreateAnalysisCommand(ctx context.Context, sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		result, err := sess.Submit(ctx)
		if err != nil {
			return analysisErrorMsg{err: err}
		}
		return analysisCompleteMsg{result: result}
	}
}

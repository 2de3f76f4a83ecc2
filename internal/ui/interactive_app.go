package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	bubbletable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/session"
	"github.com/yildizm/CodeLens/internal/table"
)

const (
	defaultTableHeight = 12
	maxColumnWidth     = 60
	minEditorHeight    = 5
)

// InteractiveModel is the terminal presentation surface over a session
type InteractiveModel struct {
	ctx     context.Context
	session *session.Session
	styles  *Styles
	opts    Options

	editor  textarea.Model
	records bubbletable.Model
	spinner spinner.Model

	snap    session.Snapshot
	focus   Focus
	view    RecordView
	pending bool

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewInteractiveModel creates a model editing the session source
func NewInteractiveModel(ctx context.Context, sess *session.Session, opts Options) *InteractiveModel {
	if opts.TableHeight <= 0 {
		opts.TableHeight = defaultTableHeight
	}

	editor := textarea.New()
	editor.Placeholder = "Type or paste code to analyze..."
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.SetValue(sess.Source())
	editor.Focus()

	records := bubbletable.New(
		bubbletable.WithHeight(opts.TableHeight),
		bubbletable.WithFocused(false),
	)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := &InteractiveModel{
		ctx:     ctx,
		session: sess,
		styles:  GetStyles(),
		opts:    opts,
		editor:  editor,
		records: records,
		spinner: spin,
		focus:   FocusEditor,
		view:    ViewTokens,
	}
	m.refresh()
	return m
}

// Init initializes the interactive model
func (m *InteractiveModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and navigation
func (m *InteractiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case spinner.TickMsg:
		return m.handleSpinner(msg)
	case analysisCompleteMsg:
		return m.handleAnalysisComplete(msg)
	case analysisErrorMsg:
		return m.handleAnalysisError(msg)
	}

	if m.focus == FocusEditor {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Snapshot returns the session state the view was last drawn from
func (m *InteractiveModel) Snapshot() session.Snapshot {
	return m.snap
}

// Focus returns the pane receiving key input
func (m *InteractiveModel) Focus() Focus {
	return m.focus
}

// refresh re-reads the session and rebuilds the records table
func (m *InteractiveModel) refresh() {
	m.snap = m.session.Snapshot()

	var grid table.Grid
	switch m.view {
	case ViewCategories:
		grid = table.Render(table.Categories(m.snap.Result), table.CategoryColumns, table.Terminal)
	default:
		var tokens []analysis.Token
		if m.snap.Result != nil {
			tokens = m.snap.Result.Tokens
		}
		grid = table.Render(table.Tokens(tokens), table.TokenColumns, table.Terminal)
	}

	columns, rows := toBubbleTable(grid)
	// rows must never be wider than the columns being installed
	m.records.SetRows(nil)
	m.records.SetColumns(columns)
	m.records.SetRows(rows)
	m.records.GotoTop()
}

func toBubbleTable(grid table.Grid) ([]bubbletable.Column, []bubbletable.Row) {
	widths := grid.Widths()
	columns := make([]bubbletable.Column, len(grid.Headers))
	for i, header := range grid.Headers {
		columns[i] = bubbletable.Column{Title: header, Width: min(widths[i], maxColumnWidth)}
	}

	rows := make([]bubbletable.Row, len(grid.Rows))
	for i, row := range grid.Rows {
		rows[i] = bubbletable.Row(row)
	}
	return columns, rows
}

// Handler functions for Update method

// handleWindowResize handles window resize events
func (m *InteractiveModel) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.editor.SetWidth(max(msg.Width-4, 20))
	m.editor.SetHeight(max(msg.Height/4, minEditorHeight))
	m.records.SetWidth(max(msg.Width-4, 20))
	return m, nil
}

// handleKeyPress dispatches keyboard input by focus
func (m *InteractiveModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.handleQuit()
	case "ctrl+s":
		return m.handleSubmit()
	case "tab":
		return m.handleToggleFocus()
	case "esc":
		return m.handleDismiss()
	}

	if m.focus == FocusEditor {
		return m.handleEdit(msg)
	}

	switch msg.String() {
	case "q":
		return m.handleQuit()
	case "e":
		return m.handleToggleFocus()
	case "1", "2", "3":
		return m.handleStageKey(msg.String())
	case "t":
		return m.handleToggleView()
	}

	var cmd tea.Cmd
	m.records, cmd = m.records.Update(msg)
	return m, cmd
}

// handleQuit handles quit commands
func (m *InteractiveModel) handleQuit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// handleSubmit starts an analysis unless one is pending
func (m *InteractiveModel) handleSubmit() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	m.pending = true
	return m, tea.Batch(m.spinner.Tick, CreateAnalysisCommand(m.ctx, m.session))
}

// handleToggleFocus moves input between the editor and the results
func (m *InteractiveModel) handleToggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == FocusEditor {
		m.focus = FocusResults
		m.editor.Blur()
		m.records.Focus()
		return m, nil
	}

	m.focus = FocusEditor
	m.records.Blur()
	return m, m.editor.Focus()
}

// handleDismiss clears the current notice
func (m *InteractiveModel) handleDismiss() (tea.Model, tea.Cmd) {
	if m.snap.Notice != nil {
		m.session.DismissNotice()
		m.snap = m.session.Snapshot()
	}
	return m, nil
}

// handleEdit forwards a key to the editor and pushes changed text into the session
func (m *InteractiveModel) handleEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)

	if text := m.editor.Value(); text != m.snap.Source {
		m.session.SetSource(text)
		m.refresh()
	}
	return m, cmd
}

// handleStageKey selects a stage by its 1-based position
func (m *InteractiveModel) handleStageKey(key string) (tea.Model, tea.Cmd) {
	var requested analysis.Stage
	switch key {
	case "1":
		requested = analysis.StageLexical
	case "2":
		requested = analysis.StageSyntactic
	case "3":
		requested = analysis.StageSemantic
	}

	if m.session.SelectStage(requested) {
		m.snap = m.session.Snapshot()
	}
	return m, nil
}

// handleToggleView switches the records table between tokens and categories
func (m *InteractiveModel) handleToggleView() (tea.Model, tea.Cmd) {
	if m.view == ViewTokens {
		m.view = ViewCategories
	} else {
		m.view = ViewTokens
	}
	m.refresh()
	return m, nil
}

// handleSpinner advances the spinner while a request is pending
func (m *InteractiveModel) handleSpinner(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if !m.pending {
		return m, nil
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// handleAnalysisComplete shows the new result and moves focus to it
func (m *InteractiveModel) handleAnalysisComplete(_ analysisCompleteMsg) (tea.Model, tea.Cmd) {
	m.pending = false
	m.refresh()

	m.focus = FocusResults
	m.editor.Blur()
	m.records.Focus()
	return m, nil
}

// handleAnalysisError keeps the editor as-is; the failure is on the session notice
func (m *InteractiveModel) handleAnalysisError(_ analysisErrorMsg) (tea.Model, tea.Cmd) {
	m.pending = false
	m.refresh()
	return m, nil
}

// Run runs the interactive TUI until the user quits
func Run(ctx context.Context, sess *session.Session, opts Options) error {
	if opts.Theme != "" && !SetThemeByName(opts.Theme) {
		return fmt.Errorf("unknown theme %q (available: %v)", opts.Theme, GetAvailableThemes())
	}

	model := NewInteractiveModel(ctx, sess, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

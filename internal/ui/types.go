package ui

// Focus is the pane receiving key input
type Focus int

const (
	FocusEditor Focus = iota
	FocusResults
)

// RecordView selects what the records table shows
type RecordView int

const (
	ViewTokens RecordView = iota
	ViewCategories
)

// Options configures the terminal UI
type Options struct {
	Name        string
	Theme       string
	TableHeight int
}

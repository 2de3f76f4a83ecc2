package formatter

import (
	"fmt"
	"time"

	"github.com/yildizm/CodeLens/internal/session"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// Report is one formatted view of a session
type Report struct {
	// Name identifies the analyzed source, usually a file path
	Name        string
	GeneratedAt time.Time
	Snapshot    session.Snapshot
}

// NewReport creates a report of the given session snapshot
func NewReport(name string, snap session.Snapshot) *Report {
	if name == "" {
		name = "<stdin>"
	}
	return &Report{
		Name:        name,
		GeneratedAt: time.Now(),
		Snapshot:    snap,
	}
}

// Options tune the human-oriented formatters
type Options struct {
	Color      bool
	Emoji      bool
	ShowTokens bool
	Compact    bool
}

// New returns the formatter for an output format name
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(opts), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(opts.ShowTokens), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (must be one of: text, json, markdown, csv)", format)
	}
}

// Package table projects ordered records onto a column-driven display grid.
//
// A Column carries an ordered list of accessors; the first accessor that
// yields a value wins and an exhausted chain renders as an empty cell.
// Rendering never mutates the records and never fails.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
)

// Record is anything that can look up a field by name
type Record interface {
	Field(name string) (any, bool)
}

// keyed records can enumerate their field names for case-folded lookup
type keyed interface {
	Keys() []string
}

// Fields is a loosely typed record, as decoded from JSON
type Fields map[string]any

// Field implements Record
func (f Fields) Field(name string) (any, bool) {
	v, ok := f[name]
	return v, ok
}

// Keys returns the field names of the record
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	return keys
}

// Accessor derives a cell value from a record and its 0-based position
type Accessor func(rec Record, index int) (any, bool)

// Field reads a named field
func Field(name string) Accessor {
	return func(rec Record, _ int) (any, bool) {
		return present(rec.Field(name))
	}
}

// FoldedField reads a named field, ignoring case when no exact match exists
func FoldedField(name string) Accessor {
	return func(rec Record, _ int) (any, bool) {
		if v, ok := present(rec.Field(name)); ok {
			return v, true
		}

		fold := cases.Fold()
		want := fold.String(name)
		if v, ok := present(rec.Field(want)); ok {
			return v, true
		}

		k, ok := rec.(keyed)
		if !ok {
			return nil, false
		}
		for _, key := range k.Keys() {
			if fold.String(key) == want {
				if v, ok := present(rec.Field(key)); ok {
					return v, true
				}
			}
		}
		return nil, false
	}
}

// RowIndex yields the 1-based row number regardless of record content
func RowIndex() Accessor {
	return func(_ Record, index int) (any, bool) {
		return index + 1, true
	}
}

// Fallback tries each accessor in order
func Fallback(accessors ...Accessor) Accessor {
	return func(rec Record, index int) (any, bool) {
		for _, a := range accessors {
			if v, ok := a(rec, index); ok {
				return v, true
			}
		}
		return nil, false
	}
}

// Column describes one displayed column. Raw cells are computed values that
// bypass the sanitizer.
type Column struct {
	Header    string
	Accessors []Accessor
	Raw       bool
}

// NewColumn creates a free-text column resolved through a fallback chain
func NewColumn(header string, accessors ...Accessor) Column {
	return Column{Header: header, Accessors: accessors}
}

// IndexColumn creates a 1-based row number column
func IndexColumn(header string) Column {
	return Column{Header: header, Accessors: []Accessor{RowIndex()}, Raw: true}
}

func (c Column) cell(rec Record, index int, sanitize Sanitizer) string {
	v, ok := Fallback(c.Accessors...)(rec, index)
	if !ok {
		return ""
	}
	text := stringify(v)
	if c.Raw {
		return text
	}
	return sanitize(text)
}

// Grid is the rendered table
type Grid struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Render projects records onto columns. A nil sanitizer escapes HTML.
func Render[R Record](records []R, columns []Column, sanitize Sanitizer) Grid {
	if sanitize == nil {
		sanitize = HTML
	}

	grid := Grid{
		Headers: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(records)),
	}
	for i, col := range columns {
		grid.Headers[i] = sanitize(col.Header)
	}

	for i, rec := range records {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = col.cell(rec, i, sanitize)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// Len returns the number of rows
func (g Grid) Len() int {
	return len(g.Rows)
}

// Widths returns the display width of each column, headers included
func (g Grid) Widths() []int {
	widths := make([]int, len(g.Headers))
	for i, h := range g.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range g.Rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// Text renders the grid as aligned plain text
func (g Grid) Text() string {
	if len(g.Headers) == 0 {
		return ""
	}

	widths := g.Widths()
	var b strings.Builder

	writeRow := func(cells []string) {
		line := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			line[i] = runewidth.FillRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(line, "  "), " "))
		b.WriteByte('\n')
	}

	writeRow(g.Headers)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	b.WriteString(strings.Join(rule, "  "))
	b.WriteByte('\n')
	for _, row := range g.Rows {
		writeRow(row)
	}
	return b.String()
}

func present(v any, ok bool) (any, bool) {
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

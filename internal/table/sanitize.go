package table

import (
	"fmt"
	"html"
	"strings"
	"unicode"
)

// Sanitizer renders untrusted text inert for a display surface
type Sanitizer func(string) string

// HTML escapes markup-significant characters
func HTML(s string) string {
	return html.EscapeString(s)
}

// Terminal replaces control characters, including the ESC that starts ANSI
// sequences, with visible escapes. Tabs and newlines collapse to a space so
// a cell stays on one line.
func Terminal(s string) string {
	if !strings.ContainsFunc(s, unicode.IsControl) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch {
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case unicode.IsControl(r):
			fmt.Fprintf(&b, "\\x%02x", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Plain leaves text unchanged, for encoders that do their own quoting
func Plain(s string) string {
	return s
}

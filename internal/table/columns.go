package table

import (
	"strings"

	"github.com/yildizm/CodeLens/internal/analysis"
)

// TokenColumns lists the token table: row number, type badge, literal value, line.
var TokenColumns = []Column{
	IndexColumn("#"),
	NewColumn("Type", Field("type"), FoldedField("tipo")),
	NewColumn("Value", Field("value"), FoldedField("valor")),
	NewColumn("Line", Field("line"), FoldedField("line"), FoldedField("linea"), FoldedField("línea")),
}

// ErrorColumns lists the stage error table
var ErrorColumns = []Column{
	IndexColumn("#"),
	NewColumn("Line", Field("line"), FoldedField("line"), FoldedField("linea"), FoldedField("línea")),
	NewColumn("Error", Field("message"), Field("error"), FoldedField("error"), FoldedField("mensaje")),
}

// CategoryColumns lists the per-category token group table
var CategoryColumns = []Column{
	IndexColumn("#"),
	NewColumn("Category", Field("category")),
	NewColumn("Count", Field("count")),
	NewColumn("Tokens", Field("tokens")),
}

// Tokens adapts a token list to records
func Tokens(tokens []analysis.Token) []Record {
	out := make([]Record, len(tokens))
	for i, t := range tokens {
		out[i] = t
	}
	return out
}

// Errors adapts an error list to records
func Errors(errs []analysis.ErrorRecord) []Record {
	out := make([]Record, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// Categories groups a result's tokens by type, in order of first appearance.
// Each record carries the category, its token count and the token values.
func Categories(result *analysis.Result) []Record {
	if result == nil {
		return []Record{}
	}

	groups := result.TokensByType()
	var order []string
	seen := make(map[string]bool, len(groups))
	for _, tok := range result.Tokens {
		if !seen[tok.Type] {
			seen[tok.Type] = true
			order = append(order, tok.Type)
		}
	}

	out := make([]Record, 0, len(order))
	for _, category := range order {
		toks := groups[category]
		values := make([]string, len(toks))
		for i, t := range toks {
			values[i] = t.Value
		}
		out = append(out, Fields{
			"category": category,
			"count":    len(toks),
			"tokens":   strings.Join(values, " "),
		})
	}
	return out
}

package analysis

// Stage identifies one analysis phase produced by the service
type Stage string

const (
	StageNone      Stage = ""
	StageLexical   Stage = "lexical"
	StageSyntactic Stage = "syntactic"
	StageSemantic  Stage = "semantic"
)

// Stages lists the analysis phases in pipeline order
var Stages = []Stage{StageLexical, StageSyntactic, StageSemantic}

// String returns the stage name
func (s Stage) String() string {
	if s == StageNone {
		return "none"
	}
	return string(s)
}

// Title returns a display label for the stage
func (s Stage) Title() string {
	switch s {
	case StageLexical:
		return "Lexical"
	case StageSyntactic:
		return "Syntactic"
	case StageSemantic:
		return "Semantic"
	default:
		return "None"
	}
}

// ParseStage converts a stage name or its common abbreviation to a Stage
func ParseStage(name string) (Stage, bool) {
	switch name {
	case "lexical", "lex", "1":
		return StageLexical, true
	case "syntactic", "syn", "2":
		return StageSyntactic, true
	case "semantic", "sem", "3":
		return StageSemantic, true
	default:
		return StageNone, false
	}
}

// Stat category names
const (
	StatTotalTokens = "total_tokens"
	StatKeywords    = "keywords"
	StatIdentifiers = "identifiers"
	StatSymbols     = "symbols"
	StatNumbers     = "numbers"
	StatStrings     = "strings"
	StatComments    = "comments"
)

// StatCategories lists stat categories in display order
var StatCategories = []string{
	StatTotalTokens,
	StatKeywords,
	StatIdentifiers,
	StatSymbols,
	StatNumbers,
	StatStrings,
	StatComments,
}

// StatLabel returns the human-readable label of a stat category
func StatLabel(category string) string {
	switch category {
	case StatTotalTokens:
		return "Total Tokens"
	case StatKeywords:
		return "Keywords"
	case StatIdentifiers:
		return "Identifiers"
	case StatSymbols:
		return "Symbols"
	case StatNumbers:
		return "Numbers"
	case StatStrings:
		return "Strings"
	case StatComments:
		return "Comments"
	default:
		return category
	}
}

// Stats maps a stat category to its count
type Stats map[string]int

// Get returns the count for a category, zero when missing
func (s Stats) Get(category string) int {
	if s == nil {
		return 0
	}
	return s[category]
}

// Token is a single lexical token reported by the service
type Token struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Line  int    `json:"line"`
}

// Field implements table.Record
func (t Token) Field(name string) (any, bool) {
	switch name {
	case "type":
		return t.Type, true
	case "value":
		return t.Value, true
	case "line":
		return t.Line, true
	}
	return nil, false
}

// ErrorRecord is one finding of an analysis stage. Line is zero when the
// service did not report one.
type ErrorRecord struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// Field implements table.Record
func (e ErrorRecord) Field(name string) (any, bool) {
	switch name {
	case "line":
		if e.Line == 0 {
			return nil, false
		}
		return e.Line, true
	case "message":
		return e.Message, true
	}
	return nil, false
}

// StageStatus is the validity verdict of one stage
type StageStatus struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Result is the canonical, shape-independent analysis result
type Result struct {
	Stats       Stats                   `json:"stats"`
	Tokens      []Token                 `json:"tokens"`
	StageErrors map[Stage][]ErrorRecord `json:"stage_errors"`
	StageStatus map[Stage]StageStatus   `json:"stage_status"`
}

// Errors returns the findings of a stage; absent lists are empty
func (r *Result) Errors(stage Stage) []ErrorRecord {
	if r == nil || r.StageErrors == nil {
		return nil
	}
	return r.StageErrors[stage]
}

// HasErrors reports whether a stage produced any findings
func (r *Result) HasErrors(stage Stage) bool {
	return len(r.Errors(stage)) > 0
}

// Status returns the validity verdict of a stage
func (r *Result) Status(stage Stage) StageStatus {
	if r == nil || r.StageStatus == nil {
		return StageStatus{}
	}
	return r.StageStatus[stage]
}

// ErrorCount returns the number of findings across all stages
func (r *Result) ErrorCount() int {
	total := 0
	for _, stage := range Stages {
		total += len(r.Errors(stage))
	}
	return total
}

// TokensByType groups tokens by their type, preserving source order inside each group
func (r *Result) TokensByType() map[string][]Token {
	groups := make(map[string][]Token)
	if r == nil {
		return groups
	}
	for _, tok := range r.Tokens {
		groups[tok.Type] = append(groups[tok.Type], tok)
	}
	return groups
}

// Clone returns a deep copy of the result
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := &Result{
		Stats:       make(Stats, len(r.Stats)),
		Tokens:      make([]Token, len(r.Tokens)),
		StageErrors: make(map[Stage][]ErrorRecord, len(Stages)),
		StageStatus: make(map[Stage]StageStatus, len(Stages)),
	}
	for k, v := range r.Stats {
		out.Stats[k] = v
	}
	copy(out.Tokens, r.Tokens)
	for stage, errs := range r.StageErrors {
		cp := make([]ErrorRecord, len(errs))
		copy(cp, errs)
		out.StageErrors[stage] = cp
	}
	for stage, status := range r.StageStatus {
		out.StageStatus[stage] = status
	}
	return out
}

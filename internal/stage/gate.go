// Package stage derives which analysis stages can be selected from a result
// and reconciles the current selection against it.
package stage

import (
	"github.com/yildizm/CodeLens/internal/analysis"
)

// Set is the selectable state of each stage
type Set struct {
	Lexical   bool `json:"lexical"`
	Syntactic bool `json:"syntactic"`
	Semantic  bool `json:"semantic"`
}

// Has reports whether a stage is selectable
func (s Set) Has(stage analysis.Stage) bool {
	switch stage {
	case analysis.StageLexical:
		return s.Lexical
	case analysis.StageSyntactic:
		return s.Syntactic
	case analysis.StageSemantic:
		return s.Semantic
	default:
		return false
	}
}

// List returns the selectable stages in pipeline order
func (s Set) List() []analysis.Stage {
	var out []analysis.Stage
	for _, stage := range analysis.Stages {
		if s.Has(stage) {
			out = append(out, stage)
		}
	}
	return out
}

// Available computes the selectable stages. Without a result nothing is
// selectable; each later stage requires the previous one to be selectable
// and free of errors.
func Available(result *analysis.Result) Set {
	if result == nil {
		return Set{}
	}

	set := Set{Lexical: true}
	set.Syntactic = set.Lexical && !result.HasErrors(analysis.StageLexical)
	set.Semantic = set.Syntactic && !result.HasErrors(analysis.StageSyntactic)
	return set
}

// Select returns requested when it is selectable and current otherwise
func Select(result *analysis.Result, current, requested analysis.Stage) analysis.Stage {
	if Available(result).Has(requested) {
		return requested
	}
	return current
}

// Reconcile clears the selection when there is no result and falls back to
// lexical when the current stage is no longer selectable.
func Reconcile(result *analysis.Result, current analysis.Stage) analysis.Stage {
	if result == nil {
		return analysis.StageNone
	}
	if Available(result).Has(current) {
		return current
	}
	return analysis.StageLexical
}

package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yildizm/CodeLens/internal/analysis"
)

func resultWith(lex, syn, sem int) *analysis.Result {
	r := &analysis.Result{StageErrors: map[analysis.Stage][]analysis.ErrorRecord{}}
	counts := map[analysis.Stage]int{
		analysis.StageLexical:   lex,
		analysis.StageSyntactic: syn,
		analysis.StageSemantic:  sem,
	}
	for stage, n := range counts {
		for i := 0; i < n; i++ {
			r.StageErrors[stage] = append(r.StageErrors[stage], analysis.ErrorRecord{Line: i + 1, Message: "err"})
		}
	}
	return analysis.NormalizeResult(r)
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name   string
		result *analysis.Result
		want   Set
	}{
		{"no result", nil, Set{}},
		{"clean", resultWith(0, 0, 0), Set{Lexical: true, Syntactic: true, Semantic: true}},
		{"lexical errors", resultWith(1, 0, 0), Set{Lexical: true}},
		{"syntactic errors", resultWith(0, 2, 0), Set{Lexical: true, Syntactic: true}},
		{"semantic errors", resultWith(0, 0, 1), Set{Lexical: true, Syntactic: true, Semantic: true}},
		{"lexical and syntactic errors", resultWith(1, 1, 0), Set{Lexical: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Available(tt.result))
		})
	}
}

func TestSelect(t *testing.T) {
	clean := resultWith(0, 0, 0)
	lexErr := resultWith(1, 0, 0)

	assert.Equal(t, analysis.StageSemantic, Select(clean, analysis.StageLexical, analysis.StageSemantic))
	assert.Equal(t, analysis.StageLexical, Select(lexErr, analysis.StageLexical, analysis.StageSyntactic))
	assert.Equal(t, analysis.StageNone, Select(nil, analysis.StageNone, analysis.StageLexical))
	assert.Equal(t, analysis.StageLexical, Select(clean, analysis.StageLexical, analysis.Stage("bogus")))
}

func TestReconcile(t *testing.T) {
	assert.Equal(t, analysis.StageNone, Reconcile(nil, analysis.StageSemantic))
	assert.Equal(t, analysis.StageLexical, Reconcile(resultWith(1, 0, 0), analysis.StageSyntactic))
	assert.Equal(t, analysis.StageLexical, Reconcile(resultWith(1, 0, 0), analysis.StageSemantic))
	assert.Equal(t, analysis.StageLexical, Reconcile(resultWith(0, 0, 0), analysis.StageNone))
	assert.Equal(t, analysis.StageSemantic, Reconcile(resultWith(0, 0, 3), analysis.StageSemantic))
}

func TestSetList(t *testing.T) {
	assert.Empty(t, Set{}.List())
	assert.Equal(t, []analysis.Stage{analysis.StageLexical, analysis.StageSyntactic},
		Set{Lexical: true, Syntactic: true}.List())
}

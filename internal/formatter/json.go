package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/session"
	"github.com/yildizm/CodeLens/internal/stage"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

func (f *jsonFormatter) Format(report *Report) ([]byte, error) {
	snap := report.Snapshot
	output := &JSONOutput{
		Name:        report.Name,
		GeneratedAt: report.GeneratedAt,
		Status:      snap.Status,
		Stage:       snap.Stage,
		Available:   snap.Available,
		Notice:      snap.Notice,
	}

	if snap.Result != nil {
		output.Summary = createSummary(snap)
		output.Result = snap.Result
		output.Panel = &snap.Panel
	}

	return json.MarshalIndent(output, "", "  ")
}

// JSONOutput represents the JSON report structure
type JSONOutput struct {
	Name        string           `json:"name"`
	GeneratedAt time.Time        `json:"generated_at"`
	Status      session.Status   `json:"status"`
	Summary     *SummaryOutput   `json:"summary,omitempty"`
	Stage       analysis.Stage   `json:"stage"`
	Available   stage.Set        `json:"available"`
	Result      *analysis.Result `json:"result,omitempty"`
	Panel       *session.Panel   `json:"panel,omitempty"`
	Notice      *session.Notice  `json:"notice,omitempty"`
}

// SummaryOutput represents the summary section
type SummaryOutput struct {
	TotalTokens int                           `json:"total_tokens"`
	ErrorCount  int                           `json:"error_count"`
	Stages      map[analysis.Stage]StageState `json:"stages"`
}

func createSummary(snap session.Snapshot) *SummaryOutput {
	summary := &SummaryOutput{
		TotalTokens: snap.Result.Stats.Get(analysis.StatTotalTokens),
		ErrorCount:  snap.Result.ErrorCount(),
		Stages:      make(map[analysis.Stage]StageState, len(analysis.Stages)),
	}
	for _, s := range analysis.Stages {
		summary.Stages[s] = stageState(snap, s)
	}
	return summary
}

package formatter

import (
	"fmt"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/session"
)

// StageState summarizes one stage for display
type StageState string

const (
	StagePassed  StageState = "passed"
	StageFailed  StageState = "failed"
	StageBlocked StageState = "blocked"
	StageLocked  StageState = "locked"
)

// stageState derives the display state of a stage from a snapshot
func stageState(snap session.Snapshot, stage analysis.Stage) StageState {
	if !snap.Available.Has(stage) {
		return StageLocked
	}
	status := snap.Result.Status(stage)
	switch {
	case status.Valid:
		return StagePassed
	case snap.Result.HasErrors(stage):
		return StageFailed
	default:
		return StageBlocked
	}
}

// formatNumber formats numbers with commas for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return addCommas(fmt.Sprintf("%d", n))
}

// addCommas adds commas to number strings
func addCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return addCommas(s[:len(s)-3]) + "," + s[len(s)-3:]
}

// pluralize returns "1 error" / "2 errors"
func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%s %ss", formatNumber(n), noun)
}

package monitor

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/yildizm/CodeLens/internal/analysis"
)

// WriteSummary writes a short human-readable report of snap
func WriteSummary(w io.Writer, snap Snapshot) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Session metrics (uptime %s)\n", snap.Uptime.Round(time.Second))
	for _, op := range snap.Operations {
		if op.Count == 0 {
			continue
		}
		fmt.Fprintf(&b, "  %-14s %4d runs, %d failed, avg %s, max %s\n",
			op.Operation, op.Count, op.ErrorCount, roundDuration(op.AvgTime()), roundDuration(op.MaxTime))
	}

	a := snap.Analysis
	if a.Results > 0 {
		fmt.Fprintf(&b, "  %-14s %4d results, %d clean, %d tokens\n", "results", a.Results, a.CleanResults, a.TokensProcessed)
		parts := make([]string, 0, len(analysis.Stages))
		for _, stage := range analysis.Stages {
			parts = append(parts, fmt.Sprintf("%s %d", stage, a.StageErrors[stage]))
		}
		fmt.Fprintf(&b, "  %-14s %s\n", "stage errors", strings.Join(parts, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(100 * time.Microsecond)
	default:
		return d
	}
}

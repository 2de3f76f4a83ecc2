package monitor

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yildizm/CodeLens/internal/analysis"
)

func TestCounter(t *testing.T) {
	counter := NewCounter("test_counter")

	if counter.Get() != 0 {
		t.Errorf("Expected initial value 0, got %d", counter.Get())
	}

	counter.Inc()
	if counter.Get() != 1 {
		t.Errorf("Expected value 1 after Inc(), got %d", counter.Get())
	}

	counter.Add(5)
	if counter.Get() != 6 {
		t.Errorf("Expected value 6 after Add(5), got %d", counter.Get())
	}

	counter.Reset()
	if counter.Get() != 0 {
		t.Errorf("Expected value 0 after Reset(), got %d", counter.Get())
	}

	if counter.Name() != "test_counter" {
		t.Errorf("Expected name 'test_counter', got %s", counter.Name())
	}
}

func TestTimer(t *testing.T) {
	timer := NewTimer("test_timer")

	if timer.MinTime() != 0 {
		t.Errorf("Expected min time 0 before any record, got %v", timer.MinTime())
	}

	timer.Record(10 * time.Millisecond)
	timer.Record(30 * time.Millisecond)
	timer.Record(20 * time.Millisecond)

	if timer.Count() != 3 {
		t.Errorf("Expected count 3, got %d", timer.Count())
	}
	if timer.MinTime() != 10*time.Millisecond {
		t.Errorf("Expected min 10ms, got %v", timer.MinTime())
	}
	if timer.MaxTime() != 30*time.Millisecond {
		t.Errorf("Expected max 30ms, got %v", timer.MaxTime())
	}
	if timer.LastTime() != 20*time.Millisecond {
		t.Errorf("Expected last 20ms, got %v", timer.LastTime())
	}
	if timer.TotalTime() != 60*time.Millisecond {
		t.Errorf("Expected total 60ms, got %v", timer.TotalTime())
	}

	timer.Reset()
	if timer.Count() != 0 || timer.MaxTime() != 0 || timer.MinTime() != 0 {
		t.Error("Expected timer to be reset")
	}
}

func TestCollectorTrack(t *testing.T) {
	c := New()
	boom := errors.New("boom")

	if err := c.Track(OperationAnalyze, func() error { return nil }); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := c.Track(OperationAnalyze, func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Expected the operation error to pass through, got %v", err)
	}
	if err := c.Track("unknown", func() error { return nil }); err != nil {
		t.Errorf("Unexpected error for untracked operation: %v", err)
	}

	op := c.Snapshot().Operation(OperationAnalyze)
	if op.Count != 2 {
		t.Errorf("Expected 2 analyze runs, got %d", op.Count)
	}
	if op.SuccessCount != 1 || op.ErrorCount != 1 {
		t.Errorf("Expected 1 success and 1 error, got %d and %d", op.SuccessCount, op.ErrorCount)
	}
	if c.Snapshot().Operation(OperationSelectStage).Count != 0 {
		t.Error("Expected no select_stage runs")
	}
}

func TestCollectorRecordResult(t *testing.T) {
	c := New()

	clean := &analysis.Result{Tokens: make([]analysis.Token, 3)}
	failing := &analysis.Result{
		Tokens:      make([]analysis.Token, 2),
		StageErrors: map[analysis.Stage][]analysis.ErrorRecord{
			analysis.StageSyntactic: {{Line: 1, Message: "expected ;"}},
		},
	}

	c.RecordResult(clean)
	c.RecordResult(failing)
	c.RecordResult(nil)

	a := c.Snapshot().Analysis
	if a.Results != 2 {
		t.Errorf("Expected 2 results, got %d", a.Results)
	}
	if a.TokensProcessed != 5 {
		t.Errorf("Expected 5 tokens, got %d", a.TokensProcessed)
	}
	if a.CleanResults != 1 {
		t.Errorf("Expected 1 clean result, got %d", a.CleanResults)
	}
	if a.StageErrors[analysis.StageSyntactic] != 1 || a.StageErrors[analysis.StageLexical] != 0 {
		t.Errorf("Unexpected stage errors: %v", a.StageErrors)
	}
}

func TestCollectorConcurrentTrack(t *testing.T) {
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Track(OperationSourceUpdate, func() error { return nil })
		}()
	}
	wg.Wait()

	if got := c.Snapshot().Operation(OperationSourceUpdate).Count; got != 50 {
		t.Errorf("Expected 50 runs, got %d", got)
	}
}

func TestWriteSummary(t *testing.T) {
	c := New()
	_ = c.Track(OperationAnalyze, func() error { return nil })
	c.RecordResult(&analysis.Result{Tokens: make([]analysis.Token, 4)})

	var buf bytes.Buffer
	if err := WriteSummary(&buf, c.Snapshot()); err != nil {
		t.Fatalf("WriteSummary failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Session metrics", "analyze", "1 results, 1 clean, 4 tokens", "lexical 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in summary:\n%s", want, out)
		}
	}
	if strings.Contains(out, "select_stage") {
		t.Errorf("Operations without runs should be omitted:\n%s", out)
	}
}

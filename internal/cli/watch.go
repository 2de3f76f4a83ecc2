package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/config"
	"github.com/yildizm/CodeLens/internal/formatter"
	"github.com/yildizm/CodeLens/internal/monitor"
	"github.com/yildizm/CodeLens/internal/session"
)

var watchDebounce time.Duration

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-analyze a source file whenever it is saved",
		Long: `Watch a source file and send it to the analysis service after every save.

Uses file system notifications; bursts of writes are coalesced by the debounce
interval. Text output prints a one-line verdict per run and the errors of the
first failing stage; other formats print a full report per run.
Press Ctrl+C to stop watching.

Examples:
  codelens watch Main.java
  codelens watch --debounce 1s -o json Main.java`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before re-analysis (default from config)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	if watchDebounce <= 0 {
		watchDebounce = cfg.Watch.Debounce
	}

	filename := filepath.Clean(args[0])
	if err := validateWatchFilePath(filename); err != nil {
		return fmt.Errorf("invalid file path: %w", err)
	}

	sess, _, err := newSession(cfg, 0)
	if err != nil {
		return err
	}

	watcher, err := createWatcher(filename)
	if err != nil {
		return err
	}
	defer cleanupWatcher(watcher)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "%s Watching file: %s\n", GetEmoji("watch"), filename)
		fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop...\n\n")
	}

	out := cmd.OutOrStdout()
	metrics := monitor.New()
	onChange := func() {
		text, err := readSourceFile(filename)
		if err == nil && text == sess.Source() && sess.Snapshot().HasResult() {
			return
		}
		if err == nil {
			err = metrics.Track(monitor.OperationAnalyze, func() error {
				return reanalyze(ctx, out, sess, filename, text, cfg)
			})
			metrics.RecordResult(sess.Snapshot().Result)
		}
		if err != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Error analyzing %s: %v\n", filename, err)
		}
	}

	onChange()
	err = runWatchLoop(ctx, watcher, filename, watchDebounce, onChange)
	if isVerbose() {
		_ = monitor.WriteSummary(os.Stderr, metrics.Snapshot())
	}
	return err
}

// reanalyze submits text as the new source of filename and reports the result
func reanalyze(ctx context.Context, out io.Writer, sess *session.Session, filename, text string, cfg *config.Config) error {
	sess.SetSource(text)

	_, submitErr := sess.Submit(ctx)
	snap := sess.Snapshot()

	if getOutputFormat() == "text" {
		writeWatchSummary(out, snap, time.Now())
		return submitErr
	}

	f, err := formatter.New(getOutputFormat(), formatterOptions(cfg, false))
	if err != nil {
		return err
	}
	output, err := f.Format(formatter.NewReport(filename, snap))
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if _, err := out.Write(output); err != nil {
		return err
	}
	return submitErr
}

// writeWatchSummary prints one verdict line and the errors of the first failing stage
func writeWatchSummary(w io.Writer, snap session.Snapshot, at time.Time) {
	timestamp := at.Format("15:04:05")

	if notice := snap.Notice; notice != nil {
		fmt.Fprintf(w, "[%s] %s %s\n", timestamp, GetVerdictEmoji(false), notice.Message)
		return
	}
	if snap.Result == nil {
		return
	}

	result := snap.Result
	parts := []string{fmt.Sprintf("%d tokens", len(result.Tokens))}
	var failing analysis.Stage
	for _, stage := range analysis.Stages {
		verdict := "ok"
		switch {
		case result.HasErrors(stage):
			verdict = pluralizeErrors(len(result.Errors(stage)))
			if failing == analysis.StageNone {
				failing = stage
			}
		case failing != analysis.StageNone:
			verdict = "blocked"
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", GetStageEmoji(stage), stage, verdict))
	}
	fmt.Fprintf(w, "[%s] %s %s\n", timestamp, GetVerdictEmoji(failing == analysis.StageNone), strings.Join(parts, " · "))

	if failing == analysis.StageNone {
		return
	}
	for _, rec := range result.Errors(failing) {
		if rec.Line > 0 {
			fmt.Fprintf(w, "           %s: line %d: %s\n", failing, rec.Line, rec.Message)
		} else {
			fmt.Fprintf(w, "           %s: %s\n", failing, rec.Message)
		}
	}
}

func pluralizeErrors(n int) string {
	if n == 1 {
		return "1 error"
	}
	return fmt.Sprintf("%d errors", n)
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}

// createWatcher watches the directory of filename so atomic saves are seen
func createWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(filename)); err != nil {
		cleanupWatcher(watcher)
		return nil, fmt.Errorf("failed to watch file: %w", err)
	}

	return watcher, nil
}

// isWatchedEvent reports whether event changed the content of target
func isWatchedEvent(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// runWatchLoop calls onChange once per burst of events on target
func runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string, debounce time.Duration, onChange func()) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !isWatchedEvent(event, target) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if isVerbose() {
				fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
			}
		}
	}
}

// validateWatchFilePath validates that a file path is safe to watch
func validateWatchFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	// Check for path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("cannot watch directory, must be a file")
	}

	return nil
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yildizm/CodeLens/internal/emoji"
	"github.com/yildizm/CodeLens/internal/session"
)

func TestIsWatchedEvent(t *testing.T) {
	target := filepath.Join("src", "Main.java")

	tests := []struct {
		name     string
		event    fsnotify.Event
		expected bool
	}{
		{"write to target", fsnotify.Event{Name: target, Op: fsnotify.Write}, true},
		{"create of target", fsnotify.Event{Name: target, Op: fsnotify.Create}, true},
		{"chmod of target", fsnotify.Event{Name: target, Op: fsnotify.Chmod}, false},
		{"write to sibling", fsnotify.Event{Name: filepath.Join("src", "Other.java"), Op: fsnotify.Write}, false},
		{"unclean name", fsnotify.Event{Name: "src/./Main.java", Op: fsnotify.Write}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isWatchedEvent(tt.event, target); got != tt.expected {
				t.Errorf("isWatchedEvent() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func submittedSnapshot(t *testing.T, body, source string) session.Snapshot {
	t.Helper()
	sess := session.New(&stubService{body: body}, nil)
	sess.SetSource(source)
	_, _ = sess.Submit(context.Background())
	return sess.Snapshot()
}

func TestWriteWatchSummary(t *testing.T) {
	emoji.SetEmojiDisabled(true)
	defer emoji.SetEmojiDisabled(false)

	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	t.Run("clean", func(t *testing.T) {
		var buf bytes.Buffer
		writeWatchSummary(&buf, submittedSnapshot(t, cleanPayload, "int x;"), at)

		out := buf.String()
		if !strings.HasPrefix(out, "[15:04:05] [OK] 3 tokens") {
			t.Errorf("Unexpected verdict line: %q", out)
		}
		if strings.Count(out, "\n") != 1 {
			t.Errorf("Expected a single line, got %q", out)
		}
	})

	t.Run("syntactic error", func(t *testing.T) {
		var buf bytes.Buffer
		writeWatchSummary(&buf, submittedSnapshot(t, synErrorPayload, "int ;"), at)

		out := buf.String()
		for _, want := range []string{
			"[ERR] 2 tokens",
			"lexical ok",
			"syntactic 1 error",
			"semantic blocked",
			"syntactic: line 1: expected identifier",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("Expected %q in output:\n%s", want, out)
			}
		}
	})

	t.Run("notice", func(t *testing.T) {
		var buf bytes.Buffer
		writeWatchSummary(&buf, submittedSnapshot(t, cleanPayload, "   "), at)

		if !strings.Contains(buf.String(), "enter some code to analyze") {
			t.Errorf("Expected validation notice, got %q", buf.String())
		}
	})
}

func TestPluralizeErrors(t *testing.T) {
	if got := pluralizeErrors(1); got != "1 error" {
		t.Errorf("pluralizeErrors(1) = %q", got)
	}
	if got := pluralizeErrors(3); got != "3 errors" {
		t.Errorf("pluralizeErrors(3) = %q", got)
	}
}

func TestValidateWatchFilePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "Main.java")
	if err := os.WriteFile(file, []byte("class Main {}"), 0o600); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}

	if err := validateWatchFilePath(file); err != nil {
		t.Errorf("Expected valid path, got %v", err)
	}
	if err := validateWatchFilePath(dir); err == nil {
		t.Error("Expected error for directory")
	}
	if err := validateWatchFilePath("../Main.java"); err == nil {
		t.Error("Expected error for path traversal")
	}
	if err := validateWatchFilePath(""); err == nil {
		t.Error("Expected error for empty path")
	}
}

func TestRunWatchLoopStopsOnCancel(t *testing.T) {
	withFlags(t)
	verbose = false

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("Failed to create watcher: %v", err)
	}
	defer cleanupWatcher(watcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	if err := runWatchLoop(ctx, watcher, "Main.java", time.Millisecond, func() { calls++ }); err != nil {
		t.Errorf("Expected clean stop, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected no callbacks, got %d", calls)
	}
}

package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

type staticChecker bool

func (s staticChecker) IsVerbose() bool { return bool(s) }

func TestLogger_VerboseGating(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDebug   bool
		wantWarning bool
	}{
		{"quiet", false, false, true},
		{"verbose", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter("session", staticChecker(tt.verbose), &buf)

			l.Debug("debug %d", 1)
			l.Info("info message")
			l.Warn("warn message")

			out := buf.String()
			if got := strings.Contains(out, "debug 1"); got != tt.wantDebug {
				t.Errorf("Expected debug output %v, got %v: %q", tt.wantDebug, got, out)
			}
			if got := strings.Contains(out, "warn message"); got != tt.wantWarning {
				t.Errorf("Expected warning output %v, got %v: %q", tt.wantWarning, got, out)
			}
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("service", nil, &buf)

	l.ErrorWithFields("request failed", []Field{
		RequestID("abc-123"),
		Count(3),
		Duration(150 * time.Millisecond),
		Error(errors.New("connection refused")),
	})

	out := buf.String()
	for _, want := range []string{"request failed", "abc-123", "component=service", "connection refused"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got %q", want, out)
		}
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("", nil, &buf).WithComponent("web")

	if l.Component() != "web" {
		t.Errorf("Expected component 'web', got '%s'", l.Component())
	}

	l.StdLogger().Println("GET /health 200")
	if !strings.Contains(buf.String(), "GET /health 200") {
		t.Errorf("Expected std logger output, got %q", buf.String())
	}
}

func TestNewWithCallback(t *testing.T) {
	verbose := false
	l := NewWithCallback("cli", func() bool { return verbose })

	if l.verbose() {
		t.Error("Expected verbose to be false")
	}
	verbose = true
	if !l.verbose() {
		t.Error("Expected verbose to follow callback")
	}
}

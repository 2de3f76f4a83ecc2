package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yildizm/CodeLens/internal/config"
	"github.com/yildizm/CodeLens/internal/formatter"
	"github.com/yildizm/CodeLens/internal/service"
	"github.com/yildizm/CodeLens/internal/session"
)

// maxSourceBytes caps how much source is read from a file or stdin
const maxSourceBytes = 4 << 20

// stdoutIsTerminal is replaced in tests
var stdoutIsTerminal = func() bool {
	return isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// commandContext returns the command context, which is unset outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newSession creates a session backed by the configured analysis service
func newSession(cfg *config.Config, timeout time.Duration) (*session.Session, *service.Client, error) {
	svcConfig := &service.Config{
		Endpoint:         cfg.Service.Endpoint,
		Timeout:          cfg.Service.Timeout,
		MaxResponseBytes: cfg.Service.MaxResponseBytes,
		UserAgent:        cfg.Service.UserAgent,
	}
	if timeout > 0 {
		svcConfig.Timeout = timeout
	}

	client, err := service.New(svcConfig, newLogger("service"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service client: %w", err)
	}
	return session.New(client, newLogger("session")), client, nil
}

// readSource reads the source named by args, or stdin when args is empty.
// The returned name labels reports.
func readSource(args []string, stdin io.Reader) (name, text string, err error) {
	if len(args) == 0 {
		if isVerbose() {
			fmt.Fprintf(os.Stderr, "Reading from stdin...\n")
		}
		data, err := io.ReadAll(io.LimitReader(stdin, maxSourceBytes+1))
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if len(data) > maxSourceBytes {
			return "", "", fmt.Errorf("input exceeds %d bytes", maxSourceBytes)
		}
		return "<stdin>", string(data), nil
	}

	filename := args[0]
	if err := validateFilePath(filename); err != nil {
		return "", "", fmt.Errorf("invalid file path: %w", err)
	}

	text, err = readSourceFile(filename)
	if err != nil {
		return "", "", err
	}
	return filepath.Clean(filename), text, nil
}

func readSourceFile(filename string) (string, error) {
	cleanPath := filepath.Clean(filename)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", fmt.Errorf("cannot access file: %w", err)
	}
	if info.Size() > maxSourceBytes {
		return "", fmt.Errorf("file %s exceeds %d bytes", cleanPath, maxSourceBytes)
	}

	// #nosec G304 - path is validated by caller
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(data), nil
}

func validateFilePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

// shouldUseColor resolves --no-color, the configured color mode and the terminal
func shouldUseColor(cfg *config.Config) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	switch cfg.Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		return stdoutIsTerminal()
	}
}

// formatterOptions builds report options from flags and configuration
func formatterOptions(cfg *config.Config, showTokens bool) formatter.Options {
	return formatter.Options{
		Color:      shouldUseColor(cfg),
		Emoji:      !isEmojiDisabled(),
		ShowTokens: showTokens || cfg.Output.ShowTokens,
		Compact:    cfg.Output.CompactMode,
	}
}

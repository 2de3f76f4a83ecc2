package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/CodeLens/internal/analysis"
	"github.com/yildizm/CodeLens/internal/config"
	"github.com/yildizm/CodeLens/internal/formatter"
	"github.com/yildizm/CodeLens/internal/session"
	"github.com/yildizm/CodeLens/internal/ui"
)

var (
	analyzeStage        string
	analyzeTimeout      time.Duration
	analyzeNoTUI        bool
	analyzeOutputFile   string
	analyzeShowTokens   bool
	analyzeFailOnErrors bool
)

// ErrStageErrors is returned by --fail-on-errors when any stage reported errors
var ErrStageErrors = errors.New("analysis reported errors")

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a source file or stdin",
		Long: `Send source code to the analysis service and report the result.

If no file is specified, reads from stdin. On a terminal with text output the
interactive UI opens; otherwise a report is printed in the selected format.

Examples:
  codelens analyze Main.java
  codelens analyze --stage syntactic Main.java
  cat Main.java | codelens analyze -o json
  codelens analyze --fail-on-errors --no-tui Main.java`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeStage, "stage", "s", "", "stage to report on when selectable (lexical, syntactic, semantic)")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "service request timeout (default from config)")
	cmd.Flags().BoolVar(&analyzeNoTUI, "no-tui", false, "disable terminal UI, output to stdout")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")
	cmd.Flags().BoolVar(&analyzeShowTokens, "tokens", false, "include the token table in text and markdown reports")
	cmd.Flags().BoolVar(&analyzeFailOnErrors, "fail-on-errors", false, "exit with an error when any stage reports errors")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	requested := analysis.StageNone
	if analyzeStage != "" {
		stage, ok := analysis.ParseStage(analyzeStage)
		if !ok {
			return fmt.Errorf("unknown stage: %s (must be one of: lexical, syntactic, semantic)", analyzeStage)
		}
		requested = stage
	}

	name, text, err := readSource(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	sess, _, err := newSession(cfg, analyzeTimeout)
	if err != nil {
		return err
	}
	sess.SetSource(text)

	ctx := commandContext(cmd)
	if shouldUseTUIMode() {
		return ui.Run(ctx, sess, ui.Options{
			Name:        name,
			Theme:       cfg.UI.Theme,
			TableHeight: cfg.UI.TableHeight,
		})
	}
	return runCLIAnalysis(ctx, cmd.OutOrStdout(), sess, name, requested, cfg)
}

// shouldUseTUIMode opens the UI only for text output on a terminal
func shouldUseTUIMode() bool {
	if analyzeNoTUI || getOutputFormat() != "text" || isVerbose() || analyzeOutputFile != "" {
		return false
	}

	switch GetGlobalConfig().UI.Mode {
	case "tui":
		return true
	case "plain":
		return false
	default:
		return stdoutIsTerminal()
	}
}

// runCLIAnalysis submits once and writes a report of the resulting session.
// Service and schema failures are reported and returned.
func runCLIAnalysis(ctx context.Context, out io.Writer, sess *session.Session, name string, requested analysis.Stage, cfg *config.Config) error {
	_, submitErr := sess.Submit(ctx)
	if submitErr == nil && requested != analysis.StageNone && !sess.SelectStage(requested) && sess.Selected() != requested {
		fmt.Fprintf(os.Stderr, "%s %s stage is not available, showing %s\n",
			GetEmoji("locked"), requested, sess.Selected())
	}

	f, err := formatter.New(getOutputFormat(), formatterOptions(cfg, analyzeShowTokens))
	if err != nil {
		return err
	}

	snap := sess.Snapshot()
	output, err := f.Format(formatter.NewReport(name, snap))
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if err := handleOutputDestination(out, output); err != nil {
		return err
	}

	if submitErr != nil {
		return submitErr
	}
	if analyzeFailOnErrors && snap.Result.ErrorCount() > 0 {
		return fmt.Errorf("%w: %d", ErrStageErrors, snap.Result.ErrorCount())
	}
	return nil
}

// handleOutputDestination writes output to file or out
func handleOutputDestination(out io.Writer, output []byte) error {
	if analyzeOutputFile == "" {
		_, err := out.Write(output)
		return err
	}

	if err := writeOutputBytesToFile(output, analyzeOutputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}

	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", analyzeOutputFile)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}

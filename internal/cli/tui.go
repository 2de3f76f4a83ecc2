package cli

import (
	"github.com/spf13/cobra"

	"github.com/yildizm/CodeLens/internal/session"
	"github.com/yildizm/CodeLens/internal/ui"
)

var tuiNoSample bool

func newTUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui [file]",
		Short: "Open the interactive editor and analyzer",
		Long: `Open the terminal UI with an editable source buffer.

The buffer starts with the given file, or with a sample program when no file
is given (disable with --empty or ui.preload_sample: false).

Keys:
  ctrl+s   analyze the buffer
  tab      switch between editor and results
  1/2/3    select the lexical, syntactic or semantic stage
  t        toggle the token and category tables
  esc      dismiss the current notice
  ctrl+c   quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTUI,
	}

	cmd.Flags().BoolVar(&tuiNoSample, "empty", false, "start with an empty buffer")

	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	name := ""
	text := ""
	if len(args) > 0 {
		var err error
		if name, text, err = readSource(args, cmd.InOrStdin()); err != nil {
			return err
		}
	} else if cfg.UI.PreloadSample && !tuiNoSample {
		text = session.SampleSource
	}

	sess, _, err := newSession(cfg, 0)
	if err != nil {
		return err
	}
	sess.SetSource(text)

	return ui.Run(commandContext(cmd), sess, ui.Options{
		Name:        name,
		Theme:       cfg.UI.Theme,
		TableHeight: cfg.UI.TableHeight,
	})
}

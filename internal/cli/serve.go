package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yildizm/CodeLens/internal/session"
	"github.com/yildizm/CodeLens/internal/web"
)

var serveAddr string

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the analyzer in the browser",
		Long: `Start a local web server with a source editor, the stage selectors,
the statistics and the token and error tables.

A JSON API is available under /api (state, source, analyze, stage, notice,
metrics).

Examples:
  codelens serve
  codelens serve --addr 127.0.0.1:8000 Main.java`,
		Args: cobra.MaximumNArgs(1),
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	name := ""
	text := ""
	if len(args) > 0 {
		var err error
		if name, text, err = readSource(args, cmd.InOrStdin()); err != nil {
			return err
		}
	} else if cfg.UI.PreloadSample {
		text = session.SampleSource
	}

	sess, client, err := newSession(cfg, 0)
	if err != nil {
		return err
	}
	sess.SetSource(text)

	srv, err := web.NewServer(sess, newLogger("web"), web.Options{
		Name:           name,
		RequestTimeout: cfg.Server.WriteTimeout,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "%s Serving on http://%s (analysis service: %s)\n",
		GetEmoji("globe"), cfg.Server.Addr, client.Endpoint())
	return srv.ListenAndServe(ctx, cfg.Server)
}

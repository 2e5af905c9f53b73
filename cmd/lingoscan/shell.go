package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/nao1215/lingoscan/internal/app"
	"github.com/nao1215/lingoscan/internal/config"
	"github.com/nao1215/lingoscan/internal/model"
	"github.com/nao1215/lingoscan/internal/report"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  :mode single|crawl  switch the submission mode
  :export [dir]       save the last report as CSV
  :show               print the last report again
  :help               show this help
  :quit               leave the shell

In single mode, enter URLs one per line and submit with an empty line.
In crawl mode, each line is a home URL and is submitted right away.
`

// NewShellCmd creates the shell command.
func NewShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Analyze URLs interactively",
		Long: `Shell starts an interactive session against the analysis service.

The last report stays available for :show and :export until a newer
analysis succeeds. Type :help inside the shell for the command list.`,
		Args: cobra.NoArgs,
		RunE: runShellCmd,
	}

	cmd.Flags().Bool("crawl", false,
		"Start in crawl mode")
	cmd.Flags().StringP("server", "s", config.DefaultServerURL,
		"Analysis service URL")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of one analysis request (0 disables it)")
	cmd.Flags().String("policy", config.PolicyLast,
		"Primary language group of multi-URL reports (last, majority)")
	cmd.Flags().String("export-dir", "",
		"Default directory for :export (default: download directory)")

	addConfigFlag(cmd)
	return cmd
}

func runShellCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyClientFlags(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("export-dir") {
		if cfg.ExportDir, err = cmd.Flags().GetString("export-dir"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	out := cmd.OutOrStdout()
	presenter := report.NewSimpleWriter(out, report.WithStatusOutput(out))
	a, err := newApp(cfg, presenter, logger)
	if err != nil {
		return err
	}

	sh := newShell(a, presenter, cmd.InOrStdin(), out, cfg.ExportDir)
	sh.setMode(cfg.Mode)
	return sh.run(cmd.Context())
}

// shell is a line-oriented session. It is not safe for concurrent use.
type shell struct {
	app       *app.App
	presenter report.Presenter
	in        *bufio.Scanner
	out       io.Writer
	exportDir string

	// pending holds single-mode lines not yet submitted.
	pending []string
}

func newShell(a *app.App, presenter report.Presenter, in io.Reader, out io.Writer, exportDir string) *shell {
	return &shell{
		app:       a,
		presenter: presenter,
		in:        bufio.NewScanner(in),
		out:       out,
		exportDir: exportDir,
	}
}

// run reads lines until :quit or the end of input.
func (s *shell) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "lingoscan shell. Type :help for commands.")

	for {
		s.prompt()
		if !s.in.Scan() {
			break
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(s.in.Text())
		if strings.HasPrefix(line, ":") {
			if quit := s.command(ctx, line); quit {
				return nil
			}
			continue
		}
		s.input(ctx, line)
	}

	if err := s.in.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	// Submit what was typed before end of input.
	if len(s.pending) > 0 {
		s.submit(ctx)
	}
	return nil
}

func (s *shell) prompt() {
	switch {
	case s.app.Session().Mode() == model.ModeCrawl:
		fmt.Fprint(s.out, "crawl> ")
	case len(s.pending) > 0:
		fmt.Fprint(s.out, "...> ")
	default:
		fmt.Fprint(s.out, "single> ")
	}
}

// input handles a line that is not a command.
func (s *shell) input(ctx context.Context, line string) {
	if s.app.Session().Mode() == model.ModeCrawl {
		s.pending = []string{line}
		s.submit(ctx)
		return
	}
	if line != "" {
		s.pending = append(s.pending, line)
		return
	}
	s.submit(ctx)
}

// submit sends the pending lines. Errors are shown by the presenter.
func (s *shell) submit(ctx context.Context) {
	input := strings.Join(s.pending, "\n")
	s.pending = nil
	if _, err := s.app.Submit(ctx, input); err != nil {
		slog.Debug("submission failed", "error", err)
	}
}

// command runs a :command and reports whether the shell should exit.
func (s *shell) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case ":q", ":quit", ":exit":
		return true
	case ":h", ":help":
		fmt.Fprint(s.out, shellHelp)
	case ":mode":
		if len(args) != 1 {
			fmt.Fprintln(s.out, "usage: :mode single|crawl")
			return false
		}
		m, err := model.ParseMode(args[0])
		if err != nil {
			fmt.Fprintf(s.out, "unknown mode %q (use single or crawl)\n", args[0])
			return false
		}
		s.setMode(m)
	case ":show":
		r, ok := s.app.Session().Report()
		if !ok {
			fmt.Fprintln(s.out, "No report yet.")
			return false
		}
		if err := s.presenter.RenderReport(r); err != nil {
			fmt.Fprintf(s.out, "failed to show report: %v\n", err)
		}
	case ":export":
		dir := s.exportDir
		if len(args) > 0 {
			dir = args[0]
		}
		artifact, err := s.app.Export(ctx, dir)
		if err != nil {
			return false
		}
		printArtifact(s.out, artifact)
	default:
		fmt.Fprintf(s.out, "unknown command %s (type :help)\n", name)
	}
	return false
}

// setMode switches the mode, drops pending input and prints the input hint.
func (s *shell) setMode(m model.Mode) {
	s.pending = nil
	d := s.app.SetMode(m)
	fmt.Fprintf(s.out, "Mode: %s\n", m)
	for _, line := range strings.Split(d.Placeholder, "\n") {
		fmt.Fprintf(s.out, "  %s\n", line)
	}
}

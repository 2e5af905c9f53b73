package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/nao1215/lingoscan/internal/aggregate"
	"github.com/nao1215/lingoscan/internal/app"
	"github.com/nao1215/lingoscan/internal/client"
	"github.com/nao1215/lingoscan/internal/config"
	"github.com/nao1215/lingoscan/internal/model"
	"github.com/nao1215/lingoscan/internal/report"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [url...]",
		Short: "Count the words or characters of web pages",
		Long: `Analyze sends URLs to the analysis service and prints the counts.

Every URL is analyzed on its own by default. With --crawl, a single home URL
is given and the service crawls every page of that website.

Examples:
  # Analyze two pages
  lingoscan analyze https://example.com https://example.org

  # Read URLs from a file, one per line
  lingoscan analyze --file urls.txt

  # Crawl a whole website and print JSON
  lingoscan analyze --crawl --json https://example.com

  # Save a Markdown report and export the results as CSV
  lingoscan analyze -m -o report.md --export ./out https://example.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().Bool("crawl", false,
		"Crawl the entire website of a single home URL")
	cmd.Flags().StringP("file", "f", "",
		"Read URLs from a file, one per line (- reads stdin)")
	cmd.Flags().StringP("server", "s", config.DefaultServerURL,
		"Analysis service URL")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of one analysis request (0 disables it)")
	cmd.Flags().String("policy", config.PolicyLast,
		"Primary language group of multi-URL reports (last, majority)")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().StringP("export", "e", "",
		"Save the results as "+client.ExportFileName+" in this directory")

	addConfigFlag(cmd)
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalyzeConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runAnalyze(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
}

// buildAnalyzeConfig merges the config file with the flags of cmd.
// File values only win over flags the user did not set.
func buildAnalyzeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := applyClientFlags(cmd, cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if cfg.InputFile, err = flags.GetString("file"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}

	exportDir, err := flags.GetString("export")
	if err != nil {
		return nil, err
	}
	if flags.Changed("export") {
		cfg.Export = true
		if exportDir != "" {
			cfg.ExportDir = exportDir
		}
	}

	cfg.Inputs = args
	return cfg, nil
}

// applyClientFlags copies the flags shared by analyze and shell into cfg.
func applyClientFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	crawl, err := flags.GetBool("crawl")
	if err != nil {
		return err
	}
	if crawl {
		cfg.Mode = model.ModeCrawl
	}

	if flags.Changed("server") {
		if cfg.ServerURL, err = flags.GetString("server"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("policy") {
		if cfg.PrimaryGroupPolicy, err = flags.GetString("policy"); err != nil {
			return err
		}
	}
	return nil
}

// collectInputs joins the URL arguments and the lines of the input file into
// one submission. An input file of "-" is read from stdin. Crawl mode accepts
// a single home URL.
func collectInputs(cfg *config.Config, stdin io.Reader) (string, error) {
	urls := client.SplitURLs(strings.Join(cfg.Inputs, "\n"))

	if cfg.InputFile != "" {
		data, err := readInputFile(cfg.InputFile, stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		urls = append(urls, client.SplitURLs(string(data))...)
	}

	if cfg.Mode == model.ModeCrawl && len(urls) > 1 {
		return "", fmt.Errorf("crawl mode takes a single home URL, got %d", len(urls))
	}
	return strings.Join(urls, "\n"), nil
}

func readInputFile(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
}

// runAnalyze submits the inputs once, renders the report and optionally
// exports it.
func runAnalyze(ctx context.Context, cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) (err error) {
	input, err := collectInputs(cfg, stdin)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	presenter := newPresenter(cfg, out, stderr)
	if cfg.ReportFile != "" {
		// The file gets the full report; the terminal keeps a plain summary.
		presenter = report.NewMultiPresenter(
			newPresenter(cfg, out, io.Discard),
			report.NewSimpleWriter(stdout, report.WithStatusOutput(stderr)),
		)
	}
	a, err := newApp(cfg, presenter, logger)
	if err != nil {
		return err
	}
	a.SetMode(cfg.Mode)

	logger.Info("starting analysis", "mode", cfg.Mode, "server", cfg.ServerURL)

	r, err := a.Submit(ctx, input)
	switch {
	case err != nil && r != nil:
		return fmt.Errorf("failed to write report: %w", err)
	case err != nil:
		return fmt.Errorf("%w: %w", errReported, err)
	}

	if !cfg.Export {
		return nil
	}
	artifact, err := a.Export(ctx, cfg.ExportDir)
	if err != nil {
		return fmt.Errorf("%w: %w", errReported, err)
	}
	printArtifact(stderr, artifact)
	return nil
}

// newApp wires the service client, the presenter and the session together.
func newApp(cfg *config.Config, presenter report.Presenter, logger *slog.Logger) (*app.App, error) {
	policy, ok := aggregate.PolicyByName(cfg.PrimaryGroupPolicy)
	if !ok {
		return nil, config.ErrInvalidPolicy
	}

	// One client so the dispatcher and the exporter share connections.
	httpClient := &http.Client{Timeout: cfg.Timeout}
	opts := []client.Option{client.WithHTTPClient(httpClient), client.WithLogger(logger)}
	dispatcher, err := client.NewDispatcher(cfg.ServerURL, presenter, opts...)
	if err != nil {
		return nil, err
	}
	exporter, err := client.NewExporter(cfg.ServerURL, opts...)
	if err != nil {
		return nil, err
	}

	return app.New(dispatcher, exporter, presenter,
		app.WithPrimaryGroupPolicy(policy),
		app.WithLogger(logger),
	), nil
}

// newPresenter returns the writer for the requested report format.
// Progress messages go to status.
func newPresenter(cfg *config.Config, out, status io.Writer) report.Presenter {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(out, report.WithStatusOutput(status), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(out, report.WithStatusOutput(status))
	default:
		return report.NewSimpleWriter(out, report.WithStatusOutput(status))
	}
}

// openOutput opens the report file, or returns stdout when path is empty.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports list every analyzed URL, so only the owner may read them.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func printArtifact(w io.Writer, artifact *client.Artifact) {
	if artifact == nil {
		fmt.Fprintln(w, "Nothing to export.")
		return
	}
	size := artifact.Size
	if size < 0 {
		size = 0
	}
	fmt.Fprintf(w, "Saved %s (%s)\n", artifact.Path, humanize.Bytes(uint64(size)))
}

// isReported reports whether err was already shown by the presenter.
func isReported(err error) bool {
	return errors.Is(err, errReported)
}

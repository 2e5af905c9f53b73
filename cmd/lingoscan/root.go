package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/lingoscan/internal/config"
	"github.com/nao1215/lingoscan/internal/log"
	"github.com/spf13/cobra"
)

// errReported marks failures that the presenter has already shown to the user.
var errReported = errors.New("already reported")

// NewRootCmd creates the root command for lingoscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lingoscan",
		Short: "Word and character counter for websites",
		Long: `lingoscan counts the visible text of web pages through an analysis service.

Latin script pages are counted in words. Chinese, Japanese and Korean pages
are counted in characters. A single page or a list of pages can be analyzed,
or a whole website can be crawled from its home page.

Run "lingoscan serve" to start the analysis service locally, then use
"lingoscan analyze" or "lingoscan shell" against it.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewShellCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !isReported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the client logger. Secrets in URLs and headers are masked.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// addConfigFlag registers the --config flag shared by commands that read
// the configuration file.
func addConfigFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .lingoscan in current or home directory)")
}

// loadConfig returns the defaults merged with the configuration file.
// A missing file is only an error when --config names it explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = path

	found := config.FindConfigFile(path)
	switch {
	case found != "":
		f, err := config.LoadConfigFile(found)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if err := cfg.ApplyFile(f); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", found, err)
		}
	case path != "":
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

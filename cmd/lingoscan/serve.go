package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/lingoscan/internal/config"
	"github.com/nao1215/lingoscan/internal/database"
	"github.com/nao1215/lingoscan/internal/log"
	"github.com/nao1215/lingoscan/internal/service"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis service",
		Long: `Serve starts the HTTP analysis service used by analyze and shell.

Endpoints:
  POST /count    analyze a list of URLs         {"urls": ["..."]}
  POST /crawl    crawl one website              {"url": "..."}
  POST /export   turn results into CSV          [{"url": "...", ...}]
  GET  /pages    recently analyzed pages (requires --db)
  GET  /healthz  liveness check
  GET  /metrics  Prometheus metrics

Examples:
  # Listen on the default address
  lingoscan serve

  # Record every analyzed page and crawl at most 100 pages per site
  lingoscan serve --db --max-pages 100`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr,
		"Address to listen on")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of pages fetched at once")
	cmd.Flags().Duration("fetch-timeout", config.DefaultFetchTimeout,
		"Timeout for each URL of /count")
	cmd.Flags().Duration("crawl-timeout", config.DefaultCrawlTimeout,
		"Timeout for each page request while crawling")
	cmd.Flags().IntP("max-pages", "p", config.DefaultCrawlMaxPages,
		"Maximum number of pages per crawl (0 means unlimited)")
	cmd.Flags().IntP("max-depth", "d", config.DefaultCrawlMaxDepth,
		"Maximum link depth per crawl (0 means unlimited)")
	cmd.Flags().Duration("delay", 0,
		"Pause after each crawl request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent to websites")
	cmd.Flags().Bool("robots", false,
		"Respect robots.txt while crawling")
	cmd.Flags().Bool("db", false,
		"Record analyzed pages in a SQLite database")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	addConfigFlag(cmd)
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateService(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewServiceLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	var store *database.PageStore
	if cfg.SaveToDB {
		store, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		logger.Info("page store opened", "path", store.Path())
	}

	srv := service.New(serviceOptions(cfg, store), logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}

// buildServeConfig merges the config file with the flags the user set.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	var errs []error
	setString := func(name string, dst *string) {
		if flags.Changed(name) {
			v, err := flags.GetString(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if flags.Changed(name) {
			v, err := flags.GetInt(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setBool := func(name string, dst *bool) {
		if flags.Changed(name) {
			v, err := flags.GetBool(name)
			errs = append(errs, err)
			*dst = v
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if flags.Changed(name) {
			v, err := flags.GetDuration(name)
			errs = append(errs, err)
			*dst = v
		}
	}

	setString("listen", &cfg.ListenAddr)
	setInt("concurrency", &cfg.Concurrency)
	setDuration("fetch-timeout", &cfg.FetchTimeout)
	setDuration("crawl-timeout", &cfg.CrawlTimeout)
	setInt("max-pages", &cfg.CrawlMaxPages)
	setInt("max-depth", &cfg.CrawlMaxDepth)
	setDuration("delay", &cfg.CrawlDelay)
	setString("user-agent", &cfg.UserAgent)
	setBool("robots", &cfg.RespectRobots)
	setBool("db", &cfg.SaveToDB)
	setString("db-dir", &cfg.DBDir)
	if flags.Changed("db-dir") {
		cfg.SaveToDB = true
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serviceOptions(cfg *config.Config, store *database.PageStore) service.Options {
	return service.Options{
		Concurrency:    cfg.Concurrency,
		FetchTimeout:   cfg.FetchTimeout,
		CrawlTimeout:   cfg.CrawlTimeout,
		MaxPages:       cfg.CrawlMaxPages,
		MaxDepth:       cfg.CrawlMaxDepth,
		Delay:          cfg.CrawlDelay,
		UserAgent:      cfg.UserAgent,
		MaxBodySize:    cfg.MaxBodySize,
		RespectRobots:  cfg.RespectRobots,
		IgnorePatterns: cfg.IgnorePatterns,
		FollowPatterns: cfg.FollowPatterns,
		Store:          store,
	}
}

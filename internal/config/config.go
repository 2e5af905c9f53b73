package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/lingoscan/internal/crawler"
	"github.com/nao1215/lingoscan/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "lingoscan"

	// DefaultServerURL is the analysis service the client talks to.
	DefaultServerURL = "http://127.0.0.1:8000"

	// DefaultTimeout is the transport timeout for one client request.
	// Crawls of large sites take minutes, so it is generous.
	DefaultTimeout = 10 * time.Minute

	// DefaultListenAddr is the address the analysis service listens on.
	DefaultListenAddr = "127.0.0.1:8000"

	// DefaultConcurrency is the number of pages the service fetches at once.
	DefaultConcurrency = 5

	// DefaultFetchTimeout is the per-URL timeout of /count.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultCrawlTimeout is the per-page timeout of /crawl.
	DefaultCrawlTimeout = 12 * time.Second

	// DefaultCrawlMaxPages caps the pages of one crawl.
	DefaultCrawlMaxPages = 500

	// DefaultCrawlMaxDepth of 0 follows links without a depth limit.
	DefaultCrawlMaxDepth = 0

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = crawler.DefaultMaxBodySize

	// DefaultUserAgent is sent by the service when fetching pages.
	DefaultUserAgent = crawler.DefaultUserAgent
)

// Primary group policies for single-mode reports.
const (
	// PolicyLast takes the language group of the last successful item.
	PolicyLast = "last"

	// PolicyMajority takes the most frequent language group.
	PolicyMajority = "majority"
)

// Config holds all configuration options for lingoscan.
// It is populated from the config file and CLI flags and passed to the
// components that need it.
type Config struct {
	// ServerURL is the base URL of the analysis service.
	ServerURL string

	// Timeout is the transport timeout of one client request. 0 disables it.
	Timeout time.Duration

	// Mode is the submission mode of the analyze command.
	Mode model.Mode

	// Inputs are the URLs given as positional arguments.
	Inputs []string

	// InputFile is a file with one URL per line. "-" reads stdin.
	InputFile string

	// JSONReport enables JSON report output instead of the text format.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	MarkdownReport bool

	// ReportFile is the file path for the report. Empty writes to stdout.
	ReportFile string

	// Export requests a CSV export after a successful analysis.
	Export bool

	// ExportDir is the directory the exported CSV is saved to.
	ExportDir string

	// PrimaryGroupPolicy selects how single-mode reports choose their
	// primary language group: PolicyLast or PolicyMajority.
	PrimaryGroupPolicy string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// ListenAddr is the address the analysis service listens on.
	ListenAddr string

	// Concurrency is the number of pages the service fetches at once.
	Concurrency int

	// FetchTimeout is the per-URL timeout of /count.
	FetchTimeout time.Duration

	// CrawlTimeout is the per-page timeout of /crawl.
	CrawlTimeout time.Duration

	// CrawlMaxPages caps the pages of one crawl. 0 means unlimited.
	CrawlMaxPages int

	// CrawlMaxDepth caps link hops from the start page. 0 means unlimited.
	CrawlMaxDepth int

	// CrawlDelay is waited after each crawl request.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header the service sends.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// RespectRobots makes the crawler honor robots.txt.
	RespectRobots bool

	// IgnorePatterns are URL path globs the crawler skips.
	IgnorePatterns []string

	// FollowPatterns restrict the crawler to matching URL paths.
	FollowPatterns []string

	// SaveToDB enables the service page store.
	SaveToDB bool

	// DBDir is the directory of the page store.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerURL:          DefaultServerURL,
		Timeout:            DefaultTimeout,
		Mode:               model.DefaultMode,
		ExportDir:          DefaultExportDir(),
		PrimaryGroupPolicy: PolicyLast,
		ListenAddr:         DefaultListenAddr,
		Concurrency:        DefaultConcurrency,
		FetchTimeout:       DefaultFetchTimeout,
		CrawlTimeout:       DefaultCrawlTimeout,
		CrawlMaxPages:      DefaultCrawlMaxPages,
		CrawlMaxDepth:      DefaultCrawlMaxDepth,
		UserAgent:          DefaultUserAgent,
		MaxBodySize:        DefaultMaxBodySize,
		DBDir:              XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for lingoscan.
// On Linux: ~/.local/share/lingoscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for lingoscan.
// On Linux: ~/.config/lingoscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultExportDir returns the user's download directory, the place a
// browser would save the exported report.
func DefaultExportDir() string {
	if xdg.UserDirs.Download != "" {
		return xdg.UserDirs.Download
	}
	return "."
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidServerURL
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if _, err := model.ParseMode(string(c.Mode)); err != nil {
		return ErrInvalidMode
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.PrimaryGroupPolicy != PolicyLast && c.PrimaryGroupPolicy != PolicyMajority {
		return ErrInvalidPolicy
	}

	return c.ValidateService()
}

// ValidateService checks the analysis service settings only.
func (c *Config) ValidateService() error {
	if c.ListenAddr == "" {
		return ErrInvalidListenAddr
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.FetchTimeout <= 0 || c.CrawlTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.CrawlMaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.CrawlMaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

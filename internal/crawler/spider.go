package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/lingoscan/internal/model"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages fetched at once.
const DefaultConcurrency = 5

// ErrInvalidStartURL is returned when the crawl start URL cannot be used.
var ErrInvalidStartURL = errors.New("invalid start URL")

// Spider crawls every page reachable from a start URL on the same host.
// Pages are visited breadth first. Each batch is fetched concurrently.
type Spider struct {
	fetcher *Fetcher

	// maxDepth limits link hops from the start page. 0 means unlimited.
	maxDepth int

	// maxPages limits the number of pages returned. 0 means unlimited.
	maxPages int

	// concurrency is the number of simultaneous fetches.
	concurrency int

	// delay is waited after each fetch.
	delay time.Duration

	// ignorePatterns are URL path patterns to skip during crawling.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow during crawling.
	// If set, only URLs matching these patterns are crawled.
	followPatterns []string

	// respectRobots enables robots.txt checks.
	respectRobots bool

	logger *slog.Logger

	// visited tracks normalized URLs already scheduled.
	visited map[string]bool
	mutex   sync.Mutex

	// pageCount tracks pages crawled.
	pageCount int

	// queuedCount tracks URLs scheduled, the start page included.
	queuedCount int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth. 0 means unlimited.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to crawl. 0 means unlimited.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithConcurrency sets the number of simultaneous fetches.
func WithConcurrency(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithDelay sets the delay after each request.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithIgnorePatterns sets URL path patterns to skip during crawling.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns sets URL path patterns to follow during crawling.
// If set, only URLs matching at least one pattern are crawled.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithRobots enables robots.txt compliance.
func WithRobots(respect bool) SpiderOption {
	return func(s *Spider) {
		s.respectRobots = respect
	}
}

// WithSpiderLogger sets the logger for skipped pages.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that fetches pages with fetcher.
func NewSpider(fetcher *Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		visited:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Crawl starts crawling from startURL and returns the pages that answered
// 200 with an HTML body, in breadth-first order.
func (s *Spider) Crawl(ctx context.Context, startURL string) ([]*model.Page, error) {
	start, err := parseStartURL(startURL)
	if err != nil {
		return nil, err
	}

	var robots *robotstxt.RobotsData
	if s.respectRobots {
		robots = s.fetchRobots(ctx, start)
	}

	// The start page is fetched exactly as given; discovered links are
	// normalized. Both forms count as visited.
	startURL = start.String()
	s.markVisited(NormalizeLink(start))
	s.markVisited(startURL)
	s.incrementQueued()

	pages := make([]*model.Page, 0)
	queue := []queuedURL{{url: startURL}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return pages, err
		}

		batch := queue
		if s.maxPages > 0 {
			remaining := s.maxPages - len(pages)
			if remaining <= 0 {
				break
			}
			if len(batch) > remaining {
				batch = queue[:remaining]
			}
		}
		queue = append([]queuedURL(nil), queue[len(batch):]...)

		urls := make([]string, len(batch))
		for i, q := range batch {
			urls[i] = q.url
		}
		fetched, err := s.fetchLevel(ctx, urls)
		if err != nil {
			return pages, err
		}

		for i, page := range fetched {
			if page == nil {
				continue
			}
			pages = append(pages, page)
			s.incrementPageCount()

			depth := batch[i].depth
			if s.maxDepth > 0 && depth >= s.maxDepth {
				continue
			}
			for _, link := range page.Links {
				if s.isVisited(link) || !s.shouldCrawl(link) || !allowedByRobots(robots, link, s.fetcher.UserAgent()) {
					continue
				}
				s.markVisited(link)
				s.incrementQueued()
				queue = append(queue, queuedURL{url: link, depth: depth + 1})
			}
		}
	}

	return pages, nil
}

// queuedURL is a scheduled URL and its link distance from the start page.
type queuedURL struct {
	url   string
	depth int
}

// fetchLevel fetches urls concurrently. The result keeps the order of urls;
// pages that failed or were skipped are nil.
func (s *Spider) fetchLevel(ctx context.Context, urls []string) ([]*model.Page, error) {
	results := make([]*model.Page, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, pageURL := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			page, err := s.fetcher.Fetch(gctx, pageURL)
			switch {
			case err != nil:
				s.logger.Debug("page fetch failed", "url", pageURL, "error", err)
			case page.StatusCode != http.StatusOK || !isHTML(page.ContentType):
				s.logger.Debug("page skipped", "url", pageURL, "status", page.StatusCode, "contentType", page.ContentType)
			default:
				results[i] = page
			}

			if s.delay > 0 {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-time.After(s.delay):
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fetchRobots loads robots.txt for the start host. Any failure allows all paths.
func (s *Spider) fetchRobots(ctx context.Context, start *url.URL) *robotstxt.RobotsData {
	robotsURL := start.Scheme + "://" + start.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", s.fetcher.UserAgent())

	resp, err := s.fetcher.client.Do(req)
	if err != nil {
		s.logger.Debug("robots.txt fetch failed", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.fetcher.maxBodySize))
	if err != nil {
		return nil
	}
	robots, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		s.logger.Debug("robots.txt parse failed", "url", robotsURL, "error", err)
		return nil
	}
	return robots
}

// allowedByRobots reports whether robots permits link. A nil robots allows all.
func allowedByRobots(robots *robotstxt.RobotsData, link, userAgent string) bool {
	if robots == nil {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return robots.TestAgent(path, userAgent)
}

// parseStartURL validates the start URL. A missing scheme defaults to https.
func parseStartURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidStartURL)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStartURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidStartURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidStartURL)
	}
	return u, nil
}

// isVisited checks if a URL has been scheduled.
func (s *Spider) isVisited(link string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.visited[link]
}

// markVisited marks a URL as scheduled.
func (s *Spider) markVisited(link string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited[link] = true
}

func (s *Spider) incrementPageCount() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.pageCount++
}

func (s *Spider) incrementQueued() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.queuedCount++
}

// Stats returns current crawl statistics.
func (s *Spider) Stats() SpiderStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return SpiderStats{
		PagesVisited: s.pageCount,
		URLsQueued:   s.queuedCount,
	}
}

// SpiderStats contains crawl statistics.
type SpiderStats struct {
	// PagesVisited is the number of pages successfully crawled.
	PagesVisited int

	// URLsQueued is the number of unique URLs scheduled.
	URLsQueued int
}

// shouldCrawl checks if a URL should be crawled based on ignore/follow patterns.
//
// Logic:
//  1. If URL matches any ignorePattern, skip it (return false)
//  2. If followPatterns is set and URL matches none, skip it (return false)
//  3. Otherwise, crawl it (return true)
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(s.followPatterns) > 0 {
		for _, pattern := range s.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nao1215/lingoscan/internal/crawler"
	"github.com/nao1215/lingoscan/internal/database"
)

// Defaults for Options fields left at zero.
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultCrawlTimeout = 12 * time.Second

	// maxRequestBody caps JSON request bodies.
	maxRequestBody = 32 << 20

	shutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	// Concurrency is the number of pages fetched at once.
	Concurrency int

	// FetchTimeout is the per-URL timeout of /count.
	FetchTimeout time.Duration

	// CrawlTimeout is the per-page timeout of /crawl.
	CrawlTimeout time.Duration

	// MaxPages caps the pages of one crawl. 0 means unlimited.
	MaxPages int

	// MaxDepth caps link hops from the start page. 0 means unlimited.
	MaxDepth int

	// Delay is waited after each crawl request.
	Delay time.Duration

	UserAgent      string
	MaxBodySize    int64
	RespectRobots  bool
	IgnorePatterns []string
	FollowPatterns []string

	// Store records every analyzed page. Optional.
	Store *database.PageStore

	// Transport is used for outgoing page requests. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Server is the analysis service.
type Server struct {
	opts    Options
	logger  *slog.Logger
	metrics *Metrics
	router  chi.Router

	countFetcher *crawler.Fetcher
	crawlFetcher *crawler.Fetcher
}

// New creates a Server. A nil logger uses slog.Default().
func New(opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = crawler.DefaultConcurrency
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.CrawlTimeout <= 0 {
		opts.CrawlTimeout = DefaultCrawlTimeout
	}

	s := &Server{
		opts:         opts,
		logger:       logger,
		metrics:      NewMetrics(),
		countFetcher: newFetcher(opts, opts.FetchTimeout),
		crawlFetcher: newFetcher(opts, opts.CrawlTimeout),
	}
	s.router = s.routes()
	return s
}

func newFetcher(opts Options, timeout time.Duration) *crawler.Fetcher {
	client := &http.Client{Timeout: timeout, Transport: opts.Transport}
	return crawler.NewFetcher(client,
		crawler.WithUserAgent(opts.UserAgent),
		crawler.WithMaxBodySize(opts.MaxBodySize),
	)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Post("/count", s.handleCount)
	r.Post("/crawl", s.handleCrawl)
	r.Post("/export", s.handleExport)
	r.Get("/pages", s.handlePages)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

// Handler returns the HTTP handler of the service.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("analysis service listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down analysis service")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

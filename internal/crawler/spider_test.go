package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
)

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body)) //nolint:errcheck
}

// newSiteServer serves a small site: / links to /page1, /page2, /doc.txt,
// /missing and an external host; /page1 links to /page3.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeHTML(w, `<html><head><title>Home</title></head><body>
			<a href="/page1">One</a><a href="/page2/">Two</a><a href="/doc.txt">Doc</a>
			<a href="/missing">Missing</a><a href="https://external.example/">Out</a>
		</body></html>`)
	})
	mux.HandleFunc("/page1", func(w http.ResponseWriter, _ *http.Request) {
		writeHTML(w, `<html><body>Page one <a href="/page3">Three</a><a href="/">Home</a></body></html>`)
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, _ *http.Request) {
		writeHTML(w, `<html><head><title>Second</title></head><body>Page two</body></html>`)
	})
	mux.HandleFunc("/page3", func(w http.ResponseWriter, _ *http.Request) {
		writeHTML(w, `<html><body>Page three</body></html>`)
	})
	mux.HandleFunc("/doc.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("plain text")) //nolint:errcheck
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /page1\n")) //nolint:errcheck
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func pageURLs(server *httptest.Server, paths ...string) []string {
	urls := make([]string, len(paths))
	for i, p := range paths {
		urls[i] = strings.TrimSuffix(server.URL+p, "/")
	}
	sort.Strings(urls)
	return urls
}

func crawledURLs(t *testing.T, spider *Spider, start string) []string {
	t.Helper()

	pages, err := spider.Crawl(context.Background(), start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	urls := make([]string, len(pages))
	for i, p := range pages {
		urls[i] = p.URL
	}
	sort.Strings(urls)
	return urls
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSpider(t *testing.T) {
	t.Parallel()

	t.Run("crawls every html page on the same host", func(t *testing.T) {
		t.Parallel()

		server := newSiteServer(t)
		spider := NewSpider(NewFetcher(server.Client()))

		got := crawledURLs(t, spider, server.URL+"/")
		want := append(pageURLs(server, "/page1", "/page2", "/page3"), server.URL+"/")
		sort.Strings(want)
		if !equalStrings(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("title falls back to url", func(t *testing.T) {
		t.Parallel()

		server := newSiteServer(t)
		spider := NewSpider(NewFetcher(server.Client()), WithMaxDepth(1))

		pages, err := spider.Crawl(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, p := range pages {
			if strings.HasSuffix(p.URL, "/page1") && p.DisplayTitle() != p.URL {
				t.Errorf("expected url as title, got %q", p.DisplayTitle())
			}
			if strings.HasSuffix(p.URL, "/page2") && p.DisplayTitle() != "Second" {
				t.Errorf("expected title Second, got %q", p.DisplayTitle())
			}
			if p.Hash == "" {
				t.Errorf("expected hash for %s", p.URL)
			}
		}
	})

	t.Run("respects depth limit", func(t *testing.T) {
		t.Parallel()

		server := newSiteServer(t)
		spider := NewSpider(NewFetcher(server.Client()), WithMaxDepth(1))

		got := crawledURLs(t, spider, server.URL)
		want := pageURLs(server, "/", "/page1", "/page2")
		if !equalStrings(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("respects page limit", func(t *testing.T) {
		t.Parallel()

		server := newSiteServer(t)
		spider := NewSpider(NewFetcher(server.Client()), WithMaxPages(2))

		pages, err := spider.Crawl(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pages) != 2 {
			t.Errorf("expected 2 pages, got %d", len(pages))
		}
	})

	t.Run("respects robots.txt when enabled", func(t *testing.T) {
		t.Parallel()

		server := newSiteServer(t)
		spider := NewSpider(NewFetcher(server.Client()), WithRobots(true))

		got := crawledURLs(t, spider, server.URL)
		want := pageURLs(server, "/", "/page2")
		if !equalStrings(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("ignore patterns skip matching paths", func(t *testing.T) {
		t.Parallel()

		server := newSiteServer(t)
		spider := NewSpider(NewFetcher(server.Client()), WithIgnorePatterns([]string{"/page2"}))

		got := crawledURLs(t, spider, server.URL)
		want := pageURLs(server, "/", "/page1", "/page3")
		if !equalStrings(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("start page that is not html yields no pages", func(t *testing.T) {
		t.Parallel()

		server := newSiteServer(t)
		spider := NewSpider(NewFetcher(server.Client()))

		got := crawledURLs(t, spider, server.URL+"/doc.txt")
		if len(got) != 0 {
			t.Errorf("expected no pages, got %v", got)
		}
	})

	t.Run("rejects invalid start urls", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(NewFetcher(http.DefaultClient))
		for _, start := range []string{"", "   ", "ftp://example.com", "https://"} {
			if _, err := spider.Crawl(context.Background(), start); !errors.Is(err, ErrInvalidStartURL) {
				t.Errorf("Crawl(%q) error = %v, want ErrInvalidStartURL", start, err)
			}
		}
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		t.Parallel()

		server := newSiteServer(t)
		spider := NewSpider(NewFetcher(server.Client()))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := spider.Crawl(ctx, server.URL); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestSpiderStats(t *testing.T) {
	t.Parallel()

	server := newSiteServer(t)
	spider := NewSpider(NewFetcher(server.Client()), WithMaxDepth(1))

	if _, err := spider.Crawl(context.Background(), server.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// depth 1 schedules /, /page1, /page2, /doc.txt and /missing.
	stats := spider.Stats()
	if stats.PagesVisited != 3 {
		t.Errorf("PagesVisited = %d, want 3", stats.PagesVisited)
	}
	if stats.URLsQueued != 5 {
		t.Errorf("URLsQueued = %d, want 5", stats.URLsQueued)
	}
}

func TestSpiderStartURL(t *testing.T) {
	t.Parallel()

	var (
		mu        sync.Mutex
		requested []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/index.php", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.RequestURI())
		mu.Unlock()
		writeHTML(w, `<html><body>Home <a href="/index.php">Self</a><a href="/index.php?page=home">Again</a></body></html>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	start := server.URL + "/index.php?page=home"
	pages, err := NewSpider(NewFetcher(server.Client())).Crawl(context.Background(), start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pages) != 1 || pages[0].URL != start {
		t.Fatalf("expected only the start page with its query, got %d pages", len(pages))
	}
	mu.Lock()
	defer mu.Unlock()
	if !equalStrings(requested, []string{"/index.php?page=home"}) {
		t.Errorf("requested = %v", requested)
	}
}

func TestSpiderPageLimitKeepsDepth(t *testing.T) {
	t.Parallel()

	// / links to two missing pages and /a; /a links to /a2.
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeHTML(w, `<html><body><a href="/m1">M1</a><a href="/m2">M2</a><a href="/a">A</a></body></html>`)
	})
	mux.HandleFunc("/a", func(w http.ResponseWriter, _ *http.Request) {
		writeHTML(w, `<html><body>A <a href="/a2">A2</a></body></html>`)
	})
	mux.HandleFunc("/a2", func(w http.ResponseWriter, _ *http.Request) {
		writeHTML(w, `<html><body>A2</body></html>`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	// The page limit splits the first link level: /a is fetched in a later
	// batch but is still one hop from the start page.
	spider := NewSpider(NewFetcher(server.Client()), WithMaxPages(3), WithMaxDepth(2))
	got := crawledURLs(t, spider, server.URL)
	want := pageURLs(server, "/", "/a", "/a2")
	if !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestFetcherFetchOK(t *testing.T) {
	t.Parallel()

	server := newSiteServer(t)
	fetcher := NewFetcher(server.Client())

	t.Run("returns parsed page", func(t *testing.T) {
		t.Parallel()

		page, err := fetcher.FetchOK(context.Background(), server.URL+"/page2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Title != "Second" || page.Text != "Second Page two" {
			t.Errorf("unexpected page: title=%q text=%q", page.Title, page.Text)
		}
	})

	t.Run("returns status error for 404", func(t *testing.T) {
		t.Parallel()

		_, err := fetcher.FetchOK(context.Background(), server.URL+"/missing")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 StatusError, got %v", err)
		}
		if err.Error() != "HTTP 404 Not Found" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})
}

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"admin prefix match", "/admin/*", "/admin/dashboard", true},
		{"admin prefix exact", "/admin/*", "/admin", true},
		{"admin prefix partial no match", "/admin/*", "/administrator", false},
		{"pdf extension nested", "*.pdf", "/a/b/c/report.pdf", true},
		{"pdf extension no match", "*.pdf", "/docs/file.txt", false},
		{"exact match", "/logout", "/logout", true},
		{"wildcard middle", "/api/v?/users", "/api/v1/users", true},
		{"wildcard middle no match", "/api/v?/users", "/api/v10/users", false},
		{"root no match prefix", "/admin/*", "/", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := matchPattern(tt.pattern, tt.path); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

func TestShouldCrawl(t *testing.T) {
	t.Parallel()

	fetcher := NewFetcher(http.DefaultClient)

	t.Run("no patterns allows all", func(t *testing.T) {
		t.Parallel()

		if !NewSpider(fetcher).shouldCrawl("https://example.com/any/path") {
			t.Error("expected all URLs to be allowed when no patterns set")
		}
	})

	t.Run("follow patterns restrict crawling", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(fetcher, WithFollowPatterns([]string{"/blog/*"}))
		if !spider.shouldCrawl("https://example.com/blog/post") {
			t.Error("expected blog post to be crawled")
		}
		if spider.shouldCrawl("https://example.com/shop") {
			t.Error("expected shop to be skipped")
		}
	})

	t.Run("ignore wins over follow", func(t *testing.T) {
		t.Parallel()

		spider := NewSpider(fetcher,
			WithFollowPatterns([]string{"/blog/*"}),
			WithIgnorePatterns([]string{"/blog/drafts/*"}),
		)
		if spider.shouldCrawl("https://example.com/blog/drafts/x") {
			t.Error("expected drafts to be skipped")
		}
	})
}

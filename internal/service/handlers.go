package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/nao1215/lingoscan/internal/counter"
	"github.com/nao1215/lingoscan/internal/crawler"
	"github.com/nao1215/lingoscan/internal/database"
	"github.com/nao1215/lingoscan/internal/model"
	"github.com/nao1215/lingoscan/internal/pipeline"
)

type countRequest struct {
	URLs []string `json:"urls"`
}

type crawlRequest struct {
	URL string `json:"url"`
}

type analysisResponse struct {
	Results   []model.Item     `json:"results"`
	Aggregate *model.Aggregate `json:"aggregate,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if !decodeBody(w, r, &req) {
		return
	}

	urls := make([]string, 0, len(req.URLs))
	for _, u := range req.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		writeError(w, http.StatusBadRequest, "urls must not be empty")
		return
	}

	var (
		mu     sync.Mutex
		hashes = make(map[string]string, len(urls))
	)
	analyze := func(ctx context.Context, u string) model.Item {
		item, hash := s.analyzeURL(ctx, u)
		mu.Lock()
		hashes[u] = hash
		mu.Unlock()
		return item
	}

	bp := pipeline.NewBatchProcessor(analyze,
		pipeline.WithConcurrency(s.opts.Concurrency),
		pipeline.WithBatchLogger(s.logger),
	)
	items, err := bp.ProcessBatch(r.Context(), urls)
	if err != nil {
		s.logger.Warn("count request interrupted", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.observe(database.OriginCount, items)
	s.store(r.Context(), database.OriginCount, items, hashes)
	writeJSON(w, http.StatusOK, analysisResponse{Results: items})
}

// analyzeURL fetches one URL and counts its visible text.
// Failures become error items; the second result is the content hash.
func (s *Server) analyzeURL(ctx context.Context, u string) (model.Item, string) {
	page, err := s.countFetcher.FetchOK(ctx, u)
	if err != nil {
		return model.NewErrorItem(u, err.Error()), ""
	}
	return model.NewResultItem(u, page.DisplayTitle(), counter.Count(page.Text)), page.Hash
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if !decodeBody(w, r, &req) {
		return
	}
	start := strings.TrimSpace(req.URL)
	if start == "" {
		writeError(w, http.StatusBadRequest, "url must not be empty")
		return
	}

	spider := crawler.NewSpider(s.crawlFetcher,
		crawler.WithConcurrency(s.opts.Concurrency),
		crawler.WithMaxPages(s.opts.MaxPages),
		crawler.WithMaxDepth(s.opts.MaxDepth),
		crawler.WithDelay(s.opts.Delay),
		crawler.WithIgnorePatterns(s.opts.IgnorePatterns),
		crawler.WithFollowPatterns(s.opts.FollowPatterns),
		crawler.WithRobots(s.opts.RespectRobots),
		crawler.WithSpiderLogger(s.logger),
	)

	pages, err := spider.Crawl(r.Context(), start)
	switch {
	case errors.Is(err, crawler.ErrInvalidStartURL):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Warn("crawl interrupted", "url", start, "pages", len(pages), "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	stats := spider.Stats()
	s.logger.Info("crawl finished", "url", start, "pages", stats.PagesVisited, "queued", stats.URLsQueued)
	s.metrics.crawlPages.Observe(float64(stats.PagesVisited))
	s.metrics.crawlQueued.Observe(float64(stats.URLsQueued))

	items, agg, hashes := summarizeCrawl(pages)
	s.observe(database.OriginCrawl, items)
	s.store(r.Context(), database.OriginCrawl, items, hashes)
	writeJSON(w, http.StatusOK, analysisResponse{Results: items, Aggregate: &agg})
}

// summarizeCrawl counts every crawled page and builds the crawl aggregate.
func summarizeCrawl(pages []*model.Page) ([]model.Item, model.Aggregate, map[string]string) {
	items := make([]model.Item, 0, len(pages))
	stats := make([]model.Stats, 0, len(pages))
	hashes := make(map[string]string, len(pages))
	total := 0

	for _, p := range pages {
		st := counter.Count(p.Text)
		items = append(items, model.NewResultItem(p.URL, p.DisplayTitle(), st))
		stats = append(stats, st)
		hashes[p.URL] = p.Hash
		total += st.Count
	}

	agg := model.Aggregate{
		TotalCount:   total,
		PagesCrawled: len(pages),
		PrimaryGroup: counter.PrimaryGroup(stats),
	}
	return items, agg, hashes
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var items []model.Item
	if !decodeBody(w, r, &items) {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+ExportFileName)
	w.WriteHeader(http.StatusOK)
	if err := WriteCSV(w, items); err != nil {
		s.logger.Warn("failed to write CSV", "error", err)
	}
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	if s.opts.Store == nil {
		writeError(w, http.StatusNotFound, "page store is disabled")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := s.opts.Store.RecentPages(r.Context(), r.URL.Query().Get("url"), limit)
	if err != nil {
		s.logger.Error("failed to read page store", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read page store")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": records})
}

func (s *Server) observe(origin string, items []model.Item) {
	failed := 0
	for _, it := range items {
		if it.Failed() {
			failed++
		}
	}
	s.metrics.observeItems(origin, failed, len(items)-failed)
}

// store records items in the page store. Store failures are logged only.
func (s *Server) store(ctx context.Context, origin string, items []model.Item, hashes map[string]string) {
	if s.opts.Store == nil {
		return
	}
	for _, it := range items {
		rec := &database.PageRecord{
			URL:         it.URL,
			Origin:      origin,
			Title:       it.Title,
			Error:       it.Error,
			ContentHash: hashes[it.URL],
		}
		if it.Stats != nil {
			rec.Count = it.Stats.Count
			rec.CountType = it.Stats.Type
			rec.LanguageGroup = it.Stats.LanguageGroup
		}
		if _, err := s.opts.Store.InsertPage(ctx, rec); err != nil {
			s.logger.Warn("failed to store page", "url", it.URL, "error", err)
		}
	}
}

// decodeBody decodes a JSON request body into v. It answers 400 and returns
// false when the body is not valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(v); err != nil {
		msg := "invalid request body"
		if !errors.Is(err, io.EOF) {
			msg = fmt.Sprintf("invalid request body: %v", err)
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

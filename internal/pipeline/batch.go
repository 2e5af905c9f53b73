package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/lingoscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of URLs analyzed at once.
const DefaultConcurrency = 5

// AnalyzeFunc analyzes one URL. Failures are reported in the returned item.
type AnalyzeFunc func(ctx context.Context, url string) model.Item

// BatchProcessor analyzes multiple URLs concurrently.
type BatchProcessor struct {
	analyze AnalyzeFunc

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(analyze AnalyzeFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		analyze:     analyze,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes urls and returns one item per URL in input order.
// URLs not started before ctx is done become error items, and ctx's error
// is returned alongside the items.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]model.Item, error) {
	bp.logger.Debug("starting batch analysis",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()
	results := make([]model.Item, len(urls))

	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = model.NewErrorItem(u, err.Error())
				return nil
			}

			item := bp.analyze(ctx, u)
			if item.Failed() {
				bp.logger.Debug("url analysis failed", "url", u, "error", item.Error)
			}
			results[i] = item
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	bp.logger.Debug("batch analysis complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)

	return results, ctx.Err()
}

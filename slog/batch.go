package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/webtext"
)

var _ webtext.BatchFetcher = (*LoggingBatchFetcher)(nil)

// LoggingBatchFetcher wraps a BatchFetcher and logs each failed URL plus a
// summary once the batch finishes.
type LoggingBatchFetcher struct {
	next   webtext.BatchFetcher
	logger *slog.Logger
}

// NewLoggingBatchFetcher creates a new LoggingBatchFetcher.
func NewLoggingBatchFetcher(next webtext.BatchFetcher, logger *slog.Logger) *LoggingBatchFetcher {
	return &LoggingBatchFetcher{next: next, logger: logger}
}

// FetchAll delegates to the wrapped fetcher. Progress events are forwarded
// to progress unchanged.
func (b *LoggingBatchFetcher) FetchAll(ctx context.Context, urls []string, progress webtext.FetchProgressFunc) (results []*webtext.Result) {
	defer func(begin time.Time) {
		var failed int
		for _, r := range results {
			if r == nil || r.OK() {
				continue
			}
			failed++
			b.logger.Warn("url failed",
				"url", r.URL,
				"code", webtext.ErrorCode(r.Err),
				"err", r.ErrorString(),
			)
		}
		b.logger.Info("batch",
			"urls", len(urls),
			"completed", len(results)-failed,
			"failed", failed,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return b.next.FetchAll(ctx, urls, progress)
}

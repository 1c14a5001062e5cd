package mock

import (
	"context"

	"github.com/fwojciec/webtext"
)

var _ webtext.BatchFetcher = (*BatchFetcher)(nil)

// BatchFetcher is a mock implementation of webtext.BatchFetcher.
type BatchFetcher struct {
	FetchAllFn func(ctx context.Context, urls []string, progress webtext.FetchProgressFunc) []*webtext.Result
}

func (b *BatchFetcher) FetchAll(ctx context.Context, urls []string, progress webtext.FetchProgressFunc) []*webtext.Result {
	return b.FetchAllFn(ctx, urls, progress)
}

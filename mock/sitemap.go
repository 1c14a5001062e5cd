package mock

import (
	"context"

	"github.com/fwojciec/webtext"
)

var _ webtext.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of webtext.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, sitemapURL string, filter *webtext.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string, filter *webtext.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, sitemapURL, filter)
}

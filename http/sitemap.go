package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/webtext"
)

// Ensure SitemapService implements webtext.SitemapService.
var _ webtext.SitemapService = (*SitemapService)(nil)

// maxSitemapDepth bounds sitemap index nesting.
const maxSitemapDepth = 5

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs lists the page URLs of the sitemap at sitemapURL in document
// order. Duplicates are dropped. Returns an empty slice (not nil) when the
// sitemap lists nothing.
func (s *SitemapService) DiscoverURLs(ctx context.Context, sitemapURL string, filter *webtext.URLFilter) ([]string, error) {
	if !webtext.ValidateURL(sitemapURL) {
		return nil, webtext.Errorf(webtext.EINVALID, "invalid sitemap URL %q", sitemapURL)
	}

	urls, err := s.processSitemap(ctx, sitemapURL, make(map[string]bool), 0)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(urls))
	out := []string{}
	for _, u := range urls {
		if seen[u] || !filter.Match(u) {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and sitemapindex.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool, depth int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if depth > maxSitemapDepth {
		return nil, webtext.Errorf(webtext.EINVALID, "sitemap index nested deeper than %d levels", maxSitemapDepth)
	}

	// Avoid processing the same sitemap twice
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, webtext.Errorf(webtext.EINVALID, "parsing sitemap XML: %v", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, webtext.Errorf(webtext.EINVALID, "empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		return s.processSitemapIndex(ctx, root, seen, depth)
	}
	return parseURLSet(root), nil
}

// processSitemapIndex processes a <sitemapindex> element recursively.
func (s *SitemapService) processSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool, depth int) ([]string, error) {
	var allURLs []string

	for _, sitemap := range root.SelectElements("sitemap") {
		loc := sitemap.SelectElement("loc")
		if loc == nil {
			continue
		}
		sitemapURL := strings.TrimSpace(loc.Text())
		if sitemapURL == "" {
			continue
		}

		urls, err := s.processSitemap(ctx, sitemapURL, seen, depth+1)
		if err != nil {
			return nil, err
		}
		allURLs = append(allURLs, urls...)
	}

	return allURLs, nil
}

// parseURLSet extracts URLs from a <urlset> element.
func parseURLSet(root *etree.Element) []string {
	var urls []string
	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		u := strings.TrimSpace(loc.Text())
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classify(ctx, targetURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, webtext.Errorf(webtext.ESTATUS, "HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}

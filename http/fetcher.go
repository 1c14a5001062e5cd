// Package http provides an HTTP-based implementation of webtext.Fetcher
// and a sitemap-backed URL source.
package http

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/fwojciec/webtext"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies requests made by the Fetcher.
const DefaultUserAgent = "webtext/1.0 (+https://github.com/fwojciec/webtext)"

// Ensure Fetcher implements webtext.Fetcher at compile time.
var _ webtext.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using HTTP GET requests.
// It does not execute JavaScript. A Fetcher is safe for concurrent use;
// all requests share one connection pool.
type Fetcher struct {
	client      *http.Client
	transport   http.RoundTripper
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize truncates decoded response bodies after n bytes. Zero means
// no limit.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.transport = rt
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Transport: f.transport,
		Timeout:   f.timeout,
	}

	return f
}

// Fetch retrieves the body of url decoded to UTF-8.
//
// Failures are classified: EINVALID for a URL that is not absolute http(s),
// ETIMEOUT when the request exceeds its deadline, ESTATUS for non-2xx
// responses and ETRANSPORT for everything else on the wire.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if !webtext.ValidateURL(url) {
		return "", webtext.Errorf(webtext.EINVALID, "invalid URL %q", url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", webtext.Errorf(webtext.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classify(ctx, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", webtext.Errorf(webtext.ESTATUS, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := decodeContent(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return "", webtext.Errorf(webtext.ETRANSPORT, "decoding body of %s: %v", url, err)
	}
	// The cap counts decoded bytes.
	if f.maxBodySize > 0 {
		body = io.LimitReader(body, f.maxBodySize)
	}

	body, err = charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", classify(ctx, url, err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", classify(ctx, url, err)
	}

	return string(data), nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// decodeContent undoes the Content-Encoding negotiated in Fetch.
func decodeContent(encoding string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return r, nil
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	case "deflate":
		return flate.NewReader(r), nil
	case "br":
		return brotli.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// classify maps a request error to an application error code.
func classify(ctx context.Context, url string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return webtext.Errorf(webtext.ETIMEOUT, "request to %s timed out", url)
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		return webtext.Errorf(webtext.ETRANSPORT, "request to %s canceled", url)
	default:
		return webtext.Errorf(webtext.ETRANSPORT, "fetch %s: %v", url, err)
	}
}

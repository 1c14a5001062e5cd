package batch

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/webtext"
	"golang.org/x/time/rate"
)

// DomainLimiter provides per-domain rate limiting using token buckets.
// It creates a separate rate limiter for each domain, allowing concurrent
// requests to different domains while enforcing rate limits within each domain.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a new DomainLimiter with the specified requests per second limit.
// Each domain gets its own limiter with a burst of 1 (no bursting allowed).
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// Ensure RateLimitedFetcher implements webtext.Fetcher at compile time.
var _ webtext.Fetcher = (*RateLimitedFetcher)(nil)

// RateLimitedFetcher waits on a DomainLimiter keyed by host before each fetch.
type RateLimitedFetcher struct {
	next    webtext.Fetcher
	limiter *DomainLimiter
}

// NewRateLimitedFetcher wraps next so that requests to any one host are
// spaced according to limiter.
func NewRateLimitedFetcher(next webtext.Fetcher, limiter *DomainLimiter) *RateLimitedFetcher {
	return &RateLimitedFetcher{next: next, limiter: limiter}
}

// Fetch waits for the host's token, then delegates. A wait that cannot
// finish before ctx's deadline fails with ETIMEOUT.
func (f *RateLimitedFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", webtext.Errorf(webtext.EINVALID, "invalid URL %q", rawURL)
	}
	if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
		if ctx.Err() == context.Canceled {
			return "", webtext.Errorf(webtext.ETRANSPORT, "request to %s canceled", rawURL)
		}
		return "", webtext.Errorf(webtext.ETIMEOUT, "rate limit wait for %s exceeded deadline", rawURL)
	}
	return f.next.Fetch(ctx, rawURL)
}

// Close closes the wrapped fetcher.
func (f *RateLimitedFetcher) Close() error {
	return f.next.Close()
}

package webtext

import "context"

// Fetcher retrieves raw HTML from a URL.
type Fetcher interface {
	// Fetch issues a single request for url and returns the response body.
	// It makes exactly one attempt; retry policy belongs to callers.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases transport resources.
	Close() error
}

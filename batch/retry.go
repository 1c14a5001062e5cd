package batch

import (
	"context"
	"time"

	"github.com/fwojciec/webtext"
)

// Ensure RetryFetcher implements webtext.Fetcher at compile time.
var _ webtext.Fetcher = (*RetryFetcher)(nil)

// RetryFunc is called before each retry with the attempt about to start
// and the error of the previous one.
type RetryFunc func(url string, attempt int, err error)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryFetcher retries failed fetches with backoff. Validation failures are
// never retried. All attempts share the deadline of the context passed to
// Fetch, so a Pipeline timeout bounds the whole sequence.
type RetryFetcher struct {
	next    webtext.Fetcher
	delays  []time.Duration
	onRetry RetryFunc
}

// RetryOption configures a RetryFetcher.
type RetryOption func(*RetryFetcher)

// WithRetryDelays sets the delay before each retry. len(delays) is the
// number of retries.
func WithRetryDelays(delays []time.Duration) RetryOption {
	return func(f *RetryFetcher) {
		f.delays = delays
	}
}

// WithOnRetry registers a callback invoked before each retry.
func WithOnRetry(fn RetryFunc) RetryOption {
	return func(f *RetryFetcher) {
		f.onRetry = fn
	}
}

// NewRetryFetcher wraps next with retries using DefaultRetryDelays.
func NewRetryFetcher(next webtext.Fetcher, opts ...RetryOption) *RetryFetcher {
	f := &RetryFetcher{
		next:   next,
		delays: DefaultRetryDelays(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch calls the wrapped fetcher until it succeeds, the error is not
// retryable, the delays are exhausted, or ctx is done.
func (f *RetryFetcher) Fetch(ctx context.Context, url string) (string, error) {
	maxAttempts := len(f.delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := f.next.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if !retryable(err) || attempt >= maxAttempts-1 {
			break
		}

		if ctx.Err() != nil {
			break
		}

		if f.onRetry != nil {
			f.onRetry(url, attempt+2, err)
		}

		timer := time.NewTimer(f.delays[attempt])
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", lastErr
		case <-timer.C:
		}
	}

	return "", lastErr
}

// Close closes the wrapped fetcher.
func (f *RetryFetcher) Close() error {
	return f.next.Close()
}

func retryable(err error) bool {
	return webtext.ErrorCode(err) != webtext.EINVALID
}

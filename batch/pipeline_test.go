package batch_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/webtext"
	"github.com/fwojciec/webtext/batch"
	"github.com/fwojciec/webtext/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityConverter() *mock.Converter {
	return &mock.Converter{
		ConvertFn: func(html string) (string, error) {
			return html, nil
		},
	}
}

func TestPipeline_FetchAll(t *testing.T) {
	t.Parallel()

	t.Run("returns empty slice for empty input without fetching", func(t *testing.T) {
		t.Parallel()

		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				t.Fatal("fetch must not be called")
				return "", nil
			},
		}, identityConverter())

		results := p.FetchAll(context.Background(), nil, nil)

		assert.Empty(t, results)
	})

	t.Run("preserves input order when completion order differs", func(t *testing.T) {
		t.Parallel()

		// Given: earlier URLs take longer than later ones
		urls := []string{
			"https://example.com/0",
			"https://example.com/1",
			"https://example.com/2",
			"https://example.com/3",
		}
		delays := map[string]time.Duration{
			urls[0]: 40 * time.Millisecond,
			urls[1]: 30 * time.Millisecond,
			urls[2]: 20 * time.Millisecond,
			urls[3]: 0,
		}
		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				time.Sleep(delays[url])
				return "body of " + url, nil
			},
		}, identityConverter(), batch.WithConcurrency(4))

		// When
		results := p.FetchAll(context.Background(), urls, nil)

		// Then
		require.Len(t, results, len(urls))
		for i, r := range results {
			require.NoError(t, r.Err)
			assert.Equal(t, urls[i], r.URL)
			assert.Equal(t, "body of "+urls[i], r.Text)
		}
	})

	t.Run("fetches each URL exactly once including duplicates", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				calls.Add(1)
				return "ok", nil
			},
		}, identityConverter())

		urls := []string{"https://a.example/", "https://b.example/", "https://a.example/"}
		results := p.FetchAll(context.Background(), urls, nil)

		require.Len(t, results, 3)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("isolates a failing URL from its siblings", func(t *testing.T) {
		t.Parallel()

		// Given: the middle URL fails at the transport layer
		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == "https://example.com/bad" {
					return "", errors.New("connection refused")
				}
				return "<p>fine</p>", nil
			},
		}, identityConverter())

		// When
		results := p.FetchAll(context.Background(), []string{
			"https://example.com/good1",
			"https://example.com/bad",
			"https://example.com/good2",
		}, nil)

		// Then
		require.Len(t, results, 3)
		assert.True(t, results[0].OK())
		assert.Equal(t, webtext.ETRANSPORT, webtext.ErrorCode(results[1].Err))
		assert.Contains(t, results[1].ErrorString(), "connection refused")
		assert.Empty(t, results[1].Text)
		assert.True(t, results[2].OK())
	})

	t.Run("keeps application error codes from the fetcher", func(t *testing.T) {
		t.Parallel()

		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return "", webtext.Errorf(webtext.ESTATUS, "HTTP 404 for %s", url)
			},
		}, identityConverter())

		results := p.FetchAll(context.Background(), []string{"https://example.com/missing"}, nil)

		require.Len(t, results, 1)
		assert.Equal(t, webtext.ESTATUS, webtext.ErrorCode(results[0].Err))
		assert.Equal(t, "HTTP 404 for https://example.com/missing", results[0].ErrorString())
	})

	t.Run("fails invalid URLs without fetching them", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var fetched []string
		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				mu.Lock()
				fetched = append(fetched, url)
				mu.Unlock()
				return "ok", nil
			},
		}, identityConverter())

		results := p.FetchAll(context.Background(), []string{
			"not-a-url",
			"https://example.com/",
			"ftp://example.com/file",
			"",
		}, nil)

		require.Len(t, results, 4)
		assert.Equal(t, webtext.EINVALID, webtext.ErrorCode(results[0].Err))
		assert.True(t, results[1].OK())
		assert.Equal(t, webtext.EINVALID, webtext.ErrorCode(results[2].Err))
		assert.Equal(t, webtext.EINVALID, webtext.ErrorCode(results[3].Err))
		assert.Equal(t, []string{"https://example.com/"}, fetched)
	})

	t.Run("never exceeds the concurrency limit", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				n := inFlight.Add(1)
				for {
					old := peak.Load()
					if n <= old || peak.CompareAndSwap(old, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				inFlight.Add(-1)
				return "ok", nil
			},
		}, identityConverter(), batch.WithConcurrency(2))

		urls := make([]string, 10)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://example.com/%d", i)
		}
		results := p.FetchAll(context.Background(), urls, nil)

		require.Len(t, results, 10)
		assert.LessOrEqual(t, peak.Load(), int32(2))
		assert.GreaterOrEqual(t, peak.Load(), int32(1))
	})

	t.Run("times out a slow fetch without affecting fast ones", func(t *testing.T) {
		t.Parallel()

		// Given: a fetcher that blocks on the slow URL until its context ends
		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				if url == "https://example.com/slow" {
					<-ctx.Done()
					return "", ctx.Err()
				}
				return "fast", nil
			},
		}, identityConverter(), batch.WithTimeout(20*time.Millisecond))

		// When
		start := time.Now()
		results := p.FetchAll(context.Background(), []string{
			"https://example.com/slow",
			"https://example.com/fast",
		}, nil)

		// Then
		require.Len(t, results, 2)
		assert.Equal(t, webtext.ETIMEOUT, webtext.ErrorCode(results[0].Err))
		assert.True(t, results[1].OK())
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("fails unstarted URLs when the batch context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var calls atomic.Int32
		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				calls.Add(1)
				return "ok", nil
			},
		}, identityConverter())

		results := p.FetchAll(ctx, []string{"https://example.com/a", "https://example.com/b"}, nil)

		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, webtext.ETRANSPORT, webtext.ErrorCode(r.Err))
		}
		assert.Equal(t, int32(0), calls.Load())
	})

	t.Run("uses extractor title and hashes converted text", func(t *testing.T) {
		t.Parallel()

		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "<html><title>Page</title><p>Hello</p></html>", nil
			},
		}, &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				assert.Equal(t, "<p>Hello</p>", html)
				return "Hello", nil
			},
		}, batch.WithExtractor(&mock.Extractor{
			ExtractFn: func(_ string) (*webtext.ExtractResult, error) {
				return &webtext.ExtractResult{Title: "Page", ContentHTML: "<p>Hello</p>"}, nil
			},
		}))

		results := p.FetchAll(context.Background(), []string{"https://example.com/"}, nil)

		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)
		assert.Equal(t, "Page", results[0].Title)
		assert.Equal(t, "Hello", results[0].Text)
		assert.Equal(t, batch.ComputeHash("Hello"), results[0].Hash)
	})

	t.Run("completes with empty text for an empty body", func(t *testing.T) {
		t.Parallel()

		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "", nil
			},
		}, &mock.Converter{
			ConvertFn: func(_ string) (string, error) {
				t.Fatal("convert must not be called for an empty body")
				return "", nil
			},
		})

		results := p.FetchAll(context.Background(), []string{"https://example.com/empty"}, nil)

		require.Len(t, results, 1)
		require.NoError(t, results[0].Err)
		assert.Empty(t, results[0].Text)
	})

	t.Run("reports converter failure as extraction error", func(t *testing.T) {
		t.Parallel()

		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "<p>x</p>", nil
			},
		}, &mock.Converter{
			ConvertFn: func(_ string) (string, error) {
				return "", errors.New("parser exploded")
			},
		})

		results := p.FetchAll(context.Background(), []string{"https://example.com/"}, nil)

		require.Len(t, results, 1)
		assert.Equal(t, webtext.EEXTRACT, webtext.ErrorCode(results[0].Err))
	})

	t.Run("recovers from a converter panic", func(t *testing.T) {
		t.Parallel()

		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, _ string) (string, error) {
				return "<p>x</p>", nil
			},
		}, &mock.Converter{
			ConvertFn: func(_ string) (string, error) {
				panic("boom")
			},
		})

		results := p.FetchAll(context.Background(), []string{"https://example.com/a", "https://example.com/b"}, nil)

		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, webtext.EEXTRACT, webtext.ErrorCode(r.Err))
		}
	})

	t.Run("reports progress transitions with serialized calls", func(t *testing.T) {
		t.Parallel()

		p := batch.NewPipeline(&mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if url == "https://example.com/bad" {
					return "", errors.New("reset")
				}
				return "ok", nil
			},
		}, identityConverter(), batch.WithConcurrency(3))

		// Unsynchronized on purpose: calls must be serialized by FetchAll.
		var events []webtext.FetchProgress
		results := p.FetchAll(context.Background(), []string{
			"https://example.com/good",
			"https://example.com/bad",
			"bogus",
		}, func(e webtext.FetchProgress) {
			events = append(events, e)
		})

		require.Len(t, results, 3)

		states := map[string][]webtext.TaskState{}
		for _, e := range events {
			assert.Equal(t, 3, e.Total)
			states[e.URL] = append(states[e.URL], e.State)
		}
		assert.Equal(t, []webtext.TaskState{webtext.TaskFetching, webtext.TaskCompleted}, states["https://example.com/good"])
		assert.Equal(t, []webtext.TaskState{webtext.TaskFetching, webtext.TaskFailed}, states["https://example.com/bad"])
		assert.Equal(t, []webtext.TaskState{webtext.TaskFailed}, states["bogus"])

		last := events[len(events)-1]
		assert.Equal(t, 3, last.Completed)
	})
}

func TestNewPipeline_Defaults(t *testing.T) {
	t.Parallel()

	// Given: non-positive options fall back to defaults, so a batch larger
	// than DefaultConcurrency still runs to completion.
	var inFlight, peak atomic.Int32
	p := batch.NewPipeline(&mock.Fetcher{
		FetchFn: func(_ context.Context, _ string) (string, error) {
			n := inFlight.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return "ok", nil
		},
	}, identityConverter(), batch.WithConcurrency(0), batch.WithTimeout(0))

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/%d", i)
	}
	results := p.FetchAll(context.Background(), urls, nil)

	require.Len(t, results, 12)
	for _, r := range results {
		assert.True(t, r.OK())
	}
	assert.LessOrEqual(t, peak.Load(), int32(batch.DefaultConcurrency))
}

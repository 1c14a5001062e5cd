// Package batch runs the fetch, extract and convert stages over a list of
// URLs with a bounded number of requests in flight.
package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/webtext"
	"golang.org/x/sync/errgroup"
)

// Defaults for Pipeline.
const (
	DefaultConcurrency = 5
	DefaultTimeout     = 10 * time.Second
)

// Ensure Pipeline implements webtext.BatchFetcher at compile time.
var _ webtext.BatchFetcher = (*Pipeline)(nil)

// Pipeline implements webtext.BatchFetcher by orchestrating fetching,
// extraction, and conversion through injected dependencies.
type Pipeline struct {
	fetcher     webtext.Fetcher
	extractor   webtext.Extractor
	converter   webtext.Converter
	concurrency int
	timeout     time.Duration
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConcurrency bounds the number of fetches in flight.
// Values below 1 select DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.concurrency = n
	}
}

// WithTimeout sets the deadline of each fetch.
// Values below or equal to zero select DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithExtractor runs e on each body before conversion. Without an
// extractor the whole body is converted and results carry no title.
func WithExtractor(e webtext.Extractor) Option {
	return func(p *Pipeline) {
		p.extractor = e
	}
}

// NewPipeline creates a new Pipeline with the given dependencies.
func NewPipeline(fetcher webtext.Fetcher, converter webtext.Converter, opts ...Option) *Pipeline {
	p := &Pipeline{
		fetcher:   fetcher,
		converter: converter,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.concurrency < 1 {
		p.concurrency = DefaultConcurrency
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	return p
}

// task tracks one URL through the pipeline. Each task is owned by a single
// goroutine at a time.
type task struct {
	index int
	url   string
	state webtext.TaskState
	title string
	text  string
	err   error
}

func (t *task) fail(err error) {
	t.state = webtext.TaskFailed
	t.err = err
}

func (t *task) result() *webtext.Result {
	r := &webtext.Result{URL: t.url, Err: t.err}
	if t.err == nil {
		r.Title = t.title
		r.Text = t.text
		r.Hash = ComputeHash(t.text)
	}
	return r
}

// FetchAll fetches every URL exactly once and returns one result per URL
// in input order. Invalid URLs fail with EINVALID without reaching the
// fetcher. A failure never affects sibling URLs. When ctx is canceled,
// URLs that have not started fail and FetchAll still returns a full slice.
func (p *Pipeline) FetchAll(ctx context.Context, urls []string, progress webtext.FetchProgressFunc) []*webtext.Result {
	results := make([]*webtext.Result, len(urls))
	if len(urls) == 0 {
		return results
	}

	var mu sync.Mutex
	var completed int
	report := func(t *task) {
		mu.Lock()
		defer mu.Unlock()
		if t.state.Terminal() {
			completed++
		}
		if progress == nil {
			return
		}
		progress(webtext.FetchProgress{
			URL:       t.url,
			Index:     t.index,
			State:     t.state,
			Completed: completed,
			Total:     len(urls),
			Error:     t.err,
		})
	}

	var g errgroup.Group
	g.SetLimit(p.concurrency)

	for i, url := range urls {
		t := &task{index: i, url: url, state: webtext.TaskPending}

		if !webtext.ValidateURL(url) {
			t.fail(webtext.Errorf(webtext.EINVALID, "invalid URL %q", url))
			results[i] = t.result()
			report(t)
			continue
		}

		// Go blocks until one of the concurrency slots is free.
		g.Go(func() error {
			p.run(ctx, t, report)
			results[t.index] = t.result()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// run drives one task from pending to a terminal state.
func (p *Pipeline) run(ctx context.Context, t *task, report func(*task)) {
	if err := ctx.Err(); err != nil {
		t.fail(webtext.Errorf(webtext.ETRANSPORT, "batch canceled before %s was fetched: %v", t.url, err))
		report(t)
		return
	}

	t.state = webtext.TaskFetching
	report(t)

	fctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := p.fetcher.Fetch(fctx, t.url)
	if err != nil {
		t.fail(p.fetchError(ctx, fctx, t.url, err))
		report(t)
		return
	}

	title, text, err := p.convert(body)
	if err != nil {
		t.fail(err)
		report(t)
		return
	}

	t.title = title
	t.text = text
	t.state = webtext.TaskCompleted
	report(t)
}

// fetchError normalizes a fetcher error. Deadline expiry of the per-fetch
// context becomes ETIMEOUT and unclassified errors become ETRANSPORT.
func (p *Pipeline) fetchError(ctx, fctx context.Context, url string, err error) error {
	if webtext.ErrorCode(err) == webtext.ETIMEOUT {
		return err
	}
	if ctx.Err() == nil && errors.Is(fctx.Err(), context.DeadlineExceeded) {
		return webtext.Errorf(webtext.ETIMEOUT, "request to %s timed out after %s", url, p.timeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return webtext.Errorf(webtext.ETIMEOUT, "request to %s timed out", url)
	}
	var appErr *webtext.Error
	if errors.As(err, &appErr) {
		return err
	}
	return webtext.Errorf(webtext.ETRANSPORT, "fetch %s: %v", url, err)
}

// convert runs the extract and convert stages. A panic in either stage is
// reported as EEXTRACT instead of taking down the batch.
func (p *Pipeline) convert(body string) (title, text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			title, text = "", ""
			err = webtext.Errorf(webtext.EEXTRACT, "extraction panicked: %v", r)
		}
	}()

	if strings.TrimSpace(body) == "" {
		return "", "", nil
	}

	content := body
	if p.extractor != nil {
		extracted, err := p.extractor.Extract(body)
		if err != nil {
			return "", "", extractError(err)
		}
		title = extracted.Title
		content = extracted.ContentHTML
	}

	text, err = p.converter.Convert(content)
	if err != nil {
		return "", "", extractError(err)
	}
	return title, text, nil
}

func extractError(err error) error {
	var appErr *webtext.Error
	if errors.As(err, &appErr) {
		return err
	}
	return webtext.Errorf(webtext.EEXTRACT, "%s", err.Error())
}

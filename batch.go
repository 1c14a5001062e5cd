package webtext

import "context"

// FetchProgress reports the state of one URL while a batch runs.
type FetchProgress struct {
	URL       string
	Index     int
	State     TaskState
	Completed int
	Total     int
	Error     error
}

// FetchProgressFunc is called as URLs change state. Calls are serialized.
type FetchProgressFunc func(FetchProgress)

// BatchFetcher fetches and converts a list of URLs.
type BatchFetcher interface {
	// FetchAll returns exactly one Result per input URL, in input order,
	// regardless of completion order. Per-URL failures are reported in
	// Result.Err and never abort the batch.
	FetchAll(ctx context.Context, urls []string, progress FetchProgressFunc) []*Result
}

package webtext

import (
	"context"
	"time"
)

// ResultStore persists successful results with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type ResultStore interface {
	Save(ctx context.Context, result *Result) error
	Commit() error
	Abort() error
}

// Batch is a recorded run of a BatchFetcher.
type Batch struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Results   []*Result `json:"results"`
}

// Validate returns an error if the batch contains invalid fields.
func (b *Batch) Validate() error {
	if len(b.Results) == 0 {
		return Errorf(EINVALID, "batch results required")
	}
	for _, r := range b.Results {
		if r.URL == "" {
			return Errorf(EINVALID, "batch result URL required")
		}
	}
	return nil
}

// Failed returns the number of failed results.
func (b *Batch) Failed() int {
	var n int
	for _, r := range b.Results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// HistoryService records finished batches for later inspection.
// Recorded results are never consulted when fetching.
type HistoryService interface {
	// RecordBatch stores the batch and assigns its ID and CreatedAt.
	RecordBatch(ctx context.Context, batch *Batch) error

	// FindBatchByID retrieves a batch with its results in input order.
	// Returns ENOTFOUND if the batch does not exist.
	FindBatchByID(ctx context.Context, id string) (*Batch, error)

	// FindBatches lists batches, newest first, without their result text.
	FindBatches(ctx context.Context, filter BatchFilter) ([]*Batch, error)

	// DeleteBatch removes a batch and its results.
	// Returns ENOTFOUND if the batch does not exist.
	DeleteBatch(ctx context.Context, id string) error
}

// BatchFilter represents a filter for FindBatches.
type BatchFilter struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

package mock

import (
	"context"

	"github.com/fwojciec/webtext"
)

var _ webtext.ResultStore = (*ResultStore)(nil)

// ResultStore is a mock implementation of webtext.ResultStore.
type ResultStore struct {
	SaveFn   func(ctx context.Context, result *webtext.Result) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *ResultStore) Save(ctx context.Context, result *webtext.Result) error {
	return s.SaveFn(ctx, result)
}

func (s *ResultStore) Commit() error {
	return s.CommitFn()
}

func (s *ResultStore) Abort() error {
	return s.AbortFn()
}

var _ webtext.HistoryService = (*HistoryService)(nil)

// HistoryService is a mock implementation of webtext.HistoryService.
type HistoryService struct {
	RecordBatchFn   func(ctx context.Context, batch *webtext.Batch) error
	FindBatchByIDFn func(ctx context.Context, id string) (*webtext.Batch, error)
	FindBatchesFn   func(ctx context.Context, filter webtext.BatchFilter) ([]*webtext.Batch, error)
	DeleteBatchFn   func(ctx context.Context, id string) error
}

func (s *HistoryService) RecordBatch(ctx context.Context, batch *webtext.Batch) error {
	return s.RecordBatchFn(ctx, batch)
}

func (s *HistoryService) FindBatchByID(ctx context.Context, id string) (*webtext.Batch, error) {
	return s.FindBatchByIDFn(ctx, id)
}

func (s *HistoryService) FindBatches(ctx context.Context, filter webtext.BatchFilter) ([]*webtext.Batch, error) {
	return s.FindBatchesFn(ctx, filter)
}

func (s *HistoryService) DeleteBatch(ctx context.Context, id string) error {
	return s.DeleteBatchFn(ctx, id)
}

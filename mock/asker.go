package mock

import (
	"context"

	"github.com/fwojciec/webtext"
)

var _ webtext.Asker = (*Asker)(nil)

// Asker is a mock implementation of webtext.Asker.
type Asker struct {
	AskFn func(ctx context.Context, results []*webtext.Result, question string) (string, error)
}

func (a *Asker) Ask(ctx context.Context, results []*webtext.Result, question string) (string, error) {
	return a.AskFn(ctx, results, question)
}

package mock

import "github.com/fwojciec/webtext"

var _ webtext.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of webtext.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*webtext.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*webtext.ExtractResult, error) {
	return e.ExtractFn(html)
}

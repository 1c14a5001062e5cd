package mock

import "github.com/fwojciec/webtext"

var _ webtext.Converter = (*Converter)(nil)

// Converter is a mock implementation of webtext.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

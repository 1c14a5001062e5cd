package webtext

import "context"

// Asker answers a natural language question using extracted page text.
type Asker interface {
	// Ask sends the text of the successful results together with question
	// to a language model. Returns EINVALID if no result has text.
	Ask(ctx context.Context, results []*Result, question string) (string, error)
}

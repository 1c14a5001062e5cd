// Package readability isolates article content with go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/webtext"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements webtext.Extractor at compile time.
var _ webtext.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*webtext.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, webtext.Errorf(webtext.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, webtext.Errorf(webtext.EEXTRACT, "readability: %v", err)
	}

	return &webtext.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}

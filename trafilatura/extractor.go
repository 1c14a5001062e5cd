// Package trafilatura isolates the main content of a page with
// go-trafilatura, dropping navigation, footers and other boilerplate.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/webtext"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements webtext.Extractor at compile time.
var _ webtext.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	fallback bool
}

// NewExtractor creates a new Extractor. Fallback extraction with
// readability and dom-distiller is enabled.
func NewExtractor() *Extractor {
	return &Extractor{fallback: true}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*webtext.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, webtext.Errorf(webtext.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: e.fallback,
		IncludeLinks:   true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, webtext.Errorf(webtext.EEXTRACT, "main content extraction: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &webtext.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

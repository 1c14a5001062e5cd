package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/webtext"
)

// Ensure TitleExtractor implements webtext.Extractor at compile time.
var _ webtext.Extractor = (*TitleExtractor)(nil)

// TitleExtractor reads the page title and passes the markup through
// unchanged, so the whole document is converted.
type TitleExtractor struct{}

// NewTitleExtractor creates a new TitleExtractor.
func NewTitleExtractor() *TitleExtractor {
	return &TitleExtractor{}
}

// Extract returns the <title> text, falling back to the first <h1>.
func (e *TitleExtractor) Extract(rawHTML string) (*webtext.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return &webtext.ExtractResult{}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, webtext.Errorf(webtext.EEXTRACT, "failed to parse HTML: %v", err)
	}

	title := collapse(doc.Find("title").First().Text())
	if title == "" {
		title = collapse(doc.Find("h1").First().Text())
	}

	return &webtext.ExtractResult{
		Title:       title,
		ContentHTML: rawHTML,
	}, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

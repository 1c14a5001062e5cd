package webtext

// ExtractResult holds the content isolated from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the content handed on to a Converter.
	ContentHTML string
}

// Extractor isolates the content of an HTML page before conversion.
// Implementations range from a passthrough that only reads the title to
// boilerplate removers that keep just the main article.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

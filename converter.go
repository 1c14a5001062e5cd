package webtext

// Converter flattens HTML into readable text.
type Converter interface {
	// Convert transforms markup into text. Empty input yields empty output
	// and a nil error. Malformed markup is tolerated rather than rejected.
	Convert(html string) (string, error)
}

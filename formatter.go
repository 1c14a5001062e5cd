package webtext

import "strings"

// FormatResults formats successful results for display or LLM context.
// Uses title if available, falls back to URL. Failed results are skipped.
// Results are separated by blank lines.
func FormatResults(results []*Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil || !r.OK() || strings.TrimSpace(r.Text) == "" {
			continue
		}
		header := r.Title
		if header == "" {
			header = r.URL
		}
		parts = append(parts, "## Page: "+header+"\nSource: "+r.URL+"\n\n"+r.Text)
	}

	return strings.Join(parts, "\n\n")
}

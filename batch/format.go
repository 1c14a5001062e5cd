package batch

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/webtext"
)

// ComputeHash computes a hash of the content using xxhash, as 16 hex digits.
func ComputeHash(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatBytes formats bytes in human-readable form.
func FormatBytes(bytes int) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatTokens formats token count in human-readable form.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total     int
	Completed int
	Failed    int
	Bytes     int
	ByCode    map[string]int
}

// Summarize tallies results. Bytes is the total length of converted text.
func Summarize(results []*webtext.Result) Summary {
	s := Summary{Total: len(results), ByCode: make(map[string]int)}
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.Err != nil {
			s.Failed++
			s.ByCode[webtext.ErrorCode(r.Err)]++
			continue
		}
		s.Completed++
		s.Bytes += len(r.Text)
	}
	return s
}

// String renders s as a one-line report.
func (s Summary) String() string {
	return fmt.Sprintf("%d/%d fetched, %d failed, %s of text", s.Completed, s.Total, s.Failed, FormatBytes(s.Bytes))
}

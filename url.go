package webtext

import (
	"net/url"
	"strings"
)

// ValidateURL reports whether candidate is an absolute http or https URL
// with a non-empty host. It does no network I/O.
func ValidateURL(candidate string) bool {
	if strings.TrimSpace(candidate) == "" {
		return false
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return u.Hostname() != ""
}

// Package fs provides file-based storage for extracted page text.
package fs

import (
	"net/url"
	"strings"

	"github.com/fwojciec/webtext"
)

// URLToPath converts a page URL to a relative file path rooted at the host.
// The query string and fragment are ignored.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.txt
func URLToPath(rawURL, ext string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", webtext.Errorf(webtext.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", webtext.Errorf(webtext.EINVALID, "URL %q has no host", rawURL)
	}

	path := strings.TrimPrefix(u.Path, "/")
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return "", webtext.Errorf(webtext.EINVALID, "path traversal in URL %q", rawURL)
		}
	}

	switch {
	case path == "":
		return host + "/index" + ext, nil
	case strings.HasSuffix(path, "/"):
		return host + "/" + path + "index" + ext, nil
	default:
		return host + "/" + path + ext, nil
	}
}

package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/webtext"
	"github.com/fwojciec/webtext/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Extractor implements webtext.Extractor at compile time.
var _ webtext.Extractor = (*trafilatura.Extractor)(nil)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>Release Notes - Example</title></head>
<body>
<nav><a href="/">Home</a><a href="/blog">Blog</a></nav>
<article>
<h1>Release Notes</h1>
<p>This release makes the fetch pipeline faster and adds support for brotli encoded responses.</p>
<p>Pages are converted to text in document order, and links keep their targets.</p>
</article>
<footer>Copyright 2024 Example Corp</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(articlePage)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
	})

	t.Run("extracts main content", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(articlePage)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "fetch pipeline faster")
	})

	t.Run("removes footer boilerplate", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(articlePage)

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "Copyright 2024 Example Corp")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("")

		require.Error(t, err)
		assert.Equal(t, webtext.EINVALID, webtext.ErrorCode(err))
	})
}

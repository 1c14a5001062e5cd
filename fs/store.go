package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/webtext"
)

// Ensure FileStore implements webtext.ResultStore at compile time.
var _ webtext.ResultStore = (*FileStore)(nil)

// DefaultExtension is the file extension used for saved results.
const DefaultExtension = ".txt"

// FileStore implements webtext.ResultStore with atomic update semantics.
// Results are saved to a temporary directory, then moved atomically on Commit.
type FileStore struct {
	baseDir string
	name    string
	ext     string
	now     func() time.Time
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithExtension sets the extension of written files, such as ".md".
func WithExtension(ext string) FileStoreOption {
	return func(s *FileStore) {
		s.ext = ext
	}
}

// WithNow sets the clock used for the fetched date in frontmatter.
func WithNow(now func() time.Time) FileStoreOption {
	return func(s *FileStore) {
		s.now = now
	}
}

// NewFileStore creates a new FileStore.
// baseDir is the parent directory, name is the output directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewFileStore(baseDir, name string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{
		baseDir: baseDir,
		name:    name,
		ext:     DefaultExtension,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes a successful result below the temporary directory.
// Failed results are rejected with EINVALID.
func (s *FileStore) Save(ctx context.Context, result *webtext.Result) error {
	if !result.OK() {
		return webtext.Errorf(webtext.EINVALID, "cannot save failed result for %s", result.URL)
	}

	relPath, err := URLToPath(result.URL, s.ext)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(fullPath, []byte(FormatResult(result, s.now())), 0644)
}

// FormatResult formats a result with YAML frontmatter.
func FormatResult(result *webtext.Result, fetched time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(result.URL)
	b.WriteString("\ntitle: ")
	b.WriteString(result.Title)
	b.WriteString("\nfetched: ")
	b.WriteString(fetched.Format("2006-01-02"))
	if result.Hash != "" {
		b.WriteString("\nhash: ")
		b.WriteString(result.Hash)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(result.Text)
	return b.String()
}

// Commit replaces the final directory with the temporary one. Committing
// without any saved result leaves an empty final directory.
func (s *FileStore) Commit() error {
	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards everything saved since the store was created.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

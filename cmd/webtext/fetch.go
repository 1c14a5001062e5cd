package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/webtext"
	"github.com/fwojciec/webtext/batch"
)

// Run executes the fetch command. Per-URL failures are reported but do not
// fail the command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	urls, err := c.collectURLs(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webtext.ErrorMessage(err))
		return err
	}
	if len(urls) == 0 {
		fmt.Fprintln(deps.Stderr, "error: no URLs given. Pass URLs, --file, or --sitemap.")
		return webtext.Errorf(webtext.EINVALID, "no URLs given")
	}

	results := deps.Batch.FetchAll(deps.Ctx, urls, progressPrinter(deps.Stderr))
	// Clear progress line
	fmt.Fprintf(deps.Stderr, "\r%80s\r", "")

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		writeResults(deps.Stdout, deps.Stderr, results)
	}

	if c.Out != "" {
		if err := c.save(deps, results); err != nil {
			fmt.Fprintf(deps.Stderr, "error saving: %v\n", err)
			return err
		}
	}

	if c.Record {
		b := &webtext.Batch{Results: results}
		if err := deps.History.RecordBatch(deps.Ctx, b); err != nil {
			fmt.Fprintf(deps.Stderr, "error recording batch: %s\n", webtext.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Recorded batch %s\n", b.ID)
	}

	fmt.Fprintln(deps.Stderr, batch.Summarize(results))
	return nil
}

// collectURLs gathers URLs from arguments, then --file, then --sitemap.
func (c *FetchCmd) collectURLs(deps *Dependencies) ([]string, error) {
	urls := append([]string(nil), c.URLs...)

	if c.File != "" {
		f, err := os.Open(c.File)
		if err != nil {
			return nil, webtext.Errorf(webtext.EINVALID, "cannot read URL file: %v", err)
		}
		defer f.Close()
		fileURLs, err := readURLs(f)
		if err != nil {
			return nil, webtext.Errorf(webtext.EINVALID, "cannot read URL file: %v", err)
		}
		urls = append(urls, fileURLs...)
	}

	if c.Sitemap != "" {
		filter, err := webtext.NewURLFilter(c.Include, c.Exclude)
		if err != nil {
			return nil, err
		}
		sitemapURLs, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.Sitemap, filter)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(deps.Stderr, "Found %d URLs in sitemap\n", len(sitemapURLs))
		urls = append(urls, sitemapURLs...)
	}

	return urls, nil
}

// readURLs reads one URL per line, skipping blank lines and # comments.
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func (c *FetchCmd) save(deps *Dependencies, results []*webtext.Result) error {
	ext := ".txt"
	if c.Format == "markdown" {
		ext = ".md"
	}
	store := deps.NewStore(c.Out, c.Name, ext)

	var saved int
	for _, r := range results {
		if !r.OK() {
			continue
		}
		if err := store.Save(deps.Ctx, r); err != nil {
			fmt.Fprintf(deps.Stderr, "error saving %s: %s\n", r.URL, webtext.ErrorMessage(err))
			continue
		}
		saved++
	}

	if err := store.Commit(); err != nil {
		_ = store.Abort()
		return err
	}
	fmt.Fprintf(deps.Stderr, "Saved %d pages\n", saved)
	return nil
}

// progressPrinter renders terminal task states on a single updating line.
func progressPrinter(w io.Writer) webtext.FetchProgressFunc {
	return func(p webtext.FetchProgress) {
		if !p.State.Terminal() {
			return
		}
		fmt.Fprintf(w, "\r[%d/%d] %s", p.Completed, p.Total, batch.TruncateURL(p.URL, 60))
	}
}

// writeResults prints successful pages to stdout and one line per failure
// to stderr.
func writeResults(stdout, stderr io.Writer, results []*webtext.Result) {
	if text := webtext.FormatResults(results); text != "" {
		fmt.Fprintln(stdout, text)
	}
	for _, r := range results {
		if r.OK() {
			continue
		}
		fmt.Fprintf(stderr, "failed %s: %s (%s)\n", r.URL, r.ErrorString(), webtext.ErrorCode(r.Err))
	}
}

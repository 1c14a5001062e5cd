package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/webtext"
	"github.com/fwojciec/webtext/batch"
	"github.com/fwojciec/webtext/fs"
	"github.com/fwojciec/webtext/gemini"
	"github.com/fwojciec/webtext/goquery"
	"github.com/fwojciec/webtext/htmltomarkdown"
	wthttp "github.com/fwojciec/webtext/http"
	"github.com/fwojciec/webtext/readability"
	wtslog "github.com/fwojciec/webtext/slog"
	"github.com/fwojciec/webtext/sqlite"
	"github.com/fwojciec/webtext/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by the history service.
	DB *sqlite.DB

	// Asker overrides the Gemini client for end-to-end testing.
	Asker webtext.Asker
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("webtext"),
		kong.Description("Fetch web pages concurrently and extract readable text"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'webtext --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cli.Verbose {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	var flags *FetchFlags
	switch cmd {
	case "fetch":
		flags = &cli.Fetch.FetchFlags
	case "ask":
		flags = &cli.Ask.FetchFlags
	}
	if flags != nil {
		fetcher, batchFetcher := newBatchFetcher(flags, logger, cli.Verbose)
		defer fetcher.Close()
		deps.Batch = batchFetcher

		var sitemaps webtext.SitemapService = wthttp.NewSitemapService(&http.Client{Timeout: flags.Timeout})
		if cli.Verbose {
			sitemaps = wtslog.NewLoggingSitemapService(sitemaps, logger)
		}
		deps.Sitemaps = sitemaps
		deps.NewStore = func(dir, name, ext string) webtext.ResultStore {
			return fs.NewFileStore(dir, name, fs.WithExtension(ext))
		}
	}

	if cmd == "history" || (cmd == "fetch" && cli.Fetch.Record) {
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set WEBTEXT_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}
		defer m.Close()
		deps.History = sqlite.NewHistoryService(m.DB)
	}

	if cmd == "ask" {
		asker, err := m.newAsker(ctx, stderr)
		if err != nil {
			return err
		}
		deps.Asker = asker

		if cli.Verbose {
			if tc, err := gemini.NewTokenCounter(gemini.DefaultModel); err == nil {
				deps.TokenCounter = tc
			}
		}
	}

	return kongCtx.Run(deps)
}

func (m *Main) newAsker(ctx context.Context, stderr io.Writer) (webtext.Asker, error) {
	if m.Asker != nil {
		return m.Asker, nil
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return gemini.NewAsker(client, gemini.DefaultModel), nil
}

// newBatchFetcher layers the fetch stack described by flags. The returned
// fetcher must be closed once the batch has finished.
func newBatchFetcher(flags *FetchFlags, logger *slog.Logger, verbose bool) (webtext.Fetcher, webtext.BatchFetcher) {
	opts := []wthttp.Option{wthttp.WithTimeout(flags.Timeout)}
	if flags.UserAgent != "" {
		opts = append(opts, wthttp.WithUserAgent(flags.UserAgent))
	}
	var fetcher webtext.Fetcher = wthttp.NewFetcher(opts...)
	if verbose {
		fetcher = wtslog.NewLoggingFetcher(fetcher, logger)
	}
	if flags.RPS > 0 {
		fetcher = batch.NewRateLimitedFetcher(fetcher, batch.NewDomainLimiter(flags.RPS))
	}
	if flags.Retries > 0 {
		delays := batch.DefaultRetryDelays()
		for len(delays) < flags.Retries {
			delays = append(delays, delays[len(delays)-1])
		}
		fetcher = batch.NewRetryFetcher(fetcher,
			batch.WithRetryDelays(delays[:flags.Retries]),
			batch.WithOnRetry(func(url string, attempt int, err error) {
				logger.Info("retry", "url", url, "attempt", attempt, "err", err)
			}),
		)
	}

	var converter webtext.Converter = goquery.NewTextConverter()
	if flags.Format == "markdown" {
		converter = htmltomarkdown.NewConverter()
	}
	if verbose {
		converter = wtslog.NewLoggingConverter(converter, logger)
	}

	var extractor webtext.Extractor = goquery.NewTitleExtractor()
	switch flags.Extract {
	case "trafilatura":
		extractor = trafilatura.NewExtractor()
	case "readability":
		extractor = readability.NewExtractor()
	}

	var b webtext.BatchFetcher = batch.NewPipeline(fetcher, converter,
		batch.WithConcurrency(flags.Concurrency),
		batch.WithTimeout(flags.Timeout),
		batch.WithExtractor(extractor),
	)
	if verbose {
		b = wtslog.NewLoggingBatchFetcher(b, logger)
	}
	return fetcher, b
}

func defaultDBPath() string {
	if path := os.Getenv("WEBTEXT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "webtext.db"
	}
	dir := filepath.Join(home, ".webtext")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "history.db")
}
